// Package store provides a SQLite-backed cache of generated plans.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite" // register sqlite driver
)

// timeLayout is fixed-width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNotFound is returned when no plan matches a lookup.
var ErrNotFound = errors.New("store: plan not found")

// PlanRecord is one cached advisor response and the inputs that produced it.
type PlanRecord struct {
	ID         string
	CacheKey   string
	GoalName   string
	Income     float64
	Expenses   float64
	Savings    float64
	GoalAmount float64
	Months     int
	Model      string
	Feasible   bool
	Plan       string
	CreatedAt  time.Time
}

// Cache provides SQLite-backed plan caching.
type Cache struct {
	db *sql.DB
}

// Open opens or creates the cache database at the given path.
func Open(dbPath string) (*Cache, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// GetPlan returns the plan stored under key, or ErrNotFound.
func (c *Cache) GetPlan(key string) (PlanRecord, error) {
	row := c.db.QueryRow(`SELECT
		id, cache_key, goal_name, income, expenses, savings, goal_amount,
		months, model, feasible, plan, created_at
		FROM plans WHERE cache_key = ?`, key)

	rec, err := scanPlan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return PlanRecord{}, ErrNotFound
	}
	return rec, err
}

// SavePlan stores rec, replacing any plan with the same cache key.
// A missing ID or CreatedAt is filled in; the stored record is returned.
func (c *Cache) SavePlan(rec PlanRecord) (PlanRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	feasible := 0
	if rec.Feasible {
		feasible = 1
	}

	_, err := c.db.Exec(`INSERT OR REPLACE INTO plans
		(id, cache_key, goal_name, income, expenses, savings, goal_amount,
		 months, model, feasible, plan, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.CacheKey, rec.GoalName, rec.Income, rec.Expenses, rec.Savings, rec.GoalAmount,
		rec.Months, rec.Model, feasible, rec.Plan, rec.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return rec, fmt.Errorf("saving plan: %w", err)
	}
	return rec, nil
}

// ListPlans returns up to limit plans, newest first. limit <= 0 returns all.
func (c *Cache) ListPlans(limit int) ([]PlanRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := c.db.Query(`SELECT
		id, cache_key, goal_name, income, expenses, savings, goal_amount,
		months, model, feasible, plan, created_at
		FROM plans ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var plans []PlanRecord
	for rows.Next() {
		rec, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, rec)
	}
	return plans, rows.Err()
}

// DeletePlan removes a plan by ID.
func (c *Cache) DeletePlan(id string) error {
	res, err := c.db.Exec("DELETE FROM plans WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Clear removes every cached plan and reports how many were deleted.
func (c *Cache) Clear() (int64, error) {
	res, err := c.db.Exec("DELETE FROM plans")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// PlanCount returns the number of cached plans.
func (c *Cache) PlanCount() (int, error) {
	var count int
	err := c.db.QueryRow("SELECT COUNT(*) FROM plans").Scan(&count)
	return count, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPlan(s scanner) (PlanRecord, error) {
	var rec PlanRecord
	var feasible int
	var created string

	err := s.Scan(
		&rec.ID, &rec.CacheKey, &rec.GoalName, &rec.Income, &rec.Expenses, &rec.Savings, &rec.GoalAmount,
		&rec.Months, &rec.Model, &feasible, &rec.Plan, &created,
	)
	if err != nil {
		return rec, err
	}

	rec.Feasible = feasible != 0
	rec.CreatedAt, _ = time.Parse(timeLayout, created)
	return rec, nil
}
