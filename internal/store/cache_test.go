package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "nested", "plans.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func sampleRecord(key string) PlanRecord {
	return PlanRecord{
		CacheKey:   key,
		GoalName:   "Buy a car",
		Income:     50000,
		Expenses:   30000,
		Savings:    10000,
		GoalAmount: 100000,
		Months:     12,
		Model:      "llama-3.3-70b-versatile",
		Feasible:   true,
		Plan:       "Save 7,500 a month.",
	}
}

func TestSaveAndGetPlan(t *testing.T) {
	c := openTemp(t)

	saved, err := c.SavePlan(sampleRecord("k1"))
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)
	require.False(t, saved.CreatedAt.IsZero())

	got, err := c.GetPlan("k1")
	require.NoError(t, err)
	require.Equal(t, saved.ID, got.ID)
	require.Equal(t, "Buy a car", got.GoalName)
	require.Equal(t, 12, got.Months)
	require.True(t, got.Feasible)
	require.Equal(t, "Save 7,500 a month.", got.Plan)
	require.WithinDuration(t, saved.CreatedAt, got.CreatedAt, time.Millisecond)
}

func TestGetPlan_NotFound(t *testing.T) {
	c := openTemp(t)
	_, err := c.GetPlan("missing")
	require.True(t, errors.Is(err, ErrNotFound), "err = %v", err)
}

func TestSavePlan_ReplacesSameKey(t *testing.T) {
	c := openTemp(t)

	first := sampleRecord("k")
	_, err := c.SavePlan(first)
	require.NoError(t, err)

	second := sampleRecord("k")
	second.Plan = "updated"
	_, err = c.SavePlan(second)
	require.NoError(t, err)

	n, err := c.PlanCount()
	require.NoError(t, err)
	require.Equal(t, 1, n)

	got, err := c.GetPlan("k")
	require.NoError(t, err)
	require.Equal(t, "updated", got.Plan)
}

func TestListPlans_NewestFirst(t *testing.T) {
	c := openTemp(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, key := range []string{"a", "b", "c"} {
		rec := sampleRecord(key)
		rec.GoalName = key
		rec.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		_, err := c.SavePlan(rec)
		require.NoError(t, err)
	}

	all, err := c.ListPlans(0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, []string{"c", "b", "a"}, []string{all[0].GoalName, all[1].GoalName, all[2].GoalName})

	two, err := c.ListPlans(2)
	require.NoError(t, err)
	require.Len(t, two, 2)
}

func TestDeleteAndClear(t *testing.T) {
	c := openTemp(t)

	rec, err := c.SavePlan(sampleRecord("x"))
	require.NoError(t, err)
	_, err = c.SavePlan(sampleRecord("y"))
	require.NoError(t, err)

	require.NoError(t, c.DeletePlan(rec.ID))
	require.ErrorIs(t, c.DeletePlan(rec.ID), ErrNotFound)

	n, err := c.Clear()
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	count, err := c.PlanCount()
	require.NoError(t, err)
	require.Zero(t, count)
}
