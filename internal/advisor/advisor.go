package advisor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/theirongolddev/finplan/internal/model"
	"github.com/theirongolddev/finplan/internal/store"
)

// PlanStore is the subset of store.Cache the advisor needs.
type PlanStore interface {
	GetPlan(key string) (store.PlanRecord, error)
	SavePlan(rec store.PlanRecord) (store.PlanRecord, error)
}

// Advice is a generated plan and where it came from.
type Advice struct {
	Plan     string
	Prompt   string
	CacheKey string
	Cached   bool
	Elapsed  time.Duration
}

// Advisor builds prompts from profiles and fetches plans, consulting the
// cache first when one is configured. Safe for concurrent use.
type Advisor struct {
	gen      Generator
	cache    PlanStore // nil disables caching
	currency string
	log      *zap.Logger
	flight   singleflight.Group
}

// New returns an Advisor. cache and log may be nil.
func New(gen Generator, cache PlanStore, currency string, log *zap.Logger) *Advisor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Advisor{
		gen:      gen,
		cache:    cache,
		currency: currency,
		log:      log,
	}
}

// Model names the model plans are generated with.
func (a *Advisor) Model() string { return a.gen.Model() }

// Advise returns a plan for a validated, assembled profile and its evaluation.
// Identical concurrent requests share one upstream call. Cancelling ctx only
// abandons this caller's wait; the shared call runs on until the client
// timeout so the other callers still get their plan.
func (a *Advisor) Advise(ctx context.Context, p model.FinancialProfile, r model.FeasibilityResult) (Advice, error) {
	key := CacheKey(p, a.gen.Model(), a.currency)
	prompt := BuildPrompt(p, r, a.currency)

	if a.cache != nil {
		rec, err := a.cache.GetPlan(key)
		switch {
		case err == nil:
			a.log.Debug("plan cache hit", zap.String("key", key[:12]), zap.String("goal", p.GoalName))
			return Advice{Plan: rec.Plan, Prompt: prompt, CacheKey: key, Cached: true}, nil
		case !errors.Is(err, store.ErrNotFound):
			a.log.Warn("plan cache lookup failed", zap.Error(err))
		}
	}

	flightCtx := context.WithoutCancel(ctx)
	ch := a.flight.DoChan(key, func() (any, error) {
		start := time.Now()
		plan, err := a.gen.Generate(flightCtx, prompt)
		if err != nil {
			return nil, err
		}
		elapsed := time.Since(start)
		a.log.Debug("plan generated",
			zap.String("model", a.gen.Model()),
			zap.Duration("elapsed", elapsed),
			zap.Int("chars", len(plan)))

		if a.cache != nil {
			_, serr := a.cache.SavePlan(store.PlanRecord{
				CacheKey:   key,
				GoalName:   strings.TrimSpace(p.GoalName),
				Income:     p.Income,
				Expenses:   p.Expenses,
				Savings:    p.Savings,
				GoalAmount: p.GoalAmount,
				Months:     p.Months,
				Model:      a.gen.Model(),
				Feasible:   r.IsFeasible,
				Plan:       plan,
			})
			if serr != nil {
				a.log.Warn("plan cache write failed", zap.Error(serr))
			}
		}
		return Advice{Plan: plan, Prompt: prompt, CacheKey: key, Elapsed: elapsed}, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return Advice{Prompt: prompt, CacheKey: key}, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		a.log.Warn("advisor request failed", zap.Error(res.Err), zap.Bool("shared", res.Shared))
		return Advice{Prompt: prompt, CacheKey: key}, res.Err
	}
	return res.Val.(Advice), nil
}

// CacheKey identifies a plan request by every input that shapes the prompt:
// all profile fields, the breakdown, the model and the currency symbol.
func CacheKey(p model.FinancialProfile, modelName, currency string) string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	parts := []string{
		f(p.Income), f(p.Expenses), f(p.Savings),
		strings.TrimSpace(p.GoalName), f(p.GoalAmount), strconv.Itoa(p.Months),
		f(p.Breakdown.Rent), f(p.Breakdown.Groceries), f(p.Breakdown.Entertainment), f(p.Breakdown.Other),
		modelName, currency,
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x1f")))
	return hex.EncodeToString(sum[:])
}
