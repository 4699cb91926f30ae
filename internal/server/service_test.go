package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/finplan/internal/advisor"
	"github.com/theirongolddev/finplan/internal/config"
	"github.com/theirongolddev/finplan/internal/store"
)

type stubGen struct {
	calls atomic.Int32
	plan  string
	err   error
}

func (g *stubGen) Generate(context.Context, string) (string, error) {
	g.calls.Add(1)
	return g.plan, g.err
}

func (g *stubGen) Model() string { return "stub-model" }

const carJSON = `{"income":50000,"expenses":30000,"savings":10000,"goal_name":"Buy a car","goal_amount":100000,"months":12}`

func post(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{EventsBuffer: 2})

	s.publishEvent(Event{Goal: "a"})
	s.publishEvent(Event{Goal: "b"})
	s.publishEvent(Event{Goal: "c"})

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 2 || s.events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", s.events[0].ID, s.events[1].ID)
	}
}

func TestHealthz(t *testing.T) {
	h := New(Config{}).Handler()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok\n" {
		t.Fatalf("healthz = %d %q", rec.Code, rec.Body.String())
	}
}

func TestEvaluate(t *testing.T) {
	h := New(Config{}).Handler()

	rec := post(t, h, "/v1/evaluate", carJSON)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[EvaluateResponse](t, rec)
	require.Equal(t, 20000.0, resp.Result.DisposableIncome)
	require.Equal(t, 7500.0, resp.Result.RequiredMonthlySavings)
	require.True(t, resp.Result.IsFeasible)
	require.False(t, resp.GoalMet)
}

func TestEvaluateAppliesBreakdown(t *testing.T) {
	h := New(Config{}).Handler()

	body := `{"income":40000,"expenses":1000,"savings":0,"goal_name":"Trip","goal_amount":6000,"months":6,
		"breakdown":{"rent":800,"groceries":500}}`
	rec := post(t, h, "/v1/evaluate", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[EvaluateResponse](t, rec)
	require.Equal(t, 1300.0, resp.Profile.Expenses)
	require.Equal(t, 38700.0, resp.Result.DisposableIncome)
}

func TestEvaluateRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"months zero", `{"income":1,"goal_name":"x","goal_amount":1,"months":0}`, "months must be between 1 and 36"},
		{"negative income", `{"income":-1,"goal_name":"x","goal_amount":1,"months":3}`, "income must be non-negative"},
		{"blank goal", `{"income":1,"goal_name":"  ","goal_amount":1,"months":3}`, "goal_name is required"},
		{"unknown field", `{"income":1,"salary":2}`, "unknown field"},
		{"not json", `income=1`, "decoding profile"},
	}
	h := New(Config{}).Handler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, h, "/v1/evaluate", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tt.want) {
				t.Fatalf("body = %s, want %q", rec.Body.String(), tt.want)
			}
		})
	}
}

func TestProject(t *testing.T) {
	h := New(Config{}).Handler()

	rec := post(t, h, "/v1/project", carJSON)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[ProjectResponse](t, rec)
	require.Len(t, resp.Points, 12)
	require.Equal(t, 1, resp.Points[0].Month)
	require.Equal(t, 17500.0, resp.Points[0].ProjectedSavings)
	require.Equal(t, 100000.0, resp.Points[11].ProjectedSavings)
}

func TestPlanUsesCache(t *testing.T) {
	cache, err := store.Open(filepath.Join(t.TempDir(), "plans.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })

	gen := &stubGen{plan: "Save 7500 a month."}
	adv := advisor.New(gen, cache, "₹", nil)
	s := New(Config{}, WithAdvisor(adv, nil), WithPlanCounter(cache))
	h := s.Handler()

	first := post(t, h, "/v1/plan", carJSON)
	require.Equal(t, http.StatusOK, first.Code, first.Body.String())
	resp := decode[PlanResponse](t, first)
	require.Equal(t, "Save 7500 a month.", resp.Plan)
	require.False(t, resp.Cached)
	require.Equal(t, "stub-model", resp.Model)
	require.Len(t, resp.Trajectory, 12)

	second := post(t, h, "/v1/plan", carJSON)
	require.Equal(t, http.StatusOK, second.Code)
	require.True(t, decode[PlanResponse](t, second).Cached)
	require.Equal(t, int32(1), gen.calls.Load())

	st := s.snapshotStatus()
	require.Equal(t, 1, st.CachedPlans)
	require.Equal(t, int64(2), st.Requests.Plan)
	require.Equal(t, 2, st.EventCount)
	require.True(t, st.AdvisorReady)
}

func TestPlanWithoutAdvisor(t *testing.T) {
	h := New(Config{}, WithAdvisor(nil, config.ErrMissingAPIKey)).Handler()

	rec := post(t, h, "/v1/plan", carJSON)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Contains(t, rec.Body.String(), "GROQ_API_KEY not found")
}

func TestPlanRateLimited(t *testing.T) {
	gen := &stubGen{plan: "ok"}
	h := New(Config{RatePerMinute: 1}, WithAdvisor(advisor.New(gen, nil, "₹", nil), nil)).Handler()

	require.Equal(t, http.StatusOK, post(t, h, "/v1/plan", carJSON).Code)

	rec := post(t, h, "/v1/plan", carJSON)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "60", rec.Header().Get("Retry-After"))
	require.Equal(t, int32(1), gen.calls.Load())
}

func TestPlanInvalidBodiesDoNotSpendRateTokens(t *testing.T) {
	gen := &stubGen{plan: "ok"}
	h := New(Config{RatePerMinute: 1}, WithAdvisor(advisor.New(gen, nil, "₹", nil), nil)).Handler()

	require.Equal(t, http.StatusBadRequest, post(t, h, "/v1/plan", `{"income":`).Code)
	require.Equal(t, http.StatusBadRequest, post(t, h, "/v1/plan", strings.Replace(carJSON, `"months":12`, `"months":0`, 1)).Code)

	require.Equal(t, http.StatusOK, post(t, h, "/v1/plan", carJSON).Code)
	require.Equal(t, int32(1), gen.calls.Load())
}

func TestPlanUpstreamErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		status   int
		upstream int
		message  string
	}{
		{"rate limited", advisor.ErrRateLimited, http.StatusTooManyRequests, 0, "Rate limit exceeded"},
		{"status", &advisor.StatusError{StatusCode: 500, Body: "boom"}, http.StatusBadGateway, 500, "boom"},
		{"timeout", context.DeadlineExceeded, http.StatusGatewayTimeout, 0, "did not answer in time"},
		{"other", errors.New("connection reset"), http.StatusBadGateway, 0, "connection reset"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(Config{}, WithAdvisor(advisor.New(&stubGen{err: tt.err}, nil, "₹", nil), nil))
			rec := post(t, s.Handler(), "/v1/plan", carJSON)
			require.Equal(t, tt.status, rec.Code)

			body := decode[errorResponse](t, rec)
			require.Equal(t, tt.upstream, body.UpstreamStatus)
			require.Contains(t, body.Error, tt.message)
			require.Equal(t, int64(1), s.snapshotStatus().Requests.PlanErrors)
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h := New(Config{}).Handler()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/evaluate", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}
