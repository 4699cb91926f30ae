// Package server exposes the planner over a small local HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/theirongolddev/finplan/internal/advisor"
	"github.com/theirongolddev/finplan/internal/config"
	"github.com/theirongolddev/finplan/internal/model"
	"github.com/theirongolddev/finplan/internal/planner"
)

const maxBodyBytes = 64 << 10

// Config controls the HTTP service.
type Config struct {
	Addr string
	// RatePerMinute caps /v1/plan requests across all clients. Zero or less
	// disables the limiter.
	RatePerMinute int
	EventsBuffer  int
}

// PlanCounter reports how many plans are cached.
type PlanCounter interface {
	PlanCount() (int, error)
}

// Event is emitted whenever /v1/plan answers.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Goal      string    `json:"goal"`
	Feasible  bool      `json:"feasible"`
	Cached    bool      `json:"cached"`
	Error     string    `json:"error,omitempty"`
}

// Counters tracks handled requests per endpoint.
type Counters struct {
	Evaluate    int64 `json:"evaluate"`
	Project     int64 `json:"project"`
	Plan        int64 `json:"plan"`
	PlanErrors  int64 `json:"plan_errors"`
	RateLimited int64 `json:"rate_limited"`
	Invalid     int64 `json:"invalid"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	UptimeSec       int64     `json:"uptime_sec"`
	Model           string    `json:"model,omitempty"`
	AdvisorReady    bool      `json:"advisor_ready"`
	RatePerMinute   int       `json:"rate_per_minute"`
	Requests        Counters  `json:"requests"`
	CachedPlans     int       `json:"cached_plans"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// EvaluateResponse is returned by /v1/evaluate.
type EvaluateResponse struct {
	Profile model.FinancialProfile  `json:"profile"`
	Result  model.FeasibilityResult `json:"result"`
	GoalMet bool                    `json:"goal_met"`
}

// ProjectResponse is returned by /v1/project.
type ProjectResponse struct {
	Points []model.TrajectoryPoint `json:"points"`
}

// PlanResponse is returned by /v1/plan.
type PlanResponse struct {
	Result     model.FeasibilityResult `json:"result"`
	Trajectory []model.TrajectoryPoint `json:"trajectory"`
	Plan       string                  `json:"plan"`
	Model      string                  `json:"model"`
	Cached     bool                    `json:"cached"`
}

type errorResponse struct {
	Error          string `json:"error"`
	UpstreamStatus int    `json:"upstream_status,omitempty"`
}

// Service serves the planner API. Requests are independent; the only shared
// state is the counters and the event ring, both guarded by mu.
type Service struct {
	cfg     Config
	adv     *advisor.Advisor
	advErr  error
	plans   PlanCounter
	log     *zap.Logger
	limiter *rate.Limiter

	mu          sync.RWMutex
	startedAt   time.Time
	counters    Counters
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// Option customizes a Service.
type Option func(*Service)

// WithAdvisor enables /v1/plan. Without it the endpoint answers 503 with err.
func WithAdvisor(adv *advisor.Advisor, err error) Option {
	return func(s *Service) {
		s.adv = adv
		s.advErr = err
	}
}

// WithPlanCounter reports the cache size in /v1/status.
func WithPlanCounter(pc PlanCounter) Option {
	return func(s *Service) { s.plans = pc }
}

// WithLogger sets the request logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// New returns a new service with the provided config.
func New(cfg Config, opts ...Option) *Service {
	if cfg.Addr == "" {
		cfg.Addr = config.DefaultAddr
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}

	s := &Service{
		cfg:       cfg,
		log:       zap.NewNop(),
		limiter:   rate.NewLimiter(rate.Inf, 0),
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
	if cfg.RatePerMinute > 0 {
		s.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RatePerMinute)), cfg.RatePerMinute)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the API routes wrapped in request logging.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /v1/status", s.handleStatus)
	mux.HandleFunc("GET /v1/events", s.handleEvents)
	mux.HandleFunc("GET /v1/stream", s.handleStream)
	mux.HandleFunc("POST /v1/evaluate", s.handleEvaluate)
	mux.HandleFunc("POST /v1/project", s.handleProject)
	mux.HandleFunc("POST /v1/plan", s.handlePlan)
	return s.logRequests(mux)
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.log.Info("listening", zap.String("addr", s.cfg.Addr), zap.Bool("advisor", s.adv != nil))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.log.Info("shutting down")
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}
}

func (s *Service) count(f func(c *Counters)) {
	s.mu.Lock()
	f(&s.counters)
	s.mu.Unlock()
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.nextEventID++
	ev.ID = s.nextEventID
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	st := Status{RatePerMinute: s.cfg.RatePerMinute, AdvisorReady: s.adv != nil}
	if s.adv != nil {
		st.Model = s.adv.Model()
	}
	if s.plans != nil {
		if n, err := s.plans.PlanCount(); err == nil {
			st.CachedPlans = n
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	st.StartedAt = s.startedAt
	st.UptimeSec = int64(time.Since(s.startedAt).Seconds())
	st.Requests = s.counters
	st.EventCount = len(s.events)
	st.SubscriberCount = len(s.subs)
	return st
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
}

func (s *Service) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	p, ok := s.readProfile(w, r)
	if !ok {
		return
	}
	s.count(func(c *Counters) { c.Evaluate++ })

	res := planner.Evaluate(p)
	writeJSON(w, http.StatusOK, EvaluateResponse{Profile: p, Result: res, GoalMet: res.GoalMet()})
}

func (s *Service) handleProject(w http.ResponseWriter, r *http.Request) {
	p, ok := s.readProfile(w, r)
	if !ok {
		return
	}
	s.count(func(c *Counters) { c.Project++ })

	writeJSON(w, http.StatusOK, ProjectResponse{Points: planner.ProjectProfile(p)})
}

func (s *Service) handlePlan(w http.ResponseWriter, r *http.Request) {
	p, ok := s.readProfile(w, r)
	if !ok {
		return
	}
	s.count(func(c *Counters) { c.Plan++ })

	if s.adv == nil {
		err := s.advErr
		if err == nil {
			err = config.ErrMissingAPIKey
		}
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
		return
	}

	if !s.limiter.Allow() {
		s.count(func(c *Counters) { c.RateLimited++ })
		w.Header().Set("Retry-After", "60")
		writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "too many plan requests, try again later"})
		return
	}

	res := planner.Evaluate(p)
	advice, err := s.adv.Advise(r.Context(), p, res)
	if err != nil {
		s.count(func(c *Counters) { c.PlanErrors++ })
		s.publishEvent(Event{Type: "plan_error", Timestamp: time.Now(), Goal: p.GoalName, Feasible: res.IsFeasible, Error: err.Error()})
		status, body := advisorError(err)
		writeJSON(w, status, body)
		return
	}

	s.publishEvent(Event{Type: "plan", Timestamp: time.Now(), Goal: p.GoalName, Feasible: res.IsFeasible, Cached: advice.Cached})
	writeJSON(w, http.StatusOK, PlanResponse{
		Result:     res,
		Trajectory: planner.ProjectProfile(p),
		Plan:       advice.Plan,
		Model:      s.adv.Model(),
		Cached:     advice.Cached,
	})
}

// readProfile decodes, assembles and validates the request body. It writes
// a 400 and returns false on any problem.
func (s *Service) readProfile(w http.ResponseWriter, r *http.Request) (model.FinancialProfile, bool) {
	var p model.FinancialProfile
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		s.count(func(c *Counters) { c.Invalid++ })
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "decoding profile: " + err.Error()})
		return p, false
	}

	p = p.Assemble()
	if err := planner.Validate(p); err != nil {
		s.count(func(c *Counters) { c.Invalid++ })
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return p, false
	}
	return p, true
}

// advisorError maps an advisor failure onto a response. Upstream rate
// limiting stays a 429; everything else is a bad gateway.
func advisorError(err error) (int, errorResponse) {
	body := errorResponse{Error: advisor.UserMessage(err)}

	var se *advisor.StatusError
	switch {
	case errors.Is(err, advisor.ErrRateLimited):
		return http.StatusTooManyRequests, body
	case errors.As(err, &se):
		body.UpstreamStatus = se.StatusCode
		return http.StatusBadGateway, body
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, body
	default:
		return http.StatusBadGateway, body
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
