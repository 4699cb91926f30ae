package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/theirongolddev/finplan/internal/advisor"
	"github.com/theirongolddev/finplan/internal/config"
	"github.com/theirongolddev/finplan/internal/model"
	"github.com/theirongolddev/finplan/internal/planner"
	"github.com/theirongolddev/finplan/internal/tui/components"

	tea "github.com/charmbracelet/bubbletea"
)

type stubGen struct {
	plan string
	err  error
}

func (s stubGen) Generate(context.Context, string) (string, error) { return s.plan, s.err }
func (s stubGen) Model() string                                    { return "stub" }

// newTestApp returns an app past the setup wizard, sized to 100x40.
func newTestApp(t *testing.T, opts Options) App {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	if err := config.Save(config.DefaultConfig()); err != nil {
		t.Fatalf("saving config: %v", err)
	}
	if opts.Config.General.CurrencySymbol == "" {
		opts.Config = config.DefaultConfig()
	}

	a := NewApp(opts)
	if a.phase != phaseForm {
		t.Fatalf("phase = %d, want form", a.phase)
	}
	m, _ := a.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m.(App)
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func carProfile() model.FinancialProfile {
	return model.FinancialProfile{
		Income: 50000, Expenses: 30000, Savings: 10000,
		GoalName: "Buy a car", GoalAmount: 100000, Months: 12,
	}
}

func TestNewAppShowsSetupWithoutConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	a := NewApp(Options{Config: config.DefaultConfig()})
	if a.phase != phaseSetup {
		t.Fatalf("phase = %d, want setup", a.phase)
	}
	if a.Init() == nil {
		t.Fatal("Init returned no command for the setup form")
	}
}

func TestPlanFlowRendersResult(t *testing.T) {
	adv := advisor.New(stubGen{plan: "Save 7500 every month."}, nil, "₹", nil)
	a := newTestApp(t, Options{Advisor: adv})

	p := carProfile()
	if cmd := a.plan(p); cmd == nil {
		t.Fatal("plan returned no command")
	}
	if a.phase != phaseThinking {
		t.Fatalf("phase = %d, want thinking", a.phase)
	}
	if !strings.Contains(a.View(), "Thinking...") {
		t.Fatal("thinking view missing spinner label")
	}
	if len(a.points) != 12 || a.points[11].ProjectedSavings != 100000 {
		t.Fatalf("trajectory = %v, want 12 points ending at the goal", a.points)
	}

	msg := adviseCmd(adv, nil, p, a.result)()
	m, _ := a.Update(msg)
	a = m.(App)

	if a.phase != phaseResult {
		t.Fatalf("phase = %d, want result", a.phase)
	}
	body := a.renderResult(a.contentWidth())
	for _, want := range []string{"₹20,000.00", "₹7,500.00", "Feasible", "Savings Progress for Buy a car", "Save 7500 every month."} {
		if !strings.Contains(body, want) {
			t.Errorf("result missing %q", want)
		}
	}
}

func TestPlanFlowInfeasibleWarns(t *testing.T) {
	a := newTestApp(t, Options{})

	p := model.FinancialProfile{
		Income: 20000, Expenses: 18000, Savings: 0,
		GoalName: "Laptop", GoalAmount: 60000, Months: 6,
	}
	a.plan(p)
	m, _ := a.Update(PlanMsg{Advice: advisor.Advice{Plan: "Cut back."}})
	a = m.(App)

	body := a.renderResult(a.contentWidth())
	if !strings.Contains(body, "Not feasible") {
		t.Error("infeasible plan not flagged")
	}
	if !strings.Contains(body, "Your disposable income (₹2,000.00) is insufficient") {
		t.Error("insufficiency warning missing")
	}
}

func TestAdviseCmdWithoutAdvisorReportsMissingKey(t *testing.T) {
	p := carProfile()
	msg := adviseCmd(nil, nil, p, planner.Evaluate(p))().(PlanMsg)
	if !errors.Is(msg.Err, config.ErrMissingAPIKey) {
		t.Fatalf("Err = %v, want ErrMissingAPIKey", msg.Err)
	}
}

func TestAdvisorErrorShownWithoutRetry(t *testing.T) {
	adv := advisor.New(stubGen{err: advisor.ErrRateLimited}, nil, "₹", nil)
	a := newTestApp(t, Options{Advisor: adv})

	p := carProfile()
	a.plan(p)
	m, cmd := a.Update(adviseCmd(adv, nil, p, a.result)())
	a = m.(App)
	if cmd != nil {
		t.Fatal("advisor failure scheduled another command")
	}
	body := a.renderResult(a.contentWidth())
	if !strings.Contains(body, "Rate limit exceeded") {
		t.Fatalf("rate limit message missing:\n%s", body)
	}

	// Nothing to save after a failure.
	m, cmd = a.Update(keyMsg("s"))
	a = m.(App)
	if cmd != nil || a.note != "no plan to save" {
		t.Fatalf("save after failure: cmd=%v note=%q", cmd != nil, a.note)
	}
}

func TestSaveKeyWritesPlanFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "financial_plan.txt")
	a := newTestApp(t, Options{PlanFile: path})

	a.plan(carProfile())
	m, _ := a.Update(PlanMsg{Advice: advisor.Advice{Plan: "Step 1\nStep 2\n"}})
	a = m.(App)

	_, cmd := a.Update(keyMsg("s"))
	if cmd == nil {
		t.Fatal("s produced no command")
	}
	saved, ok := cmd().(SavedMsg)
	if !ok || saved.Err != nil {
		t.Fatalf("save = %+v", saved)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading plan: %v", err)
	}
	if string(data) != "Step 1\nStep 2\n" {
		t.Fatalf("file = %q", data)
	}

	m, _ = a.Update(saved)
	if note := m.(App).note; note != "saved "+path {
		t.Fatalf("note = %q", note)
	}
}

func TestResultKeys(t *testing.T) {
	a := newTestApp(t, Options{})
	a.plan(carProfile())
	m, _ := a.Update(PlanMsg{Advice: advisor.Advice{Plan: "ok"}})
	a = m.(App)

	m, _ = a.Update(keyMsg("n"))
	if m.(App).phase != phaseForm {
		t.Fatal("n did not open a new form")
	}

	_, cmd := a.Update(keyMsg("q"))
	if cmd == nil {
		t.Fatal("q produced no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("q did not quit")
	}
}

func TestViewTooNarrow(t *testing.T) {
	a := newTestApp(t, Options{})
	m, _ := a.Update(tea.WindowSizeMsg{Width: 40, Height: 10})
	if !strings.Contains(m.(App).View(), "Terminal too narrow") {
		t.Fatal("narrow terminal not reported")
	}
}

func TestResultMetrics(t *testing.T) {
	p := model.FinancialProfile{Income: 20000, Expenses: 18000, Savings: 0, GoalName: "Trip", GoalAmount: 60000, Months: 6}
	got := resultMetrics(p, planner.Evaluate(p), "₹")
	if len(got) != 3 {
		t.Fatalf("len(resultMetrics) = %d, want 3", len(got))
	}
	if got[0].Value != "₹2,000.00" || got[0].Tone != components.ToneNeutral {
		t.Fatalf("disposable = %+v", got[0])
	}
	if got[1].Value != "₹10,000.00" || got[1].Tone != components.ToneWarn {
		t.Fatalf("required = %+v", got[1])
	}
	if got[2].Value != "Not feasible" || got[2].Note != "short ₹8,500.00/mo" || got[2].Tone != components.ToneBad {
		t.Fatalf("status = %+v", got[2])
	}

	met := model.FinancialProfile{Income: 1000, Expenses: 2000, Savings: 5000, GoalName: "Phone", GoalAmount: 1000, Months: 3}
	got = resultMetrics(met, planner.Evaluate(met), "$")
	if got[0].Tone != components.ToneBad {
		t.Fatalf("negative disposable tone = %v, want ToneBad", got[0].Tone)
	}
	if got[1].Value != "goal met" || got[1].Tone != components.ToneGood {
		t.Fatalf("required = %+v, want goal met", got[1])
	}
}

func TestFormViewShowsDisclaimer(t *testing.T) {
	a := newTestApp(t, Options{})
	if view := a.View(); !strings.Contains(view, "general financial guidance") {
		t.Fatalf("form view missing disclaimer:\n%s", view)
	}
}
