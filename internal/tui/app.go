// Package tui provides the interactive Bubble Tea planner for finplan.
package tui

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/theirongolddev/finplan/internal/advisor"
	"github.com/theirongolddev/finplan/internal/cli"
	"github.com/theirongolddev/finplan/internal/config"
	"github.com/theirongolddev/finplan/internal/model"
	"github.com/theirongolddev/finplan/internal/planner"
	"github.com/theirongolddev/finplan/internal/tui/components"
	"github.com/theirongolddev/finplan/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

// DefaultPlanFile is where `s` writes the current plan.
const DefaultPlanFile = "financial_plan.txt"

// PlanMsg is sent when the advisor finishes, successfully or not.
type PlanMsg struct {
	Advice advisor.Advice
	Err    error
}

// SavedMsg reports the outcome of writing the plan to disk.
type SavedMsg struct {
	Path string
	Err  error
}

type phase int

const (
	phaseSetup phase = iota
	phaseForm
	phaseThinking
	phaseResult
)

// Options configures the planner app.
type Options struct {
	Config config.Config
	// Advisor is nil when no API key is configured; AdvisorErr says why.
	Advisor    *advisor.Advisor
	AdvisorErr error
	Log        *zap.Logger
	// PlanFile overrides DefaultPlanFile.
	PlanFile string
	// ForceSetup shows the setup wizard even when a config file exists.
	ForceSetup bool
}

// App is the root Bubble Tea model.
type App struct {
	cfg      config.Config
	adv      *advisor.Advisor
	advErr   error
	log      *zap.Logger
	planFile string

	phase phase

	// Setup wizard (first run)
	setupForm *huh.Form
	setupVals *SetupValues
	setupErr  error

	// Input form; values live behind a pointer so huh's bindings survive
	// the value copies Bubble Tea makes of App.
	form    *huh.Form
	vals    *FormValues
	formErr error

	// Current plan
	profile model.FinancialProfile
	result  model.FeasibilityResult
	points  []model.TrajectoryPoint
	advice  advisor.Advice
	planErr error
	note    string

	spinner  spinner.Model
	viewport viewport.Model

	width  int
	height int
}

const (
	minTerminalWidth = 60
	maxContentWidth  = 120
	minContentHeight = 5
	chartHeight      = 10
)

// NewApp creates the planner app.
func NewApp(opts Options) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	planFile := opts.PlanFile
	if planFile == "" {
		planFile = DefaultPlanFile
	}

	a := App{
		cfg:      opts.Config,
		adv:      opts.Advisor,
		advErr:   opts.AdvisorErr,
		log:      log,
		planFile: planFile,
		spinner:  sp,
		viewport: viewport.New(0, 0),
	}

	if opts.ForceSetup || !config.Exists() {
		vals := NewSetupValues(a.cfg)
		a.setupVals = &vals
		a.setupForm = NewSetupForm(a.setupVals)
		a.phase = phaseSetup
		return a
	}

	a.startForm(NewFormValues(a.cfg.General.DefaultMonths))
	return a
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	if a.phase == phaseSetup {
		return a.setupForm.Init()
	}
	return a.form.Init()
}

func (a *App) startForm(vals FormValues) {
	a.vals = &vals
	a.form = NewPlanForm(a.vals, a.cfg.General.CurrencySymbol)
	if a.width > 0 {
		a.form = a.form.WithWidth(a.contentWidth())
	}
	a.phase = phaseForm
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(a.contentWidth())
		}
		if a.form != nil {
			a.form = a.form.WithWidth(a.contentWidth())
		}
		a.resizeViewport()
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

	case PlanMsg:
		a.advice = msg.Advice
		a.planErr = msg.Err
		a.phase = phaseResult
		a.note = ""
		if msg.Advice.Cached {
			a.note = "cached"
		}
		a.resizeViewport()
		a.viewport.SetContent(a.renderResult(a.contentWidth()))
		a.viewport.GotoTop()
		return a, nil

	case SavedMsg:
		if msg.Err != nil {
			a.note = "save failed: " + msg.Err.Error()
		} else {
			a.note = "saved " + msg.Path
		}
		return a, nil
	}

	switch a.phase {
	case phaseSetup:
		return a.updateSetupForm(msg)
	case phaseForm:
		return a.updateForm(msg)
	case phaseThinking:
		if tick, ok := msg.(spinner.TickMsg); ok {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(tick)
			return a, cmd
		}
		return a, nil
	case phaseResult:
		return a.updateResult(msg)
	}
	return a, nil
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		a.setupVals.Apply(&a.cfg)
		if err := config.Save(a.cfg); err != nil {
			a.setupErr = err
			a.log.Warn("saving config failed", zap.Error(err))
		}
		a.setupForm = nil
		a.startForm(NewFormValues(a.cfg.General.DefaultMonths))
		return a, a.form.Init()
	case huh.StateAborted:
		a.setupForm = nil
		a.startForm(NewFormValues(a.cfg.General.DefaultMonths))
		return a, a.form.Init()
	}
	return a, cmd
}

func (a App) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.form = f
	}

	switch a.form.State {
	case huh.StateAborted:
		return a, tea.Quit
	case huh.StateCompleted:
		p, err := a.vals.Profile()
		if err != nil {
			// Reopen the form with what the user typed.
			a.formErr = err
			a.startForm(*a.vals)
			return a, a.form.Init()
		}
		a.formErr = nil
		return a, a.plan(p)
	}
	return a, cmd
}

// plan runs the core for p and starts the advisor in the background.
func (a *App) plan(p model.FinancialProfile) tea.Cmd {
	a.profile = p
	a.result = planner.Evaluate(p)
	a.points = planner.ProjectProfile(p)
	a.advice = advisor.Advice{}
	a.planErr = nil
	a.note = ""
	a.phase = phaseThinking

	a.log.Debug("profile evaluated",
		zap.String("goal", p.GoalName),
		zap.Float64("disposable", a.result.DisposableIncome),
		zap.Float64("required", a.result.RequiredMonthlySavings),
		zap.Bool("feasible", a.result.IsFeasible))

	return tea.Batch(a.spinner.Tick, adviseCmd(a.adv, a.advErr, p, a.result))
}

func (a App) updateResult(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "q":
			return a, tea.Quit
		case "n":
			a.startForm(NewFormValues(a.cfg.General.DefaultMonths))
			return a, a.form.Init()
		case "e":
			// Edit the previous inputs.
			vals := NewFormValues(a.cfg.General.DefaultMonths)
			if a.vals != nil {
				vals = *a.vals
			}
			a.startForm(vals)
			return a, a.form.Init()
		case "s":
			if a.advice.Plan == "" {
				a.note = "no plan to save"
				return a, nil
			}
			return a, savePlanCmd(a.planFile, a.advice.Plan)
		}
	}

	var cmd tea.Cmd
	a.viewport, cmd = a.viewport.Update(msg)
	return a, cmd
}

func (a App) contentWidth() int {
	cw := a.width
	if cw > maxContentWidth {
		cw = maxContentWidth
	}
	return cw
}

func (a *App) resizeViewport() {
	h := a.height - 2 // header + status bar
	if h < minContentHeight {
		h = minContentHeight
	}
	a.viewport.Width = a.contentWidth()
	a.viewport.Height = h
	if a.phase == phaseResult {
		a.viewport.SetContent(a.renderResult(a.contentWidth()))
	}
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}

	switch a.phase {
	case phaseSetup:
		return a.setupForm.View()
	case phaseForm:
		return a.viewForm()
	case phaseThinking:
		return a.viewThinking()
	default:
		return a.viewResult()
	}
}

func (a App) viewTooNarrow() string {
	h := a.height
	if h < 5 {
		h = 5
	}

	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  finplan needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)

	return padHeight(truncateHeight(msg, h), h)
}

func (a App) header() string {
	t := theme.Active
	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	rowStyle := lipgloss.NewStyle().Background(t.Surface).Width(a.width)

	return rowStyle.Render(logoStyle.Render(" ◈ finplan") + subStyle.Render(" · AI Financial Planner"))
}

func (a App) viewForm() string {
	t := theme.Active

	var b strings.Builder
	b.WriteString(a.header())
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(t.TextDim).Width(max(a.width-2, 20)).PaddingLeft(2).Render(cli.Disclaimer))
	b.WriteString("\n\n")
	if a.setupErr != nil {
		warn := lipgloss.NewStyle().Foreground(t.Orange)
		b.WriteString(warn.Render("  Could not save config: " + a.setupErr.Error()))
		b.WriteString("\n\n")
	}
	if a.formErr != nil {
		errStyle := lipgloss.NewStyle().Foreground(t.Red)
		for _, line := range strings.Split(a.formErr.Error(), "\n") {
			b.WriteString(errStyle.Render("  Error: " + line))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	b.WriteString(a.form.View())
	return b.String()
}

func (a App) viewThinking() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)
	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	spinnerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ finplan"))
	b.WriteString(subtitleStyle.Render(" · " + a.profile.GoalName))
	b.WriteString("\n\n")
	b.WriteString(spinnerStyle.Render(a.spinner.View()))
	b.WriteString(subtitleStyle.Render(" Thinking..."))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewResult() string {
	t := theme.Active
	w := a.width

	hints := "[s]ave  [n]ew  [e]dit  [↑↓] scroll  [q]uit"
	statusBar := components.RenderStatusBar(w, hints, a.note)
	header := a.header()

	contentH := a.height - lipgloss.Height(header) - lipgloss.Height(statusBar)
	if contentH < minContentHeight {
		contentH = minContentHeight
	}

	content := padHeight(truncateHeight(a.viewport.View(), contentH), contentH)
	content = fillLinesWithBackground(content, a.contentWidth(), t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}

// resultMetrics builds the headline cards shown above the goal card.
func resultMetrics(p model.FinancialProfile, r model.FeasibilityResult, sym string) []components.Metric {
	amt := func(v float64) string { return cli.FormatAmount(v, sym) }

	disposable := components.Metric{
		Label: "Disposable Income",
		Value: amt(r.DisposableIncome),
		Note:  "after " + amt(p.Expenses) + " expenses",
	}
	if r.DisposableIncome < 0 {
		disposable.Tone = components.ToneBad
	}

	required := components.Metric{
		Label: "Required Savings",
		Value: amt(r.RequiredMonthlySavings),
		Note:  "per month for " + cli.FormatMonths(p.Months),
	}
	switch {
	case r.GoalMet():
		required.Value, required.Note, required.Tone = "goal met", "savings already cover it", components.ToneGood
	case !r.IsFeasible:
		required.Tone = components.ToneWarn
	}

	status := components.Metric{
		Label: "Status",
		Value: "Feasible",
		Note:  "buffer " + amt(model.EmergencyBuffer) + " kept",
		Tone:  components.ToneGood,
	}
	if !r.IsFeasible {
		status.Value, status.Note, status.Tone = "Not feasible", "short "+amt(r.Shortfall())+"/mo", components.ToneBad
	}
	return []components.Metric{disposable, required, status}
}

// renderResult renders the scrollable body: metrics, progress, chart and plan.
func (a App) renderResult(cw int) string {
	t := theme.Active
	sym := a.cfg.General.CurrencySymbol
	amt := func(v float64) string { return cli.FormatAmount(v, sym) }

	var b strings.Builder
	b.WriteString(components.MetricCardRow(resultMetrics(a.profile, a.result, sym), cw))
	b.WriteString("\n")

	inner := components.CardInnerWidth(cw)
	barW := inner - 20
	if barW < 10 {
		barW = 10
	}
	progress := components.GoalProgressBar("Saved", a.profile.Savings, a.profile.GoalAmount, 8, barW)
	progress += "\n" + lipgloss.NewStyle().Foreground(t.TextDim).Render(
		fmt.Sprintf("%s of %s toward %s", amt(a.profile.Savings), amt(a.profile.GoalAmount), a.profile.GoalName))
	if denom := a.result.RequiredMonthlySavings + model.EmergencyBuffer; denom > 0 && !a.result.GoalMet() {
		progress += "\n" + lipgloss.NewStyle().Foreground(t.TextMuted).Render("Target coverage ") +
			components.ProgressBar(a.result.DisposableIncome/denom, barW)
	}
	if !a.result.IsFeasible {
		warn := lipgloss.NewStyle().Foreground(t.Orange)
		progress += "\n" + warn.Render(fmt.Sprintf(
			"Warning: Your disposable income (%s) is insufficient. Consider adjustments.",
			amt(a.result.DisposableIncome)))
	}
	b.WriteString(components.ContentCard("Goal", progress, cw))
	b.WriteString("\n")

	chart := components.TrajectoryChart(a.profile.GoalName, a.points, t.Blue, inner, chartHeight)
	b.WriteString(components.ContentCard("Trajectory", chart, cw))
	b.WriteString("\n")

	var body, title string
	if a.planErr != nil {
		title = "Advisor"
		body = lipgloss.NewStyle().Foreground(t.Red).Width(inner).Render(advisor.UserMessage(a.planErr))
	} else {
		title = "Here's your plan"
		body = lipgloss.NewStyle().Foreground(t.TextPrimary).Width(inner).Render(strings.TrimSpace(a.advice.Plan)) +
			"\n\n" + lipgloss.NewStyle().Foreground(t.TextDim).Width(inner).Render(cli.Disclaimer)
	}
	b.WriteString(components.ContentCard(title, body, cw))

	return b.String()
}

// ─── Commands ───────────────────────────────────────────────────

func adviseCmd(adv *advisor.Advisor, advErr error, p model.FinancialProfile, r model.FeasibilityResult) tea.Cmd {
	return func() tea.Msg {
		if adv == nil {
			if advErr == nil {
				advErr = config.ErrMissingAPIKey
			}
			return PlanMsg{Err: advErr}
		}
		advice, err := adv.Advise(context.Background(), p, r)
		return PlanMsg{Advice: advice, Err: err}
	}
}

func savePlanCmd(path, plan string) tea.Cmd {
	return func() tea.Msg {
		return SavedMsg{Path: path, Err: WritePlanFile(path, plan)}
	}
}

// WritePlanFile writes the plan text as a plain-text download.
func WritePlanFile(path, plan string) error {
	if err := os.WriteFile(path, []byte(strings.TrimSpace(plan)+"\n"), 0o644); err != nil { //nolint:gosec // user-chosen output file
		return fmt.Errorf("writing plan: %w", err)
	}
	return nil
}

// ─── Helpers ────────────────────────────────────────────────────

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	padding := strings.Repeat("\n", h-len(lines))
	return s + padding
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")

	var result strings.Builder
	for i, line := range lines {
		placed := lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
		result.WriteString(placed)
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}
