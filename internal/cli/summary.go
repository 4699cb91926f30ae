package cli

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/finplan/internal/model"
)

// RenderSummary renders the inputs and the feasibility check as a table,
// followed by the insufficiency warning when the plan is not feasible.
func RenderSummary(p model.FinancialProfile, r model.FeasibilityResult, symbol string) string {
	amt := func(v float64) string { return FormatAmount(v, symbol) }

	rows := [][]string{
		{"Monthly Income", amt(p.Income)},
		{"Monthly Expenses", amt(p.Expenses)},
		{"Current Savings", amt(p.Savings)},
		{"---"},
		{"Goal", p.GoalName},
		{"Goal Amount", amt(p.GoalAmount)},
		{"Timeframe", FormatMonths(p.Months)},
	}
	if p.GoalAmount > 0 {
		rows = append(rows, []string{"Saved So Far", FormatPercent(min(p.Savings/p.GoalAmount, 1))})
	}

	if p.HasBreakdown() {
		rows = append(rows,
			[]string{"---"},
			[]string{"Rent/Mortgage", amt(p.Breakdown.Rent)},
			[]string{"Groceries", amt(p.Breakdown.Groceries)},
			[]string{"Entertainment", amt(p.Breakdown.Entertainment)},
			[]string{"Other", amt(p.Breakdown.Other)},
		)
	}

	required := amt(r.RequiredMonthlySavings)
	if r.GoalMet() {
		required = "goal already met"
	}
	status := goodStyle.Render("feasible")
	if !r.IsFeasible {
		status = warnStyle.Render("not feasible")
	}

	rows = append(rows,
		[]string{"---"},
		[]string{"Disposable Income", amt(r.DisposableIncome)},
		[]string{"Required Savings/mo", required},
		[]string{"Emergency Buffer", amt(model.EmergencyBuffer)},
		[]string{"Status", status},
	)

	var b strings.Builder
	b.WriteString(RenderTable(Table{
		Headers: []string{"Plan Input", "Value"},
		Rows:    rows,
	}))

	if !r.IsFeasible {
		b.WriteString("\n")
		b.WriteString(RenderWarning(fmt.Sprintf(
			"Your disposable income (%s) is insufficient. Consider adjustments.", amt(r.DisposableIncome))))
	}
	return b.String()
}

// RenderTrajectoryTable lists projected savings per month with a sparkline header.
func RenderTrajectoryTable(goalName string, points []model.TrajectoryPoint, symbol string) string {
	if len(points) == 0 {
		return ""
	}

	values := make([]float64, len(points))
	rows := make([][]string, len(points))
	for i, pt := range points {
		values[i] = pt.ProjectedSavings
		rows[i] = []string{fmt.Sprintf("Month %d", pt.Month), FormatAmount(pt.ProjectedSavings, symbol)}
	}

	var b strings.Builder
	b.WriteString("  ")
	b.WriteString(mutedStyle.Render("Trend "))
	b.WriteString(RenderSparkline(values))
	b.WriteString("\n")
	b.WriteString(RenderTable(Table{
		Title:   fmt.Sprintf("Savings Progress for %s", goalName),
		Headers: []string{"Month", "Projected Savings"},
		Rows:    rows,
	}))
	return b.String()
}

// RenderWarning renders a single warning line.
func RenderWarning(msg string) string {
	return "  " + warnStyle.Render("Warning: "+msg) + "\n"
}

// RenderError renders an error message; multi-line bodies are indented.
func RenderError(msg string) string {
	lines := strings.Split(strings.TrimRight(msg, "\n"), "\n")
	var b strings.Builder
	for i, line := range lines {
		b.WriteString("  ")
		if i == 0 {
			b.WriteString(errStyle.Render(line))
		} else {
			b.WriteString(dimStyle.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Disclaimer accompanies every generated plan.
const Disclaimer = "Disclaimer: This app provides general financial guidance. Consult a certified financial advisor for personalized advice."

// RenderPlan renders the advisor text under a heading, followed by the disclaimer.
func RenderPlan(plan string, cached bool) string {
	var b strings.Builder
	b.WriteString("  ")
	b.WriteString(goodStyle.Render("Here's your plan:"))
	if cached {
		b.WriteString(dimStyle.Render("  (cached)"))
	}
	b.WriteString("\n\n")
	for _, line := range strings.Split(strings.TrimSpace(plan), "\n") {
		b.WriteString("  ")
		b.WriteString(valueStyle.Render(line))
		b.WriteString("\n")
	}
	b.WriteString("\n  ")
	b.WriteString(dimStyle.Render(Disclaimer))
	b.WriteString("\n")
	return b.String()
}
