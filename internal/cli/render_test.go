package cli

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/theirongolddev/finplan/internal/model"
	"github.com/theirongolddev/finplan/internal/planner"
)

func init() {
	// Plain output keeps assertions free of escape codes.
	lipgloss.SetColorProfile(termenv.Ascii)
}

func TestRenderTable_AlignsMultiByteCells(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Item", "Amount"},
		Rows: [][]string{
			{"Rent", "₹12,000.00"},
			{"---"},
			{"Other", "₹5.00"},
		},
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 7 {
		t.Fatalf("got %d lines, want 7:\n%s", len(lines), out)
	}
	want := lipgloss.Width(lines[0])
	for i, line := range lines {
		if w := lipgloss.Width(line); w != want {
			t.Errorf("line %d width = %d, want %d: %q", i, w, want, line)
		}
	}
}

func TestRenderSummary_Infeasible(t *testing.T) {
	p := model.FinancialProfile{Income: 20000, Expenses: 18000, GoalName: "Car", GoalAmount: 60000, Months: 6}
	out := RenderSummary(p, planner.Evaluate(p), "₹")

	for _, want := range []string{"₹2,000.00", "₹10,000.00", "not feasible",
		"Your disposable income (₹2,000.00) is insufficient. Consider adjustments."} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Rent/Mortgage") {
		t.Error("breakdown rows rendered without a breakdown")
	}
}

func TestRenderSummary_FeasibleWithBreakdown(t *testing.T) {
	p := model.FinancialProfile{
		Income: 50000, Savings: 10000, GoalName: "Buy a car", GoalAmount: 100000, Months: 12,
		Breakdown: model.ExpenseBreakdown{Rent: 20000, Groceries: 6000, Entertainment: 2000, Other: 2000},
	}.Assemble()
	out := RenderSummary(p, planner.Evaluate(p), "₹")

	for _, want := range []string{"Rent/Mortgage", "₹30,000.00", "₹7,500.00", "feasible", "12 months (1 yr)", "10.0%"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "insufficient") {
		t.Error("feasible plan rendered the insufficiency warning")
	}
}

func TestRenderTrajectoryTable(t *testing.T) {
	out := RenderTrajectoryTable("Car", planner.Project(10000, 100000, 12), "₹")
	for _, want := range []string{"Savings Progress for Car", "Month 1", "₹17,500.00", "Month 12", "₹100,000.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("trajectory table missing %q", want)
		}
	}
	if RenderTrajectoryTable("x", nil, "₹") != "" {
		t.Error("empty trajectory should render nothing")
	}
}

func TestRenderSparkline(t *testing.T) {
	if got := RenderSparkline([]float64{1, 2, 3, 4, 5, 6, 7, 8}); got != "▁▂▃▄▅▆▇█" {
		t.Fatalf("RenderSparkline = %q", got)
	}
	if got := RenderSparkline([]float64{5, 5, 5}); got != "███" {
		t.Fatalf("flat RenderSparkline = %q", got)
	}
}

func TestRenderError_MultiLine(t *testing.T) {
	out := RenderError("Error: 500\nupstream body")
	if strings.Count(out, "\n") != 2 || !strings.Contains(out, "upstream body") {
		t.Fatalf("RenderError = %q", out)
	}
}

func TestRenderPlan_EndsWithDisclaimer(t *testing.T) {
	out := RenderPlan("Step 1\nStep 2", true)
	for _, want := range []string{"Here's your plan:", "(cached)", "Step 1", "Step 2", "Consult a certified financial advisor"} {
		if !strings.Contains(out, want) {
			t.Fatalf("RenderPlan missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "Step 2") > strings.Index(out, "Disclaimer:") {
		t.Fatal("disclaimer should follow the plan text")
	}
}
