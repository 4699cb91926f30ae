package advisor

import (
	"strings"
	"testing"

	"github.com/theirongolddev/finplan/internal/model"
	"github.com/theirongolddev/finplan/internal/planner"
)

func TestBuildPrompt_IncludesCoreFigures(t *testing.T) {
	p := model.FinancialProfile{
		Income: 50000, Expenses: 30000, Savings: 10000,
		GoalName: "Buy a car", GoalAmount: 100000, Months: 12,
	}
	got := BuildPrompt(p, planner.Evaluate(p), "₹")

	for _, want := range []string{
		"Monthly income: ₹50000.00",
		"Monthly expenses: ₹30000.00",
		"Current savings: ₹10000.00",
		"Save ₹100000.00 for 'Buy a car' in 12 months",
		"Disposable income: ₹20000.00",
		"Required monthly savings: ₹7500.00",
		"Maintain a ₹500.00 emergency buffer.",
		"6. Suggest low-risk investment options if applicable.",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q\n%s", want, got)
		}
	}
	if strings.Contains(got, "Expense breakdown") {
		t.Error("prompt mentions a breakdown that was not given")
	}
	if strings.Contains(got, "short by") {
		t.Error("feasible plan reported a shortfall")
	}
}

func TestBuildPrompt_BreakdownAndShortfall(t *testing.T) {
	p := model.FinancialProfile{
		Income: 20000, Savings: 0, GoalName: "Laptop", GoalAmount: 60000, Months: 6,
		Breakdown: model.ExpenseBreakdown{Rent: 12000, Groceries: 4000, Entertainment: 1000, Other: 1000},
	}.Assemble()
	got := BuildPrompt(p, planner.Evaluate(p), "$")

	if !strings.Contains(got, "Expense breakdown: Rent/Mortgage: $12000.00, Groceries: $4000.00, Entertainment: $1000.00, Other: $1000.00") {
		t.Errorf("breakdown line missing:\n%s", got)
	}
	if !strings.Contains(got, "Monthly expenses: $18000.00") {
		t.Errorf("assembled expenses missing:\n%s", got)
	}
	if !strings.Contains(got, "short by $8500.00") {
		t.Errorf("shortfall missing:\n%s", got)
	}
}

func TestBuildPrompt_GoalMet(t *testing.T) {
	p := model.FinancialProfile{Income: 1000, Expenses: 100, Savings: 9000, GoalName: "Fund", GoalAmount: 5000, Months: 3}
	got := BuildPrompt(p, planner.Evaluate(p), "₹")
	if !strings.Contains(got, "already cover the goal") {
		t.Errorf("goal-met line missing:\n%s", got)
	}
	if strings.Contains(got, "Required monthly savings") {
		t.Errorf("negative requirement quoted:\n%s", got)
	}
}
