package advisor

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/theirongolddev/finplan/internal/model"
)

// BuildPrompt renders the user message sent to the model. r must be the
// result of evaluating p; its figures are quoted so the model does not have
// to redo the arithmetic.
func BuildPrompt(p model.FinancialProfile, r model.FeasibilityResult, currency string) string {
	amt := func(v float64) string { return currency + decimal.NewFromFloat(v).StringFixed(2) }

	var b strings.Builder
	b.WriteString("You are an expert financial advisor. Create a detailed monthly savings plan for a user with:\n")
	fmt.Fprintf(&b, "- Monthly income: %s\n", amt(p.Income))
	fmt.Fprintf(&b, "- Monthly expenses: %s\n", amt(p.Expenses))
	fmt.Fprintf(&b, "- Current savings: %s\n", amt(p.Savings))
	fmt.Fprintf(&b, "- Goal: Save %s for '%s' in %d months\n", amt(p.GoalAmount), strings.TrimSpace(p.GoalName), p.Months)
	if p.HasBreakdown() {
		fmt.Fprintf(&b, "- Expense breakdown: Rent/Mortgage: %s, Groceries: %s, Entertainment: %s, Other: %s\n",
			amt(p.Breakdown.Rent), amt(p.Breakdown.Groceries), amt(p.Breakdown.Entertainment), amt(p.Breakdown.Other))
	}
	fmt.Fprintf(&b, "- Disposable income: %s per month\n", amt(r.DisposableIncome))
	if r.GoalMet() {
		b.WriteString("- Current savings already cover the goal\n")
	} else {
		fmt.Fprintf(&b, "- Required monthly savings: %s\n", amt(r.RequiredMonthlySavings))
	}
	if !r.IsFeasible {
		fmt.Fprintf(&b, "- The plan is short by %s per month once the emergency buffer is kept\n", amt(r.Shortfall()))
	}

	b.WriteString("\nRequirements:\n")
	fmt.Fprintf(&b, "1. Maintain a %s emergency buffer.\n", amt(model.EmergencyBuffer))
	b.WriteString("2. Calculate monthly savings needed.\n")
	b.WriteString("3. If unfeasible, suggest adjustments.\n")
	b.WriteString("4. Provide two actionable strategies to optimize savings.\n")
	b.WriteString("5. Include a monthly breakdown.\n")
	b.WriteString("6. Suggest low-risk investment options if applicable.\n")

	return b.String()
}
