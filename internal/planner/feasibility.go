// Package planner implements the savings feasibility check and the linear
// trajectory projection. Every function here is pure: no I/O, no shared state.
package planner

import "github.com/theirongolddev/finplan/internal/model"

// Evaluate computes disposable income, the monthly savings needed to reach the
// goal on schedule, and whether that leaves the emergency buffer intact.
// p must already be validated; Months < 1 is a caller bug.
func Evaluate(p model.FinancialProfile) model.FeasibilityResult {
	return EvaluateValues(p.Income, p.Expenses, p.Savings, p.GoalAmount, p.Months)
}

// EvaluateValues is Evaluate over bare values.
func EvaluateValues(income, expenses, savings, goalAmount float64, months int) model.FeasibilityResult {
	disposable := income - expenses
	required := (goalAmount - savings) / float64(months)

	return model.FeasibilityResult{
		DisposableIncome:       disposable,
		RequiredMonthlySavings: required,
		IsFeasible:             disposable >= required+model.EmergencyBuffer,
	}
}
