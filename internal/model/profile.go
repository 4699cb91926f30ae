// Package model defines the data types shared by the planner, advisor and renderers.
package model

const (
	// EmergencyBuffer is the reserve a plan must keep above the monthly savings target.
	EmergencyBuffer = 500.0

	MinMonths      = 1
	MaxMonths      = 36
	DefaultMonths  = 12
	MaxGoalNameLen = 50
)

// ExpenseBreakdown is the optional per-category split of monthly expenses.
type ExpenseBreakdown struct {
	Rent          float64 `json:"rent" validate:"gte=0"`
	Groceries     float64 `json:"groceries" validate:"gte=0"`
	Entertainment float64 `json:"entertainment" validate:"gte=0"`
	Other         float64 `json:"other" validate:"gte=0"`
}

// Total returns the sum of all categories.
func (b ExpenseBreakdown) Total() float64 {
	return b.Rent + b.Groceries + b.Entertainment + b.Other
}

// FinancialProfile is the per-request input to the planner. It is a plain value;
// callers copy it freely.
type FinancialProfile struct {
	Income     float64          `json:"income" validate:"gte=0"`
	Expenses   float64          `json:"expenses" validate:"gte=0"`
	Savings    float64          `json:"savings" validate:"gte=0"`
	GoalName   string           `json:"goal_name" validate:"required,max=50"`
	GoalAmount float64          `json:"goal_amount" validate:"gte=0"`
	Months     int              `json:"months" validate:"min=1,max=36"`
	Breakdown  ExpenseBreakdown `json:"breakdown"`
}

// EffectiveExpenses applies the category precedence rule: a positive
// breakdown total wins over a smaller direct figure.
func EffectiveExpenses(direct float64, b ExpenseBreakdown) float64 {
	total := b.Total()
	if total <= 0 {
		return direct
	}
	return max(direct, total)
}

// Assemble returns a copy of p with Expenses resolved against the breakdown.
// It is applied once, when the profile is built from user input.
func (p FinancialProfile) Assemble() FinancialProfile {
	p.Expenses = EffectiveExpenses(p.Expenses, p.Breakdown)
	return p
}

// HasBreakdown reports whether any expense category was filled in.
func (p FinancialProfile) HasBreakdown() bool {
	return p.Breakdown.Total() > 0
}

// FeasibilityResult is derived from a profile and never mutated.
type FeasibilityResult struct {
	DisposableIncome       float64 `json:"disposable_income"`
	RequiredMonthlySavings float64 `json:"required_monthly_savings"`
	IsFeasible             bool    `json:"is_feasible"`
}

// GoalMet reports whether current savings already cover the goal.
func (r FeasibilityResult) GoalMet() bool {
	return r.RequiredMonthlySavings <= 0
}

// Shortfall is how far disposable income falls below the savings target plus
// the emergency buffer. Zero when the plan is feasible.
func (r FeasibilityResult) Shortfall() float64 {
	gap := r.RequiredMonthlySavings + EmergencyBuffer - r.DisposableIncome
	if gap < 0 {
		return 0
	}
	return gap
}

// TrajectoryPoint is the projected cumulative savings at the end of a month.
type TrajectoryPoint struct {
	Month            int     `json:"month"`
	ProjectedSavings float64 `json:"projected_savings"`
}
