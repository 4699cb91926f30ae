package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/finplan/internal/model"
	"github.com/theirongolddev/finplan/internal/planner"

	"github.com/charmbracelet/huh"
)

// FormValues holds the raw text the planner form binds to.
type FormValues struct {
	Income     string
	Expenses   string
	Savings    string
	GoalName   string
	GoalAmount string
	Months     int

	ShowBreakdown bool
	Rent          string
	Groceries     string
	Entertainment string
	Other         string
}

// NewFormValues returns empty values with the month picker preset.
func NewFormValues(defaultMonths int) FormValues {
	if defaultMonths < model.MinMonths || defaultMonths > model.MaxMonths {
		defaultMonths = model.DefaultMonths
	}
	return FormValues{Months: defaultMonths}
}

// NewPlanForm builds the input form for a financial profile. Values are
// written into v as the user types.
func NewPlanForm(v *FormValues, currency string) *huh.Form {
	amount := func(title string, dst *string) *huh.Input {
		return huh.NewInput().
			Title(fmt.Sprintf("%s (%s)", title, currency)).
			Placeholder("0").
			Value(dst).
			Validate(validateAmount)
	}

	monthOpts := make([]huh.Option[int], 0, model.MaxMonths)
	for m := model.MinMonths; m <= model.MaxMonths; m++ {
		monthOpts = append(monthOpts, huh.NewOption(strconv.Itoa(m), m))
	}

	return huh.NewForm(
		huh.NewGroup(
			amount("Monthly Income", &v.Income),
			amount("Monthly Expenses", &v.Expenses),
			amount("Current Savings", &v.Savings),
		).Title("Your finances"),

		huh.NewGroup(
			huh.NewInput().
				Title("Financial Goal").
				Description("e.g., Buy a car").
				CharLimit(model.MaxGoalNameLen).
				Value(&v.GoalName).
				Validate(validateGoalName),
			amount("Goal Amount", &v.GoalAmount),
			huh.NewSelect[int]().
				Title("Time to achieve goal (months)").
				Options(monthOpts...).
				Height(6).
				Value(&v.Months),
			huh.NewConfirm().
				Title("Add an expense breakdown?").
				Affirmative("Yes").
				Negative("No").
				Value(&v.ShowBreakdown),
		).Title("Your goal"),

		huh.NewGroup(
			amount("Rent/Mortgage", &v.Rent),
			amount("Groceries", &v.Groceries),
			amount("Entertainment", &v.Entertainment),
			amount("Other", &v.Other),
		).Title("Expense breakdown").
			WithHideFunc(func() bool { return !v.ShowBreakdown }),
	).WithShowHelp(true)
}

// Profile converts the form text into an assembled, validated profile.
func (v FormValues) Profile() (model.FinancialProfile, error) {
	var errs []error
	num := func(field, s string) float64 {
		f, err := parseAmount(s)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %s %v", planner.ErrInvalidInput, field, err))
		}
		return f
	}

	p := model.FinancialProfile{
		Income:     num("income", v.Income),
		Expenses:   num("expenses", v.Expenses),
		Savings:    num("savings", v.Savings),
		GoalName:   strings.TrimSpace(v.GoalName),
		GoalAmount: num("goal_amount", v.GoalAmount),
		Months:     v.Months,
	}
	if v.ShowBreakdown {
		p.Breakdown = model.ExpenseBreakdown{
			Rent:          num("breakdown.rent", v.Rent),
			Groceries:     num("breakdown.groceries", v.Groceries),
			Entertainment: num("breakdown.entertainment", v.Entertainment),
			Other:         num("breakdown.other", v.Other),
		}
	}
	if len(errs) > 0 {
		return model.FinancialProfile{}, errors.Join(errs...)
	}

	p = p.Assemble()
	if err := planner.Validate(p); err != nil {
		return model.FinancialProfile{}, err
	}
	return p, nil
}

// parseAmount accepts blank (zero), plain numbers and thousands separators.
func parseAmount(s string) (float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.New("is not a number")
	}
	return f, nil
}

func validateAmount(s string) error {
	f, err := parseAmount(s)
	if err != nil {
		return errors.New("enter a number")
	}
	if f < 0 {
		return errors.New("must be zero or more")
	}
	return nil
}

func validateGoalName(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("please enter a valid financial goal")
	}
	if len([]rune(s)) > model.MaxGoalNameLen {
		return fmt.Errorf("at most %d characters", model.MaxGoalNameLen)
	}
	return nil
}
