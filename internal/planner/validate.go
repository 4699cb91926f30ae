package planner

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/theirongolddev/finplan/internal/model"
)

// ErrInvalidInput marks a profile the planner must not be called with.
var ErrInvalidInput = errors.New("invalid input")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate rejects profiles that would make Evaluate or Project meaningless:
// negative or non-finite amounts, months outside [1, 36], and a blank or
// over-long goal name. It never adjusts the input. All problems are reported
// together, each wrapped with ErrInvalidInput.
func Validate(p model.FinancialProfile) error {
	p.GoalName = strings.TrimSpace(p.GoalName)

	var errs []error
	if err := validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		for _, fe := range verrs {
			errs = append(errs, fmt.Errorf("%w: %s", ErrInvalidInput, describe(fe)))
		}
	}

	amounts := []struct {
		name string
		v    float64
	}{
		{"income", p.Income},
		{"expenses", p.Expenses},
		{"savings", p.Savings},
		{"goal_amount", p.GoalAmount},
		{"breakdown.rent", p.Breakdown.Rent},
		{"breakdown.groceries", p.Breakdown.Groceries},
		{"breakdown.entertainment", p.Breakdown.Entertainment},
		{"breakdown.other", p.Breakdown.Other},
	}
	for _, a := range amounts {
		if math.IsInf(a.v, 0) {
			errs = append(errs, fmt.Errorf("%w: %s must be a finite number", ErrInvalidInput, a.name))
		}
	}

	return errors.Join(errs...)
}

func describe(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "gte":
		return fmt.Sprintf("%s must be non-negative", field)
	case "min", "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %d characters", field, model.MaxGoalNameLen)
		}
		return fmt.Sprintf("%s must be between %d and %d", field, model.MinMonths, model.MaxMonths)
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}
