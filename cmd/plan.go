package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/theirongolddev/finplan/internal/cli"
	"github.com/theirongolddev/finplan/internal/model"
	"github.com/theirongolddev/finplan/internal/planner"
	"github.com/theirongolddev/finplan/internal/tui"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	flagIncome        float64
	flagExpenses      float64
	flagSavings       float64
	flagGoal          string
	flagGoalAmount    float64
	flagMonths        int
	flagRent          float64
	flagGroceries     float64
	flagEntertainment float64
	flagOther         float64
	flagOut           string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Check a savings goal and get a written plan",
	Example: `  finplan plan --income 50000 --expenses 30000 --savings 10000 \
      --goal "Buy a car" --goal-amount 100000 --months 12`,
	RunE: runPlan,
}

func init() {
	addPlanFlags(planCmd)
	rootCmd.AddCommand(planCmd)
}

func addPlanFlags(c *cobra.Command) {
	f := c.Flags()
	f.Float64Var(&flagIncome, "income", 0, "Monthly income")
	f.Float64Var(&flagExpenses, "expenses", 0, "Monthly expenses")
	f.Float64Var(&flagSavings, "savings", 0, "Current savings")
	f.StringVar(&flagGoal, "goal", "", "Financial goal, e.g. \"Buy a car\"")
	f.Float64Var(&flagGoalAmount, "goal-amount", 0, "Goal amount")
	f.IntVar(&flagMonths, "months", 0, "Months to reach the goal (1-36, default from config)")
	f.Float64Var(&flagRent, "rent", 0, "Rent/mortgage per month")
	f.Float64Var(&flagGroceries, "groceries", 0, "Groceries per month")
	f.Float64Var(&flagEntertainment, "entertainment", 0, "Entertainment per month")
	f.Float64Var(&flagOther, "other", 0, "Other expenses per month")
	f.StringVarP(&flagOut, "out", "o", "", "Also write the plan to this file")
}

func runPlan(_ *cobra.Command, _ []string) error {
	e, err := loadEnv(true)
	if err != nil {
		return err
	}
	defer e.Close()

	p, err := profileFromInput(e.cfg.General.CurrencySymbol, e.cfg.General.DefaultMonths)
	if err != nil {
		return err
	}

	sym := e.cfg.General.CurrencySymbol
	res := planner.Evaluate(p)
	points := planner.ProjectProfile(p)
	e.log.Debug("profile evaluated",
		zap.String("goal", p.GoalName),
		zap.Float64("disposable", res.DisposableIncome),
		zap.Float64("required", res.RequiredMonthlySavings),
		zap.Bool("feasible", res.IsFeasible))

	fmt.Println()
	fmt.Println(cli.RenderTitle("FINANCIAL PLAN  " + p.GoalName))
	fmt.Println()
	fmt.Print(cli.RenderSummary(p, res, sym))
	if res.GoalMet() {
		fmt.Println("  Your current savings already cover this goal.")
	}
	fmt.Println()
	fmt.Print(cli.RenderTrajectoryTable(p.GoalName, points, sym))
	fmt.Println()

	if flagOffline {
		return nil
	}
	adv, err := e.requireAdvisor()
	if err != nil {
		return err
	}

	printErr("  Thinking...\n")
	advice, err := adv.Advise(context.Background(), p, res)
	if err != nil {
		return err
	}
	fmt.Print(cli.RenderPlan(advice.Plan, advice.Cached))

	if flagOut != "" {
		if err := tui.WritePlanFile(flagOut, advice.Plan); err != nil {
			return err
		}
		fmt.Printf("\n  Saved plan to %s\n", flagOut)
	}
	fmt.Println()
	return nil
}

// profileFromInput builds the profile from flags, falling back to the
// interactive form when no goal was given and stdin is a terminal.
func profileFromInput(currency string, defaultMonths int) (model.FinancialProfile, error) {
	if flagGoal == "" {
		if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
			return model.FinancialProfile{}, errors.New("missing --goal (run in a terminal for the interactive form)")
		}
		vals := formValuesFromFlags(defaultMonths)
		if err := tui.NewPlanForm(&vals, currency).Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return model.FinancialProfile{}, errors.New("cancelled")
			}
			return model.FinancialProfile{}, err
		}
		return vals.Profile()
	}

	months := flagMonths
	if months == 0 {
		months = defaultMonths
	}
	p := model.FinancialProfile{
		Income:     flagIncome,
		Expenses:   flagExpenses,
		Savings:    flagSavings,
		GoalName:   flagGoal,
		GoalAmount: flagGoalAmount,
		Months:     months,
		Breakdown: model.ExpenseBreakdown{
			Rent:          flagRent,
			Groceries:     flagGroceries,
			Entertainment: flagEntertainment,
			Other:         flagOther,
		},
	}.Assemble()
	if err := planner.Validate(p); err != nil {
		return model.FinancialProfile{}, err
	}
	return p, nil
}

// formValuesFromFlags pre-fills the form with any amounts given as flags.
func formValuesFromFlags(defaultMonths int) tui.FormValues {
	s := func(v float64) string {
		if v == 0 {
			return ""
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	months := defaultMonths
	if flagMonths != 0 {
		months = flagMonths
	}
	v := tui.NewFormValues(months)
	v.Income = s(flagIncome)
	v.Expenses = s(flagExpenses)
	v.Savings = s(flagSavings)
	v.GoalAmount = s(flagGoalAmount)
	v.Rent = s(flagRent)
	v.Groceries = s(flagGroceries)
	v.Entertainment = s(flagEntertainment)
	v.Other = s(flagOther)
	v.ShowBreakdown = flagRent+flagGroceries+flagEntertainment+flagOther > 0
	return v
}
