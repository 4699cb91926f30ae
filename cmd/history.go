package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/theirongolddev/finplan/internal/cli"
	"github.com/theirongolddev/finplan/internal/config"
	"github.com/theirongolddev/finplan/internal/store"

	"github.com/spf13/cobra"
)

var flagHistoryLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List cached plans, newest first",
	RunE:  runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a cached plan (id prefix is enough)",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a cached plan",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryDelete,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every cached plan",
	RunE:  runHistoryClear,
}

func init() {
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 20, "Max plans to list (0 for all)")
	historyCmd.AddCommand(historyShowCmd, historyDeleteCmd, historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}

func openHistory() (*store.Cache, config.Config, error) {
	e, err := loadEnv(false)
	if err != nil {
		return nil, config.Config{}, err
	}
	cache, err := store.Open(config.CachePath(e.cfg))
	if err != nil {
		return nil, e.cfg, fmt.Errorf("opening plan cache: %w", err)
	}
	return cache, e.cfg, nil
}

func runHistory(_ *cobra.Command, _ []string) error {
	cache, cfg, err := openHistory()
	if err != nil {
		return err
	}
	defer cache.Close()

	plans, err := cache.ListPlans(flagHistoryLimit)
	if err != nil {
		return err
	}
	if len(plans) == 0 {
		fmt.Println("\n  No cached plans yet.")
		fmt.Println("  Run `finplan plan` to create one.")
		return nil
	}

	sym := cfg.General.CurrencySymbol
	rows := make([][]string, 0, len(plans))
	for _, p := range plans {
		status := "yes"
		if !p.Feasible {
			status = "no"
		}
		rows = append(rows, []string{
			shortID(p.ID),
			p.CreatedAt.Local().Format("2006-01-02 15:04"),
			p.GoalName,
			cli.FormatAmount(p.GoalAmount, sym),
			cli.FormatMonths(p.Months),
			status,
		})
	}

	total, _ := cache.PlanCount()
	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("CACHED PLANS  %d of %d", len(plans), total)))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"ID", "Created", "Goal", "Amount", "Timeframe", "Feasible"},
		Rows:    rows,
	}))
	fmt.Println()
	return nil
}

func runHistoryShow(_ *cobra.Command, args []string) error {
	cache, cfg, err := openHistory()
	if err != nil {
		return err
	}
	defer cache.Close()

	rec, err := findPlan(cache, args[0])
	if err != nil {
		return err
	}

	sym := cfg.General.CurrencySymbol
	fmt.Println()
	fmt.Println(cli.RenderTitle(rec.GoalName))
	fmt.Printf("  %s toward %s over %s  (model %s, %s)\n\n",
		cli.FormatAmount(rec.Savings, sym),
		cli.FormatAmount(rec.GoalAmount, sym),
		cli.FormatMonths(rec.Months),
		rec.Model,
		rec.CreatedAt.Local().Format("2006-01-02 15:04"))
	fmt.Print(cli.RenderPlan(rec.Plan, true))
	fmt.Println()
	return nil
}

func runHistoryDelete(_ *cobra.Command, args []string) error {
	cache, _, err := openHistory()
	if err != nil {
		return err
	}
	defer cache.Close()

	rec, err := findPlan(cache, args[0])
	if err != nil {
		return err
	}
	if err := cache.DeletePlan(rec.ID); err != nil {
		return err
	}
	fmt.Printf("  Deleted plan %s (%s)\n", shortID(rec.ID), rec.GoalName)
	return nil
}

func runHistoryClear(_ *cobra.Command, _ []string) error {
	cache, _, err := openHistory()
	if err != nil {
		return err
	}
	defer cache.Close()

	n, err := cache.Clear()
	if err != nil {
		return err
	}
	fmt.Printf("  Removed %d cached plan(s)\n", n)
	return nil
}

// findPlan resolves a full or prefix ID. Ambiguous prefixes are an error.
func findPlan(cache *store.Cache, id string) (store.PlanRecord, error) {
	plans, err := cache.ListPlans(0)
	if err != nil {
		return store.PlanRecord{}, err
	}

	var match []store.PlanRecord
	for _, p := range plans {
		if p.ID == id {
			return p, nil
		}
		if strings.HasPrefix(p.ID, id) {
			match = append(match, p)
		}
	}
	switch len(match) {
	case 0:
		return store.PlanRecord{}, fmt.Errorf("plan %q: %w", id, store.ErrNotFound)
	case 1:
		return match[0], nil
	default:
		return store.PlanRecord{}, errors.New("id prefix matches more than one plan")
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
