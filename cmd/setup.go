package cmd

import (
	"errors"
	"fmt"

	"github.com/theirongolddev/finplan/internal/config"
	"github.com/theirongolddev/finplan/internal/tui"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	// Load existing config or defaults
	cfg, _ := config.Load()

	if existing := config.GetAPIKey(cfg); existing != "" {
		fmt.Printf("\n  Current API key: %s\n", maskAPIKey(existing))
	}

	vals := tui.NewSetupValues(cfg)
	if err := tui.NewSetupForm(&vals).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("  Setup cancelled, nothing saved.")
			return nil
		}
		return err
	}
	vals.Apply(&cfg)

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.Path())
	fmt.Println("  Run `finplan setup` anytime to reconfigure.")
	fmt.Println()

	return nil
}
