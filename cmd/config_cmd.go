package cmd

import (
	"fmt"
	"os"

	"github.com/theirongolddev/finplan/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(flagEnvFile); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.Path())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Currency:       %s\n", cfg.General.CurrencySymbol)
	fmt.Printf("    Default months: %d\n", cfg.General.DefaultMonths)
	fmt.Println()

	fmt.Println("  [Advisor]")
	apiKey := config.GetAPIKey(cfg)
	switch {
	case os.Getenv("GROQ_API_KEY") != "":
		fmt.Printf("    API key:  %s (from GROQ_API_KEY)\n", maskAPIKey(apiKey))
	case apiKey != "":
		fmt.Printf("    API key:  %s\n", maskAPIKey(apiKey))
	default:
		fmt.Println("    API key:  not configured")
	}
	fmt.Printf("    Base URL: %s\n", cfg.Advisor.BaseURL)
	fmt.Printf("    Model:    %s\n", cfg.Advisor.Model)
	fmt.Printf("    Timeout:  %s\n", cfg.Advisor.Timeout())
	fmt.Println()

	fmt.Println("  [Server]")
	fmt.Printf("    Address:         %s\n", cfg.Server.Addr)
	fmt.Printf("    Plan rate limit: %d/min\n", cfg.Server.RatePerMinute)
	fmt.Println()

	fmt.Println("  [Cache]")
	fmt.Printf("    Path:    %s\n", config.CachePath(cfg))
	fmt.Printf("    Enabled: %v\n", !cfg.Cache.Disabled)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  Run `finplan setup` to reconfigure.")
	return nil
}
