// Package cmd implements the finplan CLI commands.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/theirongolddev/finplan/internal/advisor"
	"github.com/theirongolddev/finplan/internal/cli"
	"github.com/theirongolddev/finplan/internal/config"
	"github.com/theirongolddev/finplan/internal/logging"
	"github.com/theirongolddev/finplan/internal/store"
	"github.com/theirongolddev/finplan/internal/tui/theme"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	flagNoCache bool
	flagOffline bool
	flagVerbose bool
	flagEnvFile string
)

var rootCmd = &cobra.Command{
	Use:   "finplan",
	Short: "AI financial planner",
	Long: "Check whether a savings goal fits your monthly budget, project the savings\n" +
		"trajectory, and get a written plan from a Groq-hosted model.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runPlan,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprint(os.Stderr, cli.RenderError(advisor.UserMessage(err)))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "Skip the plan cache and always ask the model")
	rootCmd.PersistentFlags().BoolVar(&flagOffline, "offline", false, "Only run the feasibility check and trajectory")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log debug output to stderr")
	rootCmd.PersistentFlags().StringVar(&flagEnvFile, "env-file", ".env", "dotenv file with GROQ_API_KEY")

	addPlanFlags(rootCmd)
}

// env is the per-invocation runtime shared by commands.
type env struct {
	cfg config.Config
	log *zap.Logger

	adv    *advisor.Advisor
	advErr error
	cache  *store.Cache
}

func (e *env) Close() {
	if e.cache != nil {
		_ = e.cache.Close()
	}
	_ = e.log.Sync()
}

// loadEnv reads .env and the config file, applies the theme and builds the
// logger. The advisor is only wired when withAdvisor is set.
func loadEnv(withAdvisor bool) (*env, error) {
	if err := config.LoadDotEnv(flagEnvFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	theme.SetActive(cfg.Appearance.Theme)

	e := &env{cfg: cfg, log: logging.New(flagVerbose)}
	if !withAdvisor || flagOffline {
		return e, nil
	}

	key, err := config.RequireAPIKey(cfg)
	if err != nil {
		e.advErr = err
		return e, nil
	}

	client := advisor.NewClient(key, advisor.Options{
		BaseURL:      cfg.Advisor.BaseURL,
		Model:        cfg.Advisor.Model,
		SystemPrompt: cfg.Advisor.SystemPrompt,
		Timeout:      cfg.Advisor.Timeout(),
	})

	var plans advisor.PlanStore
	if !flagNoCache && !cfg.Cache.Disabled {
		cache, err := store.Open(config.CachePath(cfg))
		if err != nil {
			// Cache open failed, plan without it
			e.log.Warn("plan cache unavailable", zap.Error(err))
		} else {
			e.cache = cache
			plans = cache
		}
	}

	e.adv = advisor.New(client, plans, cfg.General.CurrencySymbol, e.log)
	return e, nil
}

// requireAdvisor returns the advisor or the reason it is missing.
func (e *env) requireAdvisor() (*advisor.Advisor, error) {
	if e.adv != nil {
		return e.adv, nil
	}
	if e.advErr != nil {
		return nil, e.advErr
	}
	return nil, errors.New("advisor disabled by --offline")
}

func maskAPIKey(key string) string {
	if len(key) > 16 {
		return key[:8] + "..." + key[len(key)-4:]
	}
	if len(key) > 4 {
		return key[:4] + "..."
	}
	return "****"
}

func printErr(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format, args...)
}
