package cmd

import (
	"fmt"

	"github.com/theirongolddev/finplan/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var flagTUISetup bool

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive planner",
	RunE:  runTUI,
}

func init() {
	tuiCmd.Flags().BoolVar(&flagTUISetup, "setup", false, "Show the setup wizard first")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	e, err := loadEnv(true)
	if err != nil {
		return err
	}
	defer e.Close()

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	app := tui.NewApp(tui.Options{
		Config:     e.cfg,
		Advisor:    e.adv,
		AdvisorErr: e.advErr,
		Log:        e.log,
		PlanFile:   flagOut,
		ForceSetup: flagTUISetup,
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
