package tui

import (
	"strings"

	"github.com/theirongolddev/finplan/internal/config"
	"github.com/theirongolddev/finplan/internal/tui/theme"

	"github.com/charmbracelet/huh"
)

// SetupValues holds the answers collected by the setup wizard.
type SetupValues struct {
	APIKey   string
	Model    string
	Currency string
	Theme    string
}

var modelOptions = []string{
	config.DefaultModel,
	"llama-3.1-8b-instant",
	"mixtral-8x7b-32768",
	"gemma2-9b-it",
}

var currencyOptions = []string{"₹", "$", "€", "£", "¥"}

// NewSetupValues seeds the wizard from the current config.
func NewSetupValues(cfg config.Config) SetupValues {
	return SetupValues{
		Model:    cfg.Advisor.Model,
		Currency: cfg.General.CurrencySymbol,
		Theme:    cfg.Appearance.Theme,
	}
}

// NewSetupForm builds the first-run wizard. A blank API key keeps whatever
// is already configured.
func NewSetupForm(v *SetupValues) *huh.Form {
	models := make([]huh.Option[string], 0, len(modelOptions)+1)
	seen := false
	for _, m := range modelOptions {
		models = append(models, huh.NewOption(m, m))
		seen = seen || m == v.Model
	}
	if !seen && v.Model != "" {
		models = append(models, huh.NewOption(v.Model+" (current)", v.Model))
	}

	currencies := make([]huh.Option[string], 0, len(currencyOptions)+1)
	seen = false
	for _, c := range currencyOptions {
		currencies = append(currencies, huh.NewOption(c, c))
		seen = seen || c == v.Currency
	}
	if !seen && v.Currency != "" {
		currencies = append(currencies, huh.NewOption(v.Currency, v.Currency))
	}

	themes := huh.NewOptions(theme.Names()...)

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to finplan").
				Description("Plans are written by a Groq-hosted model.\nGet an API key at console.groq.com > API Keys."),
			huh.NewInput().
				Title("Groq API key").
				Description("Leave blank to keep the current key or use GROQ_API_KEY.").
				EchoMode(huh.EchoModePassword).
				Value(&v.APIKey),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Model").
				Options(models...).
				Value(&v.Model),
			huh.NewSelect[string]().
				Title("Currency symbol").
				Options(currencies...).
				Value(&v.Currency),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themes...).
				Value(&v.Theme),
		),
	)
}

// Apply copies the wizard answers into cfg and activates the chosen theme.
func (v SetupValues) Apply(cfg *config.Config) {
	if key := strings.TrimSpace(v.APIKey); key != "" {
		cfg.Advisor.APIKey = key
	}
	if v.Model != "" {
		cfg.Advisor.Model = v.Model
	}
	if v.Currency != "" {
		cfg.General.CurrencySymbol = v.Currency
	}
	if v.Theme != "" {
		cfg.Appearance.Theme = v.Theme
		theme.SetActive(v.Theme)
	}
}
