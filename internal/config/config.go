// Package config loads and saves finplan settings.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	DefaultBaseURL      = "https://api.groq.com/openai/v1"
	DefaultModel        = "llama-3.3-70b-versatile"
	DefaultSystemPrompt = "You are a helpful AI financial advisor."
	DefaultAddr         = "127.0.0.1:8787"

	apiKeyEnv = "GROQ_API_KEY"
)

// ErrMissingAPIKey is returned when the advisor is needed but no key is set.
var ErrMissingAPIKey = errors.New("GROQ_API_KEY not found. Please set it in a .env file")

// Config holds all finplan configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Advisor    AdvisorConfig    `toml:"advisor"`
	Server     ServerConfig     `toml:"server"`
	Appearance AppearanceConfig `toml:"appearance"`
	Cache      CacheConfig      `toml:"cache"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	CurrencySymbol string `toml:"currency_symbol"`
	DefaultMonths  int    `toml:"default_months"`
}

// AdvisorConfig holds the chat-completion provider settings.
type AdvisorConfig struct {
	APIKey       string `toml:"api_key,omitempty"`
	BaseURL      string `toml:"base_url,omitempty"`
	Model        string `toml:"model"`
	TimeoutSec   int    `toml:"timeout_sec"`
	SystemPrompt string `toml:"system_prompt,omitempty"`
}

// Timeout returns the per-request timeout, never below five seconds.
func (a AdvisorConfig) Timeout() time.Duration {
	if a.TimeoutSec < 5 {
		return 60 * time.Second
	}
	return time.Duration(a.TimeoutSec) * time.Second
}

// ServerConfig holds `finplan serve` settings.
type ServerConfig struct {
	Addr          string `toml:"addr"`
	RatePerMinute int    `toml:"rate_per_minute"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// CacheConfig controls the plan cache.
type CacheConfig struct {
	Path     string `toml:"path,omitempty"`
	Disabled bool   `toml:"disabled"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			CurrencySymbol: "₹",
			DefaultMonths:  12,
		},
		Advisor: AdvisorConfig{
			BaseURL:      DefaultBaseURL,
			Model:        DefaultModel,
			TimeoutSec:   60,
			SystemPrompt: DefaultSystemPrompt,
		},
		Server: ServerConfig{
			Addr:          DefaultAddr,
			RatePerMinute: 20,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "finplan")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "finplan")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// CachePath returns the plan cache location, honoring cache.path.
func CachePath(cfg Config) string {
	if cfg.Cache.Path != "" {
		return cfg.Cache.Path
	}
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "finplan", "plans.db")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "finplan", "plans.db")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads a config file at path. Keys missing from the file keep their defaults.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // path is the user's own config location
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	return SaveTo(Path(), cfg)
}

// SaveTo writes the config to path, creating parent directories.
func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600) //nolint:gosec // user config path
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// LoadDotEnv loads KEY=value pairs from a .env file in the working directory.
// Variables already set in the environment win. A missing file is not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// GetAPIKey returns the API key from env var or config, in that order.
func GetAPIKey(cfg Config) string {
	if key := os.Getenv(apiKeyEnv); key != "" {
		return key
	}
	return cfg.Advisor.APIKey
}

// RequireAPIKey is GetAPIKey that fails with ErrMissingAPIKey when nothing is set.
func RequireAPIKey(cfg Config) (string, error) {
	key := GetAPIKey(cfg)
	if key == "" {
		return "", ErrMissingAPIKey
	}
	return key, nil
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}
