// Package config loads shopadmin configuration from a YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all shopadmin configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Store configuration
	Store StoreConfig `yaml:"store"`

	// Auth configuration
	Auth AuthConfig `yaml:"auth"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`

	// UI
	UI UIConfig `yaml:"ui"`
}

// StoreConfig configures the document store backend.
type StoreConfig struct {
	// DatabasePath is the SQLite file backing the local store.
	DatabasePath string `yaml:"database_path"`

	// RequestTimeout bounds every read expected to complete quickly.
	RequestTimeout string `yaml:"request_timeout"`
}

// AuthConfig configures the session authority.
type AuthConfig struct {
	// TokenSecret signs session tokens. Overridable via SHOPADMIN_TOKEN_SECRET.
	TokenSecret string `yaml:"token_secret"`

	// SessionTTL is the session token lifetime.
	SessionTTL string `yaml:"session_ttl"`
}

// LoggingConfig configures the file-based diagnostic logger.
type LoggingConfig struct {
	Debug bool   `yaml:"debug"`
	Level string `yaml:"level"`
}

// UIConfig configures the terminal dashboard.
type UIConfig struct {
	// Theme is "light", "dark" or "auto".
	Theme string `yaml:"theme"`

	// SearchDebounce delays loader re-runs while the user is typing.
	SearchDebounce string `yaml:"search_debounce"`
}

// DefaultDataDir returns the per-user data directory.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".shopadmin"
	}
	return filepath.Join(home, ".shopadmin")
}

// DefaultConfig returns the baseline configuration.
func DefaultConfig() *Config {
	dataDir := DefaultDataDir()
	return &Config{
		Name:    "shopadmin",
		Version: "1.0.0",

		Store: StoreConfig{
			DatabasePath:   filepath.Join(dataDir, "shopadmin.db"),
			RequestTimeout: "30s",
		},

		Auth: AuthConfig{
			SessionTTL: "24h",
		},

		Logging: LoggingConfig{
			Debug: false,
			Level: "info",
		},

		UI: UIConfig{
			Theme:          "auto",
			SearchDebounce: "250ms",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults; environment variables are applied on top either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if p := os.Getenv("SHOPADMIN_DB"); p != "" {
		c.Store.DatabasePath = p
	}
	if s := os.Getenv("SHOPADMIN_TOKEN_SECRET"); s != "" {
		c.Auth.TokenSecret = s
	}
	if t := os.Getenv("SHOPADMIN_THEME"); t != "" {
		c.UI.Theme = t
	}
	if os.Getenv("SHOPADMIN_DEBUG") == "1" {
		c.Logging.Debug = true
		c.Logging.Level = "debug"
	}
}

// GetRequestTimeout parses the store request timeout, defaulting to 30s.
func (c *Config) GetRequestTimeout() time.Duration {
	d, err := time.ParseDuration(c.Store.RequestTimeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// GetSessionTTL parses the session token lifetime, defaulting to 24h.
func (c *Config) GetSessionTTL() time.Duration {
	d, err := time.ParseDuration(c.Auth.SessionTTL)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

// GetSearchDebounce parses the search debounce interval, defaulting to 250ms.
func (c *Config) GetSearchDebounce() time.Duration {
	d, err := time.ParseDuration(c.UI.SearchDebounce)
	if err != nil || d <= 0 {
		return 250 * time.Millisecond
	}
	return d
}
