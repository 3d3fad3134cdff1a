// Package config loads and saves the evidens configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// BackendType selects which ContentService implementation the app talks to
type BackendType string

const (
	BackendRemote BackendType = "remote"
	BackendLocal  BackendType = "local"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Backend BackendConfig `mapstructure:"backend"`
	Sync    SyncConfig    `mapstructure:"sync"`
	UI      UIConfig      `mapstructure:"ui"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// ServerConfig holds the content API endpoint and credentials
type ServerConfig struct {
	URL   string `mapstructure:"url"`   // API base URL
	Token string `mapstructure:"token"` // Bearer token (JWT)
}

// BackendConfig picks the content backend
type BackendConfig struct {
	Type   BackendType `mapstructure:"type"`    // "remote" or "local"
	DBPath string      `mapstructure:"db_path"` // bbolt file for the local backend
}

// SyncConfig tunes pagination and remote calls
type SyncConfig struct {
	PageSize          int           `mapstructure:"page_size"`
	PrefetchThreshold int           `mapstructure:"prefetch_threshold"` // Rows from the end that trigger a next page
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
}

// UIConfig holds UI configuration
type UIConfig struct {
	Theme      string `mapstructure:"theme"`
	DefaultTab string `mapstructure:"default_tab"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// MetricsConfig controls the optional prometheus listener
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Backend: BackendConfig{
			Type:   BackendLocal,
			DBPath: filepath.Join(defaultDataPath(), "evidens.db"),
		},
		Sync: SyncConfig{
			PageSize:          20,
			PrefetchThreshold: 5,
			RequestTimeout:    15 * time.Second,
		},
		UI: UIConfig{
			Theme:      "default",
			DefaultTab: "home",
		},
		Logging: LoggingConfig{
			File:  filepath.Join(defaultDataPath(), "evidens.log"),
			Level: "INFO",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    "127.0.0.1:9464",
		},
	}
}

// defaultDataPath returns the default data directory for the current OS
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "evidens")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "evidens")
	}
}

// DefaultConfigDir returns the default config directory for the current OS
func DefaultConfigDir() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "evidens")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "evidens")
	}
}

// LoadConfig loads configuration from the default location and environment
func LoadConfig() (*Config, error) {
	return Load(DefaultConfigDir())
}

// Load reads config.yaml from dir, applying EVIDENS_* environment overrides.
// A missing file is not an error; defaults are used.
func Load(dir string) (*Config, error) {
	cfg := DefaultConfig()
	v := newViper(cfg)
	v.AddConfigPath(dir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// SaveConfig writes cfg to the default location
func SaveConfig(cfg *Config) error {
	return Save(DefaultConfigDir(), cfg)
}

// Save writes cfg to dir/config.yaml
func Save(dir string, cfg *Config) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	for key, value := range flatten(cfg) {
		v.Set(key, value)
	}

	configFile := filepath.Join(dir, "config.yaml")
	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// IsConfigured reports whether the selected backend has what it needs
func (c *Config) IsConfigured() bool {
	if c.Backend.Type == BackendLocal {
		return c.Backend.DBPath != ""
	}
	return c.Server.URL != "" && c.Server.Token != ""
}

func newViper(defaults *Config) *viper.Viper {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Every key needs a default so AutomaticEnv can see it during Unmarshal
	for key, value := range flatten(defaults) {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix("EVIDENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// flatten lists the snake_case keys written to config.yaml
func flatten(cfg *Config) map[string]any {
	return map[string]any{
		"server.url":              cfg.Server.URL,
		"server.token":            cfg.Server.Token,
		"backend.type":            string(cfg.Backend.Type),
		"backend.db_path":         cfg.Backend.DBPath,
		"sync.page_size":          cfg.Sync.PageSize,
		"sync.prefetch_threshold": cfg.Sync.PrefetchThreshold,
		"sync.request_timeout":    cfg.Sync.RequestTimeout.String(),
		"ui.theme":                cfg.UI.Theme,
		"ui.default_tab":          cfg.UI.DefaultTab,
		"logging.file":            cfg.Logging.File,
		"logging.level":           cfg.Logging.Level,
		"metrics.enabled":         cfg.Metrics.Enabled,
		"metrics.addr":            cfg.Metrics.Addr,
	}
}
