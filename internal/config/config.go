package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the project-local config file looked up when --config is not given.
const DefaultPath = ".mlccheck.yaml"

// Config holds all mlccheck configuration.
type Config struct {
	// Checker settings
	AllowUndeclaredStructs bool `yaml:"allow_undeclared_structs"`

	// Extraction
	Extractor   string `yaml:"extractor"`   // line, c-comments
	Concurrency int    `yaml:"concurrency"` // extraction workers

	Report  ReportConfig  `yaml:"report"`
	History HistoryConfig `yaml:"history"`
	Watch   WatchConfig   `yaml:"watch"`
	Logging LoggingConfig `yaml:"logging"`
}

// ReportConfig configures diagnostic rendering.
type ReportConfig struct {
	Color string `yaml:"color"` // auto, always, never
}

// HistoryConfig configures the run history database.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// ValidExtractors lists the extractor names the config accepts.
var ValidExtractors = []string{"line", "c-comments"}

// ValidColorModes lists the accepted report.color values.
var ValidColorModes = []string{"auto", "always", "never"}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		AllowUndeclaredStructs: false,
		Extractor:              "line",
		Concurrency:            8,

		Report: ReportConfig{
			Color: "auto",
		},

		History: HistoryConfig{
			Enabled: false,
			Path:    filepath.Join(".mlccheck", "history.db"),
		},

		Watch: WatchConfig{
			Debounce: "300ms",
		},

		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file.
// A missing file yields the defaults; environment overrides apply either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Override with environment variables
	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save writes the configuration as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("MLCCHECK_ALLOW_UNDECL"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.AllowUndeclaredStructs = b
		}
	}
	if v := os.Getenv("MLCCHECK_EXTRACTOR"); v != "" {
		c.Extractor = v
	}
	if v := os.Getenv("MLCCHECK_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("MLCCHECK_HISTORY_PATH"); v != "" {
		c.History.Path = v
		c.History.Enabled = true
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if !contains(ValidExtractors, c.Extractor) {
		return fmt.Errorf("invalid extractor: %s (valid: %v)", c.Extractor, ValidExtractors)
	}
	if !contains(ValidColorModes, c.Report.Color) {
		return fmt.Errorf("invalid report color mode: %s (valid: %v)", c.Report.Color, ValidColorModes)
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency must not be negative, got %d", c.Concurrency)
	}
	if c.History.Enabled && c.History.Path == "" {
		return fmt.Errorf("history enabled but history.path is empty")
	}
	if _, err := time.ParseDuration(c.Watch.Debounce); c.Watch.Debounce != "" && err != nil {
		return fmt.Errorf("invalid watch debounce %q: %w", c.Watch.Debounce, err)
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
