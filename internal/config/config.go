package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the default config file name inside a workspace.
const FileName = "intake.yaml"

// Config represents the top-level intake.yaml configuration.
type Config struct {
	Ingest     IngestConfig     `yaml:"ingest"`
	Thresholds ThresholdsConfig `yaml:"thresholds"`
	Categorize CategorizeConfig `yaml:"categorize"`
	Server     ServerConfig     `yaml:"server"`
	Logging    LoggingConfig    `yaml:"logging"`
	Formats    []FormatConfig   `yaml:"formats,omitempty"`
}

// IngestConfig tunes format detection and file-level warnings.
type IngestConfig struct {
	SampleRows       int `yaml:"sample_rows"`
	LargeFileWarning int `yaml:"large_file_warning"` // transaction count above which an advisory is emitted
}

// ThresholdsConfig controls the confidence buckets used in categorization stats.
type ThresholdsConfig struct {
	AutoConfirm float64 `yaml:"auto_confirm"`
	ReviewFlag  float64 `yaml:"review_flag"`
}

// CategorizeConfig configures the per-transaction categorizer run.
type CategorizeConfig struct {
	RulesFile  string `yaml:"rules_file"`
	Timeout    string `yaml:"timeout"` // Go duration, e.g. "5s"
	YieldEvery int    `yaml:"yield_every"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr        string `yaml:"addr"`
	BodyLimitMB int    `yaml:"body_limit_mb"`
}

// LoggingConfig selects log level and output format ("console" or "json").
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// FormatConfig declares a custom bank export layout.
type FormatConfig struct {
	Name              string   `yaml:"name"`
	Headers           []string `yaml:"headers,omitempty"`
	Identifiers       []string `yaml:"identifiers,omitempty"`
	DateColumn        string   `yaml:"date_column"`
	DescriptionColumn string   `yaml:"description_column"`
	AmountColumn      string   `yaml:"amount_column,omitempty"`
	WithdrawalColumn  string   `yaml:"withdrawal_column,omitempty"`
	DepositColumn     string   `yaml:"deposit_column,omitempty"`
	DateNotation      string   `yaml:"date_notation,omitempty"`
	ContentPatterns   []string `yaml:"content_patterns,omitempty"`
}

// CategorizeTimeout parses Categorize.Timeout, falling back to 10s.
func (c *Config) CategorizeTimeout() time.Duration {
	d, err := time.ParseDuration(c.Categorize.Timeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

// Load reads an intake.yaml file from disk. Missing sections keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault loads path, returning defaults when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new workspace.
func Default() *Config {
	return &Config{
		Ingest: IngestConfig{
			SampleRows:       5,
			LargeFileWarning: 5000,
		},
		Thresholds: ThresholdsConfig{
			AutoConfirm: 0.95,
			ReviewFlag:  0.70,
		},
		Categorize: CategorizeConfig{
			RulesFile:  "rules/categorization-rules.yaml",
			Timeout:    "10s",
			YieldEvery: 25,
		},
		Server: ServerConfig{
			Addr:        ":8080",
			BodyLimitMB: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
