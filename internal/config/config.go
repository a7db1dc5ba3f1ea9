// Package config loads tool configuration from defaults, an optional
// config file, and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

// Config is the full configuration surface.
type Config struct {
	// Completion service
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`

	// Summary shape
	Language     string `mapstructure:"language"`
	DetailLevel  string `mapstructure:"detail_level"`
	OutputFormat string `mapstructure:"output_format"`
	ParserMode   string `mapstructure:"parser_mode"`

	// Chunking and retry policy
	SectionTokenLimit int           `mapstructure:"section_token_limit"`
	MaxRetries        int           `mapstructure:"max_retries"`
	MaxElapsedTime    time.Duration `mapstructure:"max_elapsed_time"`

	// Scheduling
	Workers           int     `mapstructure:"workers"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	ChapterLimit      int     `mapstructure:"chapter_limit"`

	// Output
	OutputDir string `mapstructure:"output_dir"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Model:             "anthropic/claude-3.5-sonnet",
		Language:          "en",
		DetailLevel:       "medium",
		OutputFormat:      "markdown",
		ParserMode:        "delimited",
		SectionTokenLimit: 2000,
		MaxRetries:        3,
		MaxElapsedTime:    300 * time.Second,
		Workers:           3,
		RequestsPerSecond: 2,
		ChapterLimit:      0,
		OutputDir:         ".",
	}
}

// Load builds the configuration from defaults, the config file (explicit
// path, else ./config.yaml or ~/.pocketbook/config.yaml), and POCKETBOOK_*
// environment variables.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	defaults := Default()
	v.SetDefault("model", defaults.Model)
	v.SetDefault("language", defaults.Language)
	v.SetDefault("detail_level", defaults.DetailLevel)
	v.SetDefault("output_format", defaults.OutputFormat)
	v.SetDefault("parser_mode", defaults.ParserMode)
	v.SetDefault("section_token_limit", defaults.SectionTokenLimit)
	v.SetDefault("max_retries", defaults.MaxRetries)
	v.SetDefault("max_elapsed_time", defaults.MaxElapsedTime)
	v.SetDefault("workers", defaults.Workers)
	v.SetDefault("requests_per_second", defaults.RequestsPerSecond)
	v.SetDefault("chapter_limit", defaults.ChapterLimit)
	v.SetDefault("output_dir", defaults.OutputDir)

	v.SetEnvPrefix("POCKETBOOK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// The original tool read its key from API_KEY; keep honoring it.
	_ = v.BindEnv("api_key", "POCKETBOOK_API_KEY", "API_KEY")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.pocketbook")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the knobs that have a closed set of values and the
// required credential.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return errors.New("api key is not set (POCKETBOOK_API_KEY or api_key in config)")
	}
	switch c.DetailLevel {
	case "short", "medium", "long":
	default:
		return fmt.Errorf("invalid detail_level %q (want short, medium or long)", c.DetailLevel)
	}
	switch c.OutputFormat {
	case "markdown", "html":
	default:
		return fmt.Errorf("invalid output_format %q (want markdown or html)", c.OutputFormat)
	}
	switch c.ParserMode {
	case "json", "delimited":
	default:
		return fmt.Errorf("invalid parser_mode %q (want json or delimited)", c.ParserMode)
	}
	if c.SectionTokenLimit < 1 {
		return fmt.Errorf("section_token_limit must be >= 1, got %d", c.SectionTokenLimit)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be >= 1, got %d", c.Workers)
	}
	return nil
}

// WriteDefault writes the default configuration as YAML to path, refusing
// to overwrite an existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	defaults := Default()
	// Durations marshal as strings so the file stays hand-editable.
	data, err := yaml.Marshal(map[string]any{
		"api_key":             defaults.APIKey,
		"model":               defaults.Model,
		"language":            defaults.Language,
		"detail_level":        defaults.DetailLevel,
		"output_format":       defaults.OutputFormat,
		"parser_mode":         defaults.ParserMode,
		"section_token_limit": defaults.SectionTokenLimit,
		"max_retries":         defaults.MaxRetries,
		"max_elapsed_time":    defaults.MaxElapsedTime.String(),
		"workers":             defaults.Workers,
		"requests_per_second": defaults.RequestsPerSecond,
		"chapter_limit":       defaults.ChapterLimit,
		"output_dir":          defaults.OutputDir,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal default config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
