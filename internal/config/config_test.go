package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SectionTokenLimit != 2000 {
		t.Errorf("section_token_limit = %d", cfg.SectionTokenLimit)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("max_retries = %d", cfg.MaxRetries)
	}
	if cfg.MaxElapsedTime != 300*time.Second {
		t.Errorf("max_elapsed_time = %v", cfg.MaxElapsedTime)
	}
	if cfg.ParserMode != "delimited" {
		t.Errorf("parser_mode = %q", cfg.ParserMode)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "api_key: file-key\nlanguage: pt\nworkers: 5\nmax_elapsed_time: 120s\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIKey != "file-key" {
		t.Errorf("api_key = %q", cfg.APIKey)
	}
	if cfg.Language != "pt" {
		t.Errorf("language = %q", cfg.Language)
	}
	if cfg.Workers != 5 {
		t.Errorf("workers = %d", cfg.Workers)
	}
	if cfg.MaxElapsedTime != 120*time.Second {
		t.Errorf("max_elapsed_time = %v", cfg.MaxElapsedTime)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("POCKETBOOK_API_KEY", "env-key")
	t.Setenv("POCKETBOOK_LANGUAGE", "de")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIKey != "env-key" {
		t.Errorf("api_key = %q", cfg.APIKey)
	}
	if cfg.Language != "de" {
		t.Errorf("language = %q", cfg.Language)
	}
}

func TestValidate(t *testing.T) {
	valid := Default()
	valid.APIKey = "k"
	if err := valid.Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing api key", func(c *Config) { c.APIKey = "" }},
		{"bad detail level", func(c *Config) { c.DetailLevel = "verbose" }},
		{"bad output format", func(c *Config) { c.OutputFormat = "pdf" }},
		{"bad parser mode", func(c *Config) { c.ParserMode = "auto" }},
		{"zero token limit", func(c *Config) { c.SectionTokenLimit = 0 }},
		{"zero workers", func(c *Config) { c.Workers = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			cfg.APIKey = "k"
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := WriteDefault(path); err == nil {
		t.Error("expected error overwriting existing config")
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load written config: %v", err)
	}
	if cfg.Model != Default().Model {
		t.Errorf("model = %q", cfg.Model)
	}
}
