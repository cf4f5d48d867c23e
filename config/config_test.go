package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func validConfig() *Config {
	return &Config{
		PX6: PX6Config{
			APIKey:  "valid-api-key",
			BaseURL: "https://px6.link",
			Timeout: 30 * time.Second,
		},
		Retry: RetryConfig{
			MaxAttempts:     4,
			InitialInterval: time.Second,
			MaxInterval:     15 * time.Second,
		},
		Output:  OutputConfig{Format: "table"},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
px6:
  api_key: file-key
  timeout: 10s
safety:
  dry_run: true
retry:
  max_attempts: 2
filter:
  default: 'Active'
  presets:
    expiring:
      expression: 'expiresWithin(3)'
      description: Renew soon
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.PX6.APIKey != "file-key" {
		t.Errorf("api key = %q, want file-key", cfg.PX6.APIKey)
	}
	if cfg.PX6.BaseURL != "https://px6.link" {
		t.Errorf("base url default not applied: %q", cfg.PX6.BaseURL)
	}
	if cfg.PX6.Timeout != 10*time.Second {
		t.Errorf("timeout = %v, want 10s", cfg.PX6.Timeout)
	}
	if !cfg.Safety.DryRun || !cfg.Safety.Confirm {
		t.Errorf("unexpected safety settings: %+v", cfg.Safety)
	}
	if cfg.Retry.MaxAttempts != 2 || cfg.Retry.InitialInterval != time.Second {
		t.Errorf("unexpected retry settings: %+v", cfg.Retry)
	}
	if cfg.Filter.DefaultExpression != "Active" {
		t.Errorf("default filter = %q", cfg.Filter.DefaultExpression)
	}

	exprs := cfg.Filter.Expressions()
	if len(exprs) != 1 || exprs["expiring"] != "expiresWithin(3)" {
		t.Errorf("Expressions() = %v", exprs)
	}
	if cfg.Filter.Presets["expiring"].Description != "Renew soon" {
		t.Errorf("preset description not loaded: %+v", cfg.Filter.Presets["expiring"])
	}
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	path := writeConfig(t, `
px6:
  api_key: file-key
output:
  format: table
`)
	t.Setenv("PX6CTL_PX6_API_KEY", "env-key")
	t.Setenv("PX6CTL_OUTPUT_FORMAT", "json")
	t.Setenv("PX6CTL_RETRY_MAX_INTERVAL", "1m")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.PX6.APIKey != "env-key" {
		t.Errorf("api key = %q, want env-key", cfg.PX6.APIKey)
	}
	if cfg.Output.Format != "json" {
		t.Errorf("output format = %q, want json", cfg.Output.Format)
	}
	if cfg.Retry.MaxInterval != time.Minute {
		t.Errorf("max interval = %v, want 1m", cfg.Retry.MaxInterval)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := writeConfig(t, `
px6:
  api_key: your-api-key-here
logging:
  level: verbose
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected a validation error")
	}
	for _, want := range []string{"px6.api_key must be set to a real value", "logging.level must be one of"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err.Error(), want)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid config",
			mutate: func(*Config) {},
		},
		{
			name:    "missing api key",
			mutate:  func(c *Config) { c.PX6.APIKey = "" },
			wantErr: "px6.api_key is required",
		},
		{
			name:    "invalid base url",
			mutate:  func(c *Config) { c.PX6.BaseURL = "not a url" },
			wantErr: "px6.base_url must be a valid URL",
		},
		{
			name:    "invalid output format",
			mutate:  func(c *Config) { c.Output.Format = "xml" },
			wantErr: "output.format must be one of: table json yaml",
		},
		{
			name:    "invalid logging format",
			mutate:  func(c *Config) { c.Logging.Format = "text" },
			wantErr: "logging.format must be one of: console json",
		},
		{
			name:    "no retry attempts",
			mutate:  func(c *Config) { c.Retry.MaxAttempts = 0 },
			wantErr: "retry.max_attempts must be at least 1",
		},
		{
			name:    "max interval below initial interval",
			mutate:  func(c *Config) { c.Retry.MaxInterval = time.Millisecond },
			wantErr: "retry.max_interval must not be less than",
		},
		{
			name: "preset without expression",
			mutate: func(c *Config) {
				c.Filter.Presets = map[string]PresetConfig{"empty": {Description: "nothing"}}
			},
			wantErr: "filter.presets[empty].expression is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}
