package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	PX6     PX6Config     `mapstructure:"px6"`
	Filter  FilterConfig  `mapstructure:"filter"`
	Safety  SafetyConfig  `mapstructure:"safety"`
	Retry   RetryConfig   `mapstructure:"retry"`
	Output  OutputConfig  `mapstructure:"output"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// PX6Config holds px6 API connection details
type PX6Config struct {
	APIKey    string        `mapstructure:"api_key" validate:"required,ne=your-api-key-here"`
	BaseURL   string        `mapstructure:"base_url" validate:"required,url"`
	Timeout   time.Duration `mapstructure:"timeout" validate:"gte=0"`
	UserAgent string        `mapstructure:"user_agent"`
}

// FilterConfig contains the default filter and named presets
type FilterConfig struct {
	DefaultExpression string                  `mapstructure:"default"`
	Presets           map[string]PresetConfig `mapstructure:"presets" validate:"dive"`
}

// PresetConfig is a named filter expression
type PresetConfig struct {
	Expression  string `mapstructure:"expression" validate:"required"`
	Description string `mapstructure:"description"`
}

// SafetyConfig contains safety-related settings
type SafetyConfig struct {
	DryRun  bool `mapstructure:"dry_run"`
	Confirm bool `mapstructure:"confirm"`
}

// RetryConfig controls how rate limited read-only calls are retried
type RetryConfig struct {
	MaxAttempts     int           `mapstructure:"max_attempts" validate:"min=1,max=10"`
	InitialInterval time.Duration `mapstructure:"initial_interval" validate:"gt=0"`
	MaxInterval     time.Duration `mapstructure:"max_interval" validate:"gtefield=InitialInterval"`
}

// OutputConfig controls how command results are printed
type OutputConfig struct {
	Format      string `mapstructure:"format" validate:"oneof=table json yaml"`
	ShowDetails bool   `mapstructure:"show_details"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=console json"`
	Color  bool   `mapstructure:"color"`
}

// MetricsConfig controls the Prometheus textfile written after each command
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}
