package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. PX6CTL_PX6_API_KEY
const EnvPrefix = "PX6CTL"

// Load loads the configuration from file and the environment. Without an
// explicit path a missing config file is not an error, so the tool can run
// from environment variables alone.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in standard locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// Check current directory first
		v.AddConfigPath(".")

		// Check home directory
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".px6ctl"))
		}

		// Check /etc
		v.AddConfigPath("/etc/px6ctl/")
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values. Every key that may come from
// the environment needs a default so that AutomaticEnv picks it up on Unmarshal.
func setDefaults(v *viper.Viper) {
	// px6 defaults
	v.SetDefault("px6.api_key", "")
	v.SetDefault("px6.base_url", "https://px6.link")
	v.SetDefault("px6.timeout", "30s")
	v.SetDefault("px6.user_agent", "px6ctl")

	// Filter defaults
	v.SetDefault("filter.default", "")

	// Safety defaults
	v.SetDefault("safety.dry_run", false)
	v.SetDefault("safety.confirm", true)

	// Retry defaults
	v.SetDefault("retry.max_attempts", 4)
	v.SetDefault("retry.initial_interval", "1s")
	v.SetDefault("retry.max_interval", "15s")

	// Output defaults
	v.SetDefault("output.format", "table")
	v.SetDefault("output.show_details", true)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)

	// Metrics defaults
	v.SetDefault("metrics.textfile", "")
}

// Expressions returns the preset expressions keyed by preset name
func (f FilterConfig) Expressions() map[string]string {
	exprs := make(map[string]string, len(f.Presets))
	for name, preset := range f.Presets {
		exprs[name] = preset.Expression
	}
	return exprs
}
