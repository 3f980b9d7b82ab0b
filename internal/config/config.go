// Package config wraps viper behind a small read-only accessor so the rest
// of the codebase never touches viper directly. A nil underlying viper is
// valid and yields zero values, which keeps partially-wired tests simple.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config provides read access to loaded configuration.
type Config struct {
	v *viper.Viper
}

// New wraps an existing viper instance. Accepts nil.
func New(v *viper.Viper) *Config {
	return &Config{v: v}
}

// Load reads configuration from the given file path, or from
// fleetgauge.yaml in the working directory when path is empty. Environment
// variables prefixed FLEETGAUGE_ override file values (dots become
// underscores, e.g. FLEETGAUGE_SOURCE_DEMO_MODE).
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("source.demo_mode", false)
	v.SetDefault("source.mock_seed", 0)
	v.SetDefault("source.graph_base_url", "https://graph.microsoft.com/v1.0")
	v.SetDefault("reports.dir", "reports")
	v.SetDefault("history.path", "fleetgauge.db")
	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.interval", "24h")

	v.SetEnvPrefix("FLEETGAUGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("fleetgauge")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		// A missing default config file is fine; defaults and env apply.
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	return New(v), nil
}

// GetString returns the string value for key, or "" if unset.
func (c *Config) GetString(key string) string {
	if c == nil || c.v == nil {
		return ""
	}
	return c.v.GetString(key)
}

// GetInt returns the int value for key, or 0 if unset.
func (c *Config) GetInt(key string) int {
	if c == nil || c.v == nil {
		return 0
	}
	return c.v.GetInt(key)
}

// GetInt64 returns the int64 value for key, or 0 if unset.
func (c *Config) GetInt64(key string) int64 {
	if c == nil || c.v == nil {
		return 0
	}
	return c.v.GetInt64(key)
}

// GetBool returns the bool value for key, or false if unset.
func (c *Config) GetBool(key string) bool {
	if c == nil || c.v == nil {
		return false
	}
	return c.v.GetBool(key)
}

// GetDuration returns the duration value for key, or 0 if unset.
func (c *Config) GetDuration(key string) time.Duration {
	if c == nil || c.v == nil {
		return 0
	}
	return c.v.GetDuration(key)
}

// IsSet reports whether key has a value from any source.
func (c *Config) IsSet(key string) bool {
	if c == nil || c.v == nil {
		return false
	}
	return c.v.IsSet(key)
}

// Sub returns the configuration subtree rooted at key. Always returns a
// usable (possibly empty) Config, never nil.
func (c *Config) Sub(key string) *Config {
	if c == nil || c.v == nil {
		return New(nil)
	}
	sub := c.v.Sub(key)
	if sub == nil {
		return New(nil)
	}
	return New(sub)
}

// Unmarshal decodes the configuration into target using mapstructure tags.
func (c *Config) Unmarshal(target any) error {
	if c == nil || c.v == nil {
		return nil
	}
	return c.v.Unmarshal(target)
}
