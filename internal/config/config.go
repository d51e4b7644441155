// SPDX-License-Identifier: MIT
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

var v *viper.Viper

// DefaultBreakpoints are the canonical derivative widths, widest first
var DefaultBreakpoints = []int{1920, 1600, 1280, 800, 400}

// InitConfig initializes the configuration system
func InitConfig(configPath string) error {
	v = viper.New()

	// Set defaults
	setDefaults(filepath.Dir(configPath))

	// SITEBUILDER_DATABASE_PATH overrides database.path
	v.SetEnvPrefix("SITEBUILDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set config file path
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// Create config directory if it doesn't exist
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Try to read existing config
	if err := v.ReadInConfig(); err != nil {
		// If config doesn't exist, create it with defaults
		var notFound viper.ConfigFileNotFoundError
		if os.IsNotExist(err) || errors.As(err, &notFound) {
			if err := v.WriteConfigAs(configPath); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}
		} else {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	return nil
}

// setDefaults sets default configuration values relative to the config directory
func setDefaults(baseDir string) {
	// Database defaults
	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.path", filepath.Join(baseDir, "sitebuilder.db"))

	// Storage defaults
	v.SetDefault("storage.files_dir", filepath.Join(baseDir, "files"))
	v.SetDefault("storage.styles_dir", filepath.Join(baseDir, "files", "styles"))
	v.SetDefault("export.dir", filepath.Join(baseDir, "config", "sync"))

	// Responsive image defaults
	v.SetDefault("responsive_image.breakpoints", DefaultBreakpoints)
	v.SetDefault("responsive_image.lazy_placeholder", false)
	v.SetDefault("images.jpeg_quality", 85)

	// Server defaults
	v.SetDefault("server.http_port", "8080")
	v.SetDefault("server.rate_limit", 60)
	v.SetDefault("server.rate_interval", "1m")
	v.SetDefault("server.blocked_ips", []string{})
	v.SetDefault("server.allowed_ips", []string{})
	v.SetDefault("server.hsts", false)
	v.SetDefault("server.trusted_proxies", []string{})

	// Logging defaults
	v.SetDefault("log.level", "warn")
}

// GetString returns a config value as string
func GetString(key string) string {
	if v == nil {
		return ""
	}
	return v.GetString(key)
}

// GetInt returns a config value as int
func GetInt(key string) int {
	if v == nil {
		return 0
	}
	return v.GetInt(key)
}

// GetBool returns a config value as bool
func GetBool(key string) bool {
	if v == nil {
		return false
	}
	return v.GetBool(key)
}

// GetDuration returns a config value as time.Duration
func GetDuration(key string) time.Duration {
	if v == nil {
		return 0
	}
	return v.GetDuration(key)
}

// GetStringSlice returns a config value as a list of strings
func GetStringSlice(key string) []string {
	if v == nil {
		return nil
	}
	return v.GetStringSlice(key)
}

// GetIntSlice returns a config value as a list of ints. Env overrides and
// `config set` store lists as strings such as "1024,512" or "1024 512".
func GetIntSlice(key string) ([]int, error) {
	if v == nil {
		return nil, fmt.Errorf("config not initialized")
	}
	raw := v.Get(key)
	if s, ok := raw.(string); ok {
		raw = strings.FieldsFunc(s, func(r rune) bool {
			return r == ',' || unicode.IsSpace(r)
		})
	}
	values, err := cast.ToIntSliceE(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid integer list for %s: %w", key, err)
	}
	return values, nil
}

// Breakpoints returns the configured derivative widths, falling back to the defaults
func Breakpoints() ([]int, error) {
	if v == nil {
		return DefaultBreakpoints, nil
	}
	values, err := GetIntSlice("responsive_image.breakpoints")
	if err != nil {
		return nil, err
	}
	for _, width := range values {
		if width <= 0 {
			return nil, fmt.Errorf("breakpoint width must be positive, got %d", width)
		}
	}
	if len(values) == 0 {
		return DefaultBreakpoints, nil
	}
	return values, nil
}

// Set sets a config value and saves to file
func Set(key string, value interface{}) error {
	if v == nil {
		return fmt.Errorf("config not initialized")
	}

	v.Set(key, value)

	if err := v.WriteConfig(); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// GetAll returns all config values as a map
func GetAll() map[string]interface{} {
	if v == nil {
		return nil
	}
	return v.AllSettings()
}
