// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2024-2026 koano contributors
// https://github.com/ushiradineth/koano

package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ushiradineth/koano/internal/view"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Backend BackendConfig `mapstructure:"backend"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Grid    GridConfig    `mapstructure:"grid"`
	Refresh RefreshConfig `mapstructure:"refresh"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig holds the gateway HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// BackendConfig holds the event API configuration
type BackendConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// AuthConfig holds session authentication configuration
type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	JWTExpiry time.Duration `mapstructure:"jwt_expiry"`
	// AccessToken is the backend bearer token for the initial session.
	AccessToken string `mapstructure:"access_token"`
}

// GridConfig holds the calendar grid configuration
type GridConfig struct {
	ColumnWidth   int    `mapstructure:"column_width"`
	ViewportWidth int    `mapstructure:"viewport_width"`
	VisibleDays   int    `mapstructure:"visible_days"`
	Timezone      string `mapstructure:"timezone"`
	// TwentyFourHour selects 24-hour time labels.
	TwentyFourHour bool `mapstructure:"twenty_four_hour"`
}

// RefreshConfig holds the periodic window refetch configuration
type RefreshConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Schedule string        `mapstructure:"schedule"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// LoadConfig loads configuration from file and environment
func LoadConfig(cfgFile string) (*Config, error) {
	v := viper.New()

	// Config file settings
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/koano")
		v.AddConfigPath("$HOME/.koano")
		v.AddConfigPath(".")
	}

	// Environment variables
	v.SetEnvPrefix("KOANO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Dual-binding: KOANO_ prefixed (canonical) + unprefixed (compose compat).
	_ = v.BindEnv("backend.url", "KOANO_BACKEND_URL", "BACKEND_URL")
	_ = v.BindEnv("auth.jwt_secret", "KOANO_JWT_SECRET", "JWT_SECRET")
	_ = v.BindEnv("auth.access_token", "KOANO_ACCESS_TOKEN", "ACCESS_TOKEN")

	setDefaults(v)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, proceed with env vars and defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "10s")

	// Backend
	v.SetDefault("backend.timeout", "10s")

	// Auth
	v.SetDefault("auth.jwt_expiry", "24h")

	// Grid
	v.SetDefault("grid.column_width", 240)
	v.SetDefault("grid.viewport_width", 1680)
	v.SetDefault("grid.visible_days", 7)
	v.SetDefault("grid.timezone", "Local")
	v.SetDefault("grid.twenty_four_hour", false)

	// Refresh
	v.SetDefault("refresh.enabled", true)
	v.SetDefault("refresh.schedule", "@every 5m")
	v.SetDefault("refresh.timeout", "30s")

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
}

// Validate validates the configuration.
// Collects all errors so the operator can fix them in one pass.
func (c *Config) Validate() error {
	var errs []error

	if c.Backend.URL == "" {
		errs = append(errs, fmt.Errorf("backend.url is required"))
	}

	if c.Auth.JWTSecret == "" {
		errs = append(errs, fmt.Errorf("auth.jwt_secret is required"))
	} else if len(c.Auth.JWTSecret) < 32 {
		errs = append(errs, fmt.Errorf("auth.jwt_secret must be at least 32 characters"))
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port: %d is not a valid port (1-65535)", c.Server.Port))
	}

	checkPositive := func(name string, d time.Duration) {
		if d < 0 {
			errs = append(errs, fmt.Errorf("%s must be non-negative, got %s", name, d))
		}
	}
	checkPositive("server.read_timeout", c.Server.ReadTimeout)
	checkPositive("server.write_timeout", c.Server.WriteTimeout)
	checkPositive("server.idle_timeout", c.Server.IdleTimeout)
	checkPositive("server.shutdown_timeout", c.Server.ShutdownTimeout)
	checkPositive("backend.timeout", c.Backend.Timeout)
	checkPositive("auth.jwt_expiry", c.Auth.JWTExpiry)
	checkPositive("refresh.timeout", c.Refresh.Timeout)

	if c.Grid.ColumnWidth <= 0 {
		errs = append(errs, fmt.Errorf("grid.column_width must be positive, got %d", c.Grid.ColumnWidth))
	}
	validDays := false
	for _, n := range view.ValidVisibleDays {
		if c.Grid.VisibleDays == n {
			validDays = true
			break
		}
	}
	if !validDays {
		errs = append(errs, fmt.Errorf("grid.visible_days: %d is not valid (must be one of %v)", c.Grid.VisibleDays, view.ValidVisibleDays))
	}
	if c.Grid.Timezone != "" && c.Grid.Timezone != "Local" {
		if _, err := time.LoadLocation(c.Grid.Timezone); err != nil {
			errs = append(errs, fmt.Errorf("grid.timezone: %q is not a valid IANA zone", c.Grid.Timezone))
		}
	}

	if c.Logging.Level != "" {
		validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
		if !validLevels[strings.ToLower(c.Logging.Level)] {
			errs = append(errs, fmt.Errorf("logging.level: %q is not valid (debug, info, warn, error)", c.Logging.Level))
		}
	}
	if c.Logging.Format != "" {
		validFormats := map[string]bool{"json": true, "text": true, "console": true}
		if !validFormats[strings.ToLower(c.Logging.Format)] {
			errs = append(errs, fmt.Errorf("logging.format: %q is not valid (json, text, console)", c.Logging.Format))
		}
	}

	if len(errs) == 0 {
		return nil
	}
	// Join all errors with newlines for readable operator output
	var msgs []string
	for _, e := range errs {
		msgs = append(msgs, e.Error())
	}
	return fmt.Errorf("config validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

// Location resolves the configured display timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Grid.Timezone == "" || c.Grid.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Grid.Timezone)
}

// PrintMasked prints configuration with sensitive values masked
func (c *Config) PrintMasked() {
	fmt.Printf("Server: %s:%d\n", c.Server.Host, c.Server.Port)
	fmt.Printf("Backend URL: %s\n", c.Backend.URL)
	fmt.Printf("JWT Secret: %s\n", maskSecret(c.Auth.JWTSecret))
	fmt.Printf("Grid: %d visible days, %dpx columns, timezone %s\n",
		c.Grid.VisibleDays, c.Grid.ColumnWidth, c.Grid.Timezone)
	fmt.Printf("Refresh Enabled: %v (%s)\n", c.Refresh.Enabled, c.Refresh.Schedule)
	fmt.Printf("Log Level: %s\n", c.Logging.Level)
	fmt.Printf("Log Format: %s\n", c.Logging.Format)
}

// maskSecret hides all but the first characters of a secret
func maskSecret(s string) string {
	if s == "" {
		return "<not set>"
	}
	if len(s) <= 4 {
		return "***"
	}
	return s[:4] + strings.Repeat("*", 8)
}
