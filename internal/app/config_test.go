// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2024-2026 koano contributors
// https://github.com/ushiradineth/koano

package app

import (
	"strings"
	"testing"
	"time"
)

// validConfig returns a Config that passes all validation.
func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Backend: BackendConfig{
			URL:     "https://api.koano.app",
			Timeout: 10 * time.Second,
		},
		Auth: AuthConfig{
			JWTSecret: strings.Repeat("a", 32),
			JWTExpiry: 24 * time.Hour,
		},
		Grid: GridConfig{
			ColumnWidth:   240,
			ViewportWidth: 1680,
			VisibleDays:   7,
			Timezone:      "UTC",
		},
		Refresh: RefreshConfig{
			Enabled:  true,
			Schedule: "@every 5m",
			Timeout:  30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

func TestConfig_Validate_Valid(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got: %v", err)
	}
}

func TestConfig_Validate_MissingBackendURL(t *testing.T) {
	cfg := validConfig()
	cfg.Backend.URL = ""
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "backend.url") {
		t.Errorf("expected backend.url error, got: %v", err)
	}
}

func TestConfig_Validate_ShortJWTSecret(t *testing.T) {
	cfg := validConfig()
	cfg.Auth.JWTSecret = "short"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "jwt_secret") {
		t.Errorf("expected jwt_secret error, got: %v", err)
	}
}

func TestConfig_Validate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 70000
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "server.port") {
		t.Errorf("expected server.port error, got: %v", err)
	}
}

func TestConfig_Validate_InvalidVisibleDays(t *testing.T) {
	cfg := validConfig()
	cfg.Grid.VisibleDays = 5
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "visible_days") {
		t.Errorf("expected visible_days error, got: %v", err)
	}
}

func TestConfig_Validate_InvalidTimezone(t *testing.T) {
	cfg := validConfig()
	cfg.Grid.Timezone = "Mars/Olympus"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "timezone") {
		t.Errorf("expected timezone error, got: %v", err)
	}
}

func TestConfig_Validate_InvalidLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "verbose"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "logging.level") {
		t.Errorf("expected logging.level error, got: %v", err)
	}
}

func TestConfig_Validate_CollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Backend.URL = ""
	cfg.Auth.JWTSecret = ""
	cfg.Grid.VisibleDays = 5
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}
	for _, want := range []string{"backend.url", "jwt_secret", "visible_days"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error should mention %s, got: %v", want, err)
		}
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("default port = %d", cfg.Server.Port)
	}
	if cfg.Grid.VisibleDays != 7 {
		t.Errorf("default visible days = %d", cfg.Grid.VisibleDays)
	}
	if cfg.Grid.ColumnWidth != 240 {
		t.Errorf("default column width = %d", cfg.Grid.ColumnWidth)
	}
	if cfg.Refresh.Schedule != "@every 5m" {
		t.Errorf("default refresh schedule = %q", cfg.Refresh.Schedule)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("default log format = %q", cfg.Logging.Format)
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("KOANO_BACKEND_URL", "https://env.example.com")
	t.Setenv("KOANO_GRID_VISIBLE_DAYS", "3")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Backend.URL != "https://env.example.com" {
		t.Errorf("backend url = %q", cfg.Backend.URL)
	}
	if cfg.Grid.VisibleDays != 3 {
		t.Errorf("visible days = %d", cfg.Grid.VisibleDays)
	}
}
