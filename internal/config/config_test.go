// Collisionscope - UK Road Collision Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/collisionscope

package config

import (
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default configuration should validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "empty database path",
			mutate:  func(c *Config) { c.Database.Path = "" },
			wantErr: "DUCKDB_PATH",
		},
		{
			name:    "zero batch size",
			mutate:  func(c *Config) { c.Loader.BatchSize = 0 },
			wantErr: "BATCH_SIZE",
		},
		{
			name:    "negative port",
			mutate:  func(c *Config) { c.Server.Port = -1 },
			wantErr: "HTTP_PORT",
		},
		{
			name:    "port too large",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "HTTP_PORT",
		},
		{
			name:    "zero server timeout",
			mutate:  func(c *Config) { c.Server.Timeout = 0 },
			wantErr: "SERVER_TIMEOUT",
		},
		{
			name:    "zero point limit",
			mutate:  func(c *Config) { c.API.DefaultPointLimit = 0 },
			wantErr: "DEFAULT_POINT_LIMIT",
		},
		{
			name:    "max below default point limit",
			mutate:  func(c *Config) { c.API.MaxPointLimit = c.API.DefaultPointLimit - 1 },
			wantErr: "MAX_POINT_LIMIT",
		},
		{
			name:    "zero road type limit",
			mutate:  func(c *Config) { c.API.DefaultRoadTypeLimit = 0 },
			wantErr: "DEFAULT_ROAD_TYPE_LIMIT",
		},
		{
			name:    "zero rate limit requests",
			mutate:  func(c *Config) { c.API.RateLimitReqs = 0 },
			wantErr: "RATE_LIMIT_REQUESTS",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "LOG_LEVEL",
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "LOG_FORMAT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %s", err, tt.wantErr)
			}
		})
	}
}

func TestValidateRateLimitDisabledSkipsRateChecks(t *testing.T) {
	cfg := defaultConfig()
	cfg.API.RateLimitDisabled = true
	cfg.API.RateLimitReqs = 0
	cfg.API.RateLimitWindow = 0
	if err := cfg.Validate(); err != nil {
		t.Errorf("rate limit values should be ignored when disabled: %v", err)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DUCKDB_PATH", ":memory:")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("BATCH_SIZE", "500")
	t.Setenv("DATA_DIR", "/tmp/collisions")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Database.Path != ":memory:" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Loader.BatchSize != 500 {
		t.Errorf("Loader.BatchSize = %d, want 500", cfg.Loader.BatchSize)
	}
	if cfg.Loader.DataDir != "/tmp/collisions" {
		t.Errorf("Loader.DataDir = %q", cfg.Loader.DataDir)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	want := []string{"https://a.example", "https://b.example"}
	if len(cfg.API.CORSOrigins) != 2 || cfg.API.CORSOrigins[0] != want[0] || cfg.API.CORSOrigins[1] != want[1] {
		t.Errorf("CORSOrigins = %v, want %v", cfg.API.CORSOrigins, want)
	}
}

func TestLoadDefaultsWithoutEnvironment(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 8050 {
		t.Errorf("default port = %d, want 8050", cfg.Server.Port)
	}
	if cfg.Loader.BatchSize != 10000 {
		t.Errorf("default batch size = %d, want 10000", cfg.Loader.BatchSize)
	}
	if cfg.Server.Timeout != 30*time.Second {
		t.Errorf("default timeout = %s, want 30s", cfg.Server.Timeout)
	}
	if !cfg.Loader.SkipIfLoaded {
		t.Error("skip_if_loaded should default to true")
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"DUCKDB_PATH", "database.path"},
		{"HTTP_PORT", "server.port"},
		{"BATCH_SIZE", "loader.batch_size"},
		{"LOG_LEVEL", "logging.level"},
		{"PATH", ""},
		{"HOME", ""},
		{"RANDOM_UNRELATED_VAR", ""},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := envTransformFunc(tt.key); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestAddr(t *testing.T) {
	cfg := ServerConfig{Host: "127.0.0.1", Port: 8050}
	if got := cfg.Addr(); got != "127.0.0.1:8050" {
		t.Errorf("Addr = %q, want 127.0.0.1:8050", got)
	}
}

func TestIsDevelopment(t *testing.T) {
	cfg := defaultConfig()
	if !cfg.IsDevelopment() {
		t.Error("default environment should be development")
	}
	cfg.Server.Environment = "production"
	if cfg.IsDevelopment() {
		t.Error("production environment reported as development")
	}
}
