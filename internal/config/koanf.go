// Collisionscope - UK Road Collision Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/collisionscope

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order
// of priority. The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/collisionscope/config.yaml",
	"/etc/collisionscope/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:                   "/data/collisionscope.duckdb",
			MaxMemory:              "2GB",
			Threads:                0, // 0 = use runtime.NumCPU()
			PreserveInsertionOrder: true,
		},
		Loader: LoaderConfig{
			Enabled:      true,
			DataDir:      "/data/collisions",
			DataGlob:     "collisions_*.csv",
			BatchSize:    10000,
			SkipIfLoaded: true,
		},
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8050,
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		API: APIConfig{
			DefaultPointLimit:    5000,
			MaxPointLimit:        20000,
			DefaultRoadTypeLimit: 10,
			CORSOrigins:          []string{"*"},
			RateLimitReqs:        300,
			RateLimitWindow:      time.Minute,
			RateLimitDisabled:    false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
//
// Precedence: ENV > File > Defaults.
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Post-process slice fields from comma-separated strings
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices.
var sliceConfigPaths = []string{
	"api.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known
// slice fields. Env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// Already a slice (from YAML file or defaults)
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names to koanf config paths.
// Only listed variables are consumed, which keeps unrelated environment
// noise (PATH, HOME, CI, ...) out of the configuration.
var envMappings = map[string]string{
	"DUCKDB_PATH":                      "database.path",
	"DUCKDB_MAX_MEMORY":                "database.max_memory",
	"DUCKDB_THREADS":                   "database.threads",
	"DUCKDB_PRESERVE_INSERTION_ORDER":  "database.preserve_insertion_order",
	"LOADER_ENABLED":                   "loader.enabled",
	"DATA_DIR":                         "loader.data_dir",
	"DATA_GLOB":                        "loader.data_glob",
	"BATCH_SIZE":                       "loader.batch_size",
	"SKIP_IF_LOADED":                   "loader.skip_if_loaded",
	"HTTP_HOST":                        "server.host",
	"HTTP_PORT":                        "server.port",
	"SERVER_TIMEOUT":                   "server.timeout",
	"ENVIRONMENT":                      "server.environment",
	"DEFAULT_POINT_LIMIT":              "api.default_point_limit",
	"MAX_POINT_LIMIT":                  "api.max_point_limit",
	"DEFAULT_ROAD_TYPE_LIMIT":          "api.default_road_type_limit",
	"CORS_ORIGINS":                     "api.cors_origins",
	"RATE_LIMIT_REQUESTS":              "api.rate_limit_requests",
	"RATE_LIMIT_WINDOW":                "api.rate_limit_window",
	"DISABLE_RATE_LIMIT":               "api.rate_limit_disabled",
	"LOG_LEVEL":                        "logging.level",
	"LOG_FORMAT":                       "logging.format",
	"LOG_CALLER":                       "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Unknown variables return "" and are ignored by the env provider.
//
// Examples:
//   - DUCKDB_PATH -> database.path
//   - HTTP_PORT -> server.port
//   - BATCH_SIZE -> loader.batch_size
func envTransformFunc(key string) string {
	if path, ok := envMappings[strings.ToUpper(key)]; ok {
		return path
	}
	return ""
}
