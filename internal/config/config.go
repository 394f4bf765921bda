// Collisionscope - UK Road Collision Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/collisionscope

package config

import (
	"fmt"
	"time"
)

// Config holds the complete application configuration.
//
// Configuration is loaded via Koanf v2 with layered sources
// (highest priority wins):
//   - Environment variables
//   - Config file (config.yaml)
//   - Built-in defaults
type Config struct {
	Database DatabaseConfig `koanf:"database"`
	Loader   LoaderConfig   `koanf:"loader"`
	Server   ServerConfig   `koanf:"server"`
	API      APIConfig      `koanf:"api"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// DatabaseConfig holds DuckDB warehouse configuration.
type DatabaseConfig struct {
	Path                   string `koanf:"path"`                     // Database file path (":memory:" for in-memory)
	MaxMemory              string `koanf:"max_memory"`               // DuckDB memory limit, e.g. "2GB"
	Threads                int    `koanf:"threads"`                  // 0 = use runtime.NumCPU()
	PreserveInsertionOrder bool   `koanf:"preserve_insertion_order"` // DuckDB default true; false lowers memory use
}

// LoaderConfig holds CSV ingestion configuration.
type LoaderConfig struct {
	Enabled bool `koanf:"enabled"` // Master toggle for startup ingestion

	// DataDir is the directory scanned for yearly collision CSV files.
	DataDir string `koanf:"data_dir"`

	// DataGlob is the filename pattern matched inside DataDir.
	// Files sort lexically, which for collisions_<year>.csv is year order.
	DataGlob string `koanf:"data_glob"`

	// BatchSize is the number of rows inserted per transaction.
	// Bounds memory use and transaction size for large yearly files.
	BatchSize int `koanf:"batch_size"`

	// SkipIfLoaded skips ingestion entirely when the collisions table is
	// non-empty, making repeated startups safe. This is a coarse guard:
	// it cannot detect a partial prior load (see DESIGN.md).
	SkipIfLoaded bool `koanf:"skip_if_loaded"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host        string        `koanf:"host"`
	Port        int           `koanf:"port"`
	Timeout     time.Duration `koanf:"timeout"`     // Read/write timeout and graceful shutdown budget
	Environment string        `koanf:"environment"` // "development" or "production"
}

// APIConfig holds API behavior configuration.
type APIConfig struct {
	DefaultPointLimit    int `koanf:"default_point_limit"`     // Default max_points for /locations
	MaxPointLimit        int `koanf:"max_point_limit"`         // Upper bound a client may request
	DefaultRoadTypeLimit int `koanf:"default_road_type_limit"` // Default limit for /road-types

	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `koanf:"level"`  // trace, debug, info, warn, error
	Format string `koanf:"format"` // json or console
	Caller bool   `koanf:"caller"`
}

// Addr returns the host:port listen address for the HTTP server.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDevelopment returns true when running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateLoader(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateAPI(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH must not be empty")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must be >= 0, got %d", c.Database.Threads)
	}
	return nil
}

func (c *Config) validateLoader() error {
	if !c.Loader.Enabled {
		return nil
	}
	if c.Loader.DataDir == "" {
		return fmt.Errorf("DATA_DIR is required when LOADER_ENABLED=true")
	}
	if c.Loader.DataGlob == "" {
		return fmt.Errorf("DATA_GLOB must not be empty")
	}
	if c.Loader.BatchSize < 1 {
		return fmt.Errorf("BATCH_SIZE must be >= 1, got %d", c.Loader.BatchSize)
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("SERVER_TIMEOUT must be positive, got %s", c.Server.Timeout)
	}
	switch c.Server.Environment {
	case "development", "production":
	default:
		return fmt.Errorf("ENVIRONMENT must be development or production, got %q", c.Server.Environment)
	}
	return nil
}

func (c *Config) validateAPI() error {
	if c.API.DefaultPointLimit < 1 {
		return fmt.Errorf("DEFAULT_POINT_LIMIT must be >= 1, got %d", c.API.DefaultPointLimit)
	}
	if c.API.MaxPointLimit < c.API.DefaultPointLimit {
		return fmt.Errorf("MAX_POINT_LIMIT (%d) must be >= DEFAULT_POINT_LIMIT (%d)",
			c.API.MaxPointLimit, c.API.DefaultPointLimit)
	}
	if c.API.DefaultRoadTypeLimit < 1 {
		return fmt.Errorf("DEFAULT_ROAD_TYPE_LIMIT must be >= 1, got %d", c.API.DefaultRoadTypeLimit)
	}
	if !c.API.RateLimitDisabled {
		if c.API.RateLimitReqs < 1 {
			return fmt.Errorf("RATE_LIMIT_REQUESTS must be >= 1, got %d", c.API.RateLimitReqs)
		}
		if c.API.RateLimitWindow <= 0 {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be positive, got %s", c.API.RateLimitWindow)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error, got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
