// Collisionscope - UK Road Collision Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/collisionscope

// Package main is the entry point for the Collisionscope server.
//
// Collisionscope loads UK road-collision open data (STATS19 CSV files) into
// an embedded DuckDB warehouse and serves aggregation endpoints for the
// analytics dashboard: KPI summary, monthly trend, road-type ranking, and
// sampled collision locations for map rendering.
//
// # Startup Order
//
//  1. Configuration: Koanf v2 layered sources (defaults, config.yaml,
//     environment variables)
//  2. Logging: zerolog, console or JSON format
//  3. Database: embedded DuckDB, schema and indexes created on first run
//  4. Loader: yearly CSV files are ingested before the API serves, skipped
//     when the warehouse is already populated
//  5. HTTP server: Chi router under a suture supervisor
//
// # Configuration
//
// Environment variables override config.yaml, which overrides built-in
// defaults. The common ones:
//
//	export DUCKDB_PATH=/data/collisionscope.duckdb
//	export DATA_DIR=/data/csv
//	export HTTP_PORT=8050
//	export LOG_LEVEL=info
//	./collisionscope
//
// # Signal Handling
//
// SIGINT and SIGTERM trigger graceful shutdown: in-flight requests get the
// configured server timeout to finish, then the database is checkpointed
// and closed.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/collisionscope/internal/api"
	"github.com/tomtom215/collisionscope/internal/config"
	"github.com/tomtom215/collisionscope/internal/database"
	"github.com/tomtom215/collisionscope/internal/loader"
	"github.com/tomtom215/collisionscope/internal/logging"
	"github.com/tomtom215/collisionscope/internal/supervisor"
	"github.com/tomtom215/collisionscope/internal/supervisor/services"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("version", version).
		Str("db_path", cfg.Database.Path).
		Str("data_dir", cfg.Loader.DataDir).
		Msg("Starting Collisionscope")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized")

	// Ingest before serving so the dashboard never sees a half-loaded
	// warehouse on first boot.
	var ldr *loader.Loader
	if cfg.Loader.Enabled {
		ldr = loader.New(&cfg.Loader, db)
		if _, err := ldr.Load(context.Background(), nil); err != nil {
			if closeErr := db.Close(); closeErr != nil {
				logging.Error().Err(closeErr).Msg("Error closing database")
			}
			logging.Fatal().Err(err).Msg("Initial load failed")
		}
	} else {
		logging.Info().Msg("Loader disabled, serving existing warehouse")
	}

	handler := api.NewHandler(db, ldr, cfg, version)
	router := api.NewRouter(handler, &cfg.API)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.SetupChi(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  2 * cfg.Server.Timeout,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Bridge zerolog to slog for sutureslog.
	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.Add(services.NewHTTPServerService(server, cfg.Server.Timeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	// db.Close (deferred) checkpoints before closing.
	logging.Info().Msg("Application stopped gracefully")
}
