// Collisionscope - UK Road Collision Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/collisionscope

// Package config provides layered application configuration via Koanf v2.
//
// Configuration sources, in priority order (highest wins):
//
//  1. Environment variables (DUCKDB_PATH, HTTP_PORT, BATCH_SIZE, ...)
//  2. YAML config file (config.yaml, or CONFIG_PATH override)
//  3. Built-in defaults
//
// The warehouse location, ingestion batch size, and server parameters are
// all supplied through this package; nothing is hard-coded at the call sites.
package config
