// Collisionscope - UK Road Collision Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/collisionscope

package database

import (
	"context"
	"fmt"
	"time"
)

// createTableSQL defines the single warehouse table. Column names are the
// stable contract shared by the loader and the aggregation queries.
const createTableSQL = `
CREATE TABLE IF NOT EXISTS collisions (
	accident_index       VARCHAR PRIMARY KEY,
	accident_date        DATE NOT NULL,
	accident_time        VARCHAR,
	year                 INTEGER NOT NULL,
	severity             VARCHAR NOT NULL,
	number_of_casualties INTEGER NOT NULL,
	number_of_vehicles   INTEGER NOT NULL,
	road_type            VARCHAR,
	speed_limit          INTEGER,
	latitude             DOUBLE,
	longitude            DOUBLE
)`

// indexSQL lists the supporting indexes for the aggregation queries:
// year and severity for the filter dimensions, road_type for the ranking,
// and the coordinate pair for the map sample.
var indexSQL = []string{
	`CREATE INDEX IF NOT EXISTS idx_collisions_year ON collisions (year)`,
	`CREATE INDEX IF NOT EXISTS idx_collisions_severity ON collisions (severity)`,
	`CREATE INDEX IF NOT EXISTS idx_collisions_road_type ON collisions (road_type)`,
	`CREATE INDEX IF NOT EXISTS idx_collisions_coords ON collisions (latitude, longitude)`,
}

// createTables creates the collisions table if absent.
func (db *DB) createTables() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := db.conn.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("failed to create collisions table: %w", err)
	}
	return nil
}

// createIndexes creates the supporting indexes if absent.
func (db *DB) createIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, stmt := range indexSQL {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}

// Checkpoint forces a WAL checkpoint.
func (db *DB) Checkpoint(ctx context.Context) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if _, err := db.conn.ExecContext(ctx, "CHECKPOINT"); err != nil {
		return fmt.Errorf("failed to checkpoint: %w", err)
	}
	return nil
}
