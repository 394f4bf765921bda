// Collisionscope - UK Road Collision Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/collisionscope

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/collisionscope/internal/metrics"
	"github.com/tomtom215/collisionscope/internal/models"
)

// insertCollisionSQL uses ON CONFLICT DO NOTHING so re-inserting an
// accident_index that already exists is a no-op rather than an error.
// This is the per-row dedupe backing the loader's batch-level idempotency.
const insertCollisionSQL = `
INSERT INTO collisions (
	accident_index, accident_date, accident_time, year, severity,
	number_of_casualties, number_of_vehicles, road_type, speed_limit,
	latitude, longitude
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (accident_index) DO NOTHING`

// CollisionCount returns the total number of rows in the collisions table.
// The loader uses this as its idempotency probe: non-zero means a previous
// load completed (or partially completed) and startup ingestion is skipped.
func (db *DB) CollisionCount(ctx context.Context) (int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	var count int64
	err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM collisions").Scan(&count)
	metrics.ObserveDBQuery("collision_count", start, err)
	if err != nil {
		return 0, fmt.Errorf("failed to count collisions: %w", err)
	}
	return count, nil
}

// InsertCollisionBatch inserts a batch of collision records in a single
// transaction. The batch either commits fully or not at all; duplicate
// accident indexes within the warehouse are silently skipped.
func (db *DB) InsertCollisionBatch(ctx context.Context, records []models.CollisionRecord) error {
	if len(records) == 0 {
		return nil
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		metrics.ObserveDBQuery("insert_batch", start, err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertCollisionSQL)
	if err != nil {
		_ = tx.Rollback()
		metrics.ObserveDBQuery("insert_batch", start, err)
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer closeWithLog(stmt, "insert statement")

	for i := range records {
		r := &records[i]
		if _, err := stmt.ExecContext(ctx,
			r.AccidentIndex,
			r.Date,
			r.Time,
			r.Year,
			r.Severity,
			r.Casualties,
			r.Vehicles,
			nullIfEmpty(r.RoadType),
			r.SpeedLimit,
			r.Latitude,
			r.Longitude,
		); err != nil {
			_ = tx.Rollback()
			metrics.ObserveDBQuery("insert_batch", start, err)
			return fmt.Errorf("failed to insert collision %s: %w", r.AccidentIndex, err)
		}
	}

	if err := tx.Commit(); err != nil {
		metrics.ObserveDBQuery("insert_batch", start, err)
		return fmt.Errorf("failed to commit batch: %w", err)
	}

	metrics.ObserveDBQuery("insert_batch", start, nil)
	metrics.LoaderBatches.Inc()
	return nil
}

// nullIfEmpty maps the empty string to SQL NULL so queries can rely on
// IS NOT NULL instead of checking two sentinels.
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
