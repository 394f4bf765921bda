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

// This file implements the aggregation layer: six pure read operations over
// the collisions table, each accepting the shared CollisionFilter. Filter
// combinations that match zero rows return empty/zero-valued results, never
// an error.

// TotalCount returns the number of collisions matching the filter.
func (db *DB) TotalCount(ctx context.Context, f CollisionFilter) (int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	where, args := whereSQL(nil, f)
	query := "SELECT COUNT(*) FROM collisions" + where

	start := time.Now()
	var count int64
	err := db.conn.QueryRowContext(ctx, query, args...).Scan(&count)
	metrics.ObserveDBQuery("total_count", start, err)
	if err != nil {
		return 0, fmt.Errorf("failed to query total count: %w", err)
	}
	return count, nil
}

// AverageCasualties returns the mean casualties per collision for the
// filtered set, or 0 when no rows match.
func (db *DB) AverageCasualties(ctx context.Context, f CollisionFilter) (float64, error) {
	return db.averageColumn(ctx, f, "number_of_casualties", "average_casualties")
}

// AverageVehicles returns the mean vehicles per collision for the filtered
// set, or 0 when no rows match.
func (db *DB) AverageVehicles(ctx context.Context, f CollisionFilter) (float64, error) {
	return db.averageColumn(ctx, f, "number_of_vehicles", "average_vehicles")
}

// averageColumn computes COALESCE(AVG(column), 0) over the filtered set.
// The column name comes from a fixed caller-side set, never user input.
func (db *DB) averageColumn(ctx context.Context, f CollisionFilter, column, operation string) (float64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	where, args := whereSQL(nil, f)
	query := fmt.Sprintf("SELECT COALESCE(AVG(%s), 0) FROM collisions%s", column, where)

	start := time.Now()
	var avg float64
	err := db.conn.QueryRowContext(ctx, query, args...).Scan(&avg)
	metrics.ObserveDBQuery(operation, start, err)
	if err != nil {
		return 0, fmt.Errorf("failed to query %s: %w", operation, err)
	}
	return avg, nil
}

// Summary returns the KPI block (total count plus both averages) in one
// round trip.
func (db *DB) Summary(ctx context.Context, f CollisionFilter) (*models.SummaryStats, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	where, args := whereSQL(nil, f)
	query := `
	SELECT
		COUNT(*),
		COALESCE(AVG(number_of_casualties), 0),
		COALESCE(AVG(number_of_vehicles), 0)
	FROM collisions` + where

	start := time.Now()
	stats := &models.SummaryStats{}
	err := db.conn.QueryRowContext(ctx, query, args...).Scan(
		&stats.TotalCount,
		&stats.AverageCasualties,
		&stats.AverageVehicles,
	)
	metrics.ObserveDBQuery("summary", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to query summary: %w", err)
	}
	return stats, nil
}

// MonthlyTrend returns per-month collision counts for the filtered set,
// one entry per calendar month present in the data, in chronological order.
func (db *DB) MonthlyTrend(ctx context.Context, f CollisionFilter) ([]models.MonthlyCount, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	where, args := whereSQL(nil, f)
	query := `
	SELECT DATE_TRUNC('month', accident_date) AS month, COUNT(*) AS cnt
	FROM collisions` + where + `
	GROUP BY month
	ORDER BY month`

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, args...)
	metrics.ObserveDBQuery("monthly_trend", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly trend: %w", err)
	}
	defer closeWithLog(rows, "monthly trend rows")

	var trend []models.MonthlyCount
	for rows.Next() {
		var mc models.MonthlyCount
		if err := rows.Scan(&mc.Month, &mc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan monthly trend row: %w", err)
		}
		trend = append(trend, mc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating monthly trend rows: %w", err)
	}

	return trend, nil
}

// TopRoadTypes returns collision counts per road type, ordered by count
// descending with ties broken alphabetically, truncated to limit entries.
func (db *DB) TopRoadTypes(ctx context.Context, f CollisionFilter, limit int) ([]models.RoadTypeCount, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	where, args := whereSQL([]string{"road_type IS NOT NULL"}, f)
	query := `
	SELECT road_type, COUNT(*) AS cnt
	FROM collisions` + where + `
	GROUP BY road_type
	ORDER BY cnt DESC, road_type ASC
	LIMIT ?`
	args = append(args, limit)

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, args...)
	metrics.ObserveDBQuery("top_road_types", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to query road types: %w", err)
	}
	defer closeWithLog(rows, "road type rows")

	var result []models.RoadTypeCount
	for rows.Next() {
		var rt models.RoadTypeCount
		if err := rows.Scan(&rt.RoadType, &rt.Count); err != nil {
			return nil, fmt.Errorf("failed to scan road type row: %w", err)
		}
		result = append(result, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating road type rows: %w", err)
	}

	return result, nil
}

// SampledLocations returns up to maxPoints (latitude, longitude, severity)
// tuples drawn uniformly at random from the matching rows with non-null
// coordinates. Random sampling (rather than "first N") avoids the geographic
// bias a LIMIT over insertion order would introduce, since files load in year
// order and rows cluster spatially within a file.
func (db *DB) SampledLocations(ctx context.Context, f CollisionFilter, maxPoints int) ([]models.LocationPoint, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	where, args := whereSQL([]string{"latitude IS NOT NULL", "longitude IS NOT NULL"}, f)
	query := `
	SELECT latitude, longitude, severity
	FROM collisions` + where + `
	ORDER BY random()
	LIMIT ?`
	args = append(args, maxPoints)

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, args...)
	metrics.ObserveDBQuery("sampled_locations", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to query sampled locations: %w", err)
	}
	defer closeWithLog(rows, "location rows")

	var points []models.LocationPoint
	for rows.Next() {
		var p models.LocationPoint
		if err := rows.Scan(&p.Latitude, &p.Longitude, &p.Severity); err != nil {
			return nil, fmt.Errorf("failed to scan location row: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating location rows: %w", err)
	}

	return points, nil
}
