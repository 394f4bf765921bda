// Collisionscope - UK Road Collision Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/collisionscope

package database

import (
	"context"
	"testing"
	"time"

	"github.com/tomtom215/collisionscope/internal/config"
	"github.com/tomtom215/collisionscope/internal/models"
)

// testDBSemaphore serializes DuckDB lifecycles across tests. Concurrent
// CGO connections from parallel tests can hang under CI resource pressure,
// so only one test holds an open database at a time.
var testDBSemaphore = make(chan struct{}, 1)

// setupTestDB creates an in-memory test database. The semaphore is held for
// the entire test lifecycle and released via t.Cleanup.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() {
		<-testDBSemaphore
	})

	cfg := &config.DatabaseConfig{
		Path:      ":memory:",
		MaxMemory: "1GB",
	}

	db, err := New(cfg)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close test database: %v", err)
		}
	})

	return db
}

// testRecord builds a valid collision record with overridable fields.
func testRecord(index string, date time.Time, severity string, casualties, vehicles int) models.CollisionRecord {
	return models.CollisionRecord{
		AccidentIndex: index,
		Date:          date,
		Year:          date.Year(),
		Severity:      severity,
		Casualties:    casualties,
		Vehicles:      vehicles,
		RoadType:      "Single carriageway",
	}
}

func mustInsert(t *testing.T, db *DB, records []models.CollisionRecord) {
	t.Helper()
	if err := db.InsertCollisionBatch(context.Background(), records); err != nil {
		t.Fatalf("failed to insert test records: %v", err)
	}
}

func TestNewCreatesSchema(t *testing.T) {
	db := setupTestDB(t)

	count, err := db.CollisionCount(context.Background())
	if err != nil {
		t.Fatalf("CollisionCount on fresh database: %v", err)
	}
	if count != 0 {
		t.Errorf("expected empty collisions table, got %d rows", count)
	}
}

func TestPing(t *testing.T) {
	db := setupTestDB(t)

	if err := db.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestInsertCollisionBatch(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	date := time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC)
	records := []models.CollisionRecord{
		testRecord("2023001", date, models.SeverityFatal, 2, 1),
		testRecord("2023002", date, models.SeveritySlight, 1, 2),
	}
	mustInsert(t, db, records)

	count, err := db.CollisionCount(ctx)
	if err != nil {
		t.Fatalf("CollisionCount: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 rows, got %d", count)
	}
}

func TestInsertCollisionBatchDeduplicates(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	date := time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC)
	records := []models.CollisionRecord{
		testRecord("2023001", date, models.SeverityFatal, 2, 1),
	}
	mustInsert(t, db, records)
	// Same accident index again; ON CONFLICT DO NOTHING keeps the first row.
	mustInsert(t, db, records)

	count, err := db.CollisionCount(ctx)
	if err != nil {
		t.Fatalf("CollisionCount: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 row after duplicate insert, got %d", count)
	}
}

func TestInsertCollisionBatchNullableFields(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	date := time.Date(2022, 7, 1, 0, 0, 0, 0, time.UTC)
	rec := testRecord("2022001", date, models.SeveritySerious, 1, 1)
	rec.RoadType = ""
	// Time, SpeedLimit, Latitude, Longitude left nil.
	mustInsert(t, db, []models.CollisionRecord{rec})

	// Rows with null road_type never appear in the ranking.
	roadTypes, err := db.TopRoadTypes(ctx, CollisionFilter{}, 10)
	if err != nil {
		t.Fatalf("TopRoadTypes: %v", err)
	}
	if len(roadTypes) != 0 {
		t.Errorf("expected no road types for null-road-type row, got %v", roadTypes)
	}

	// Rows without coordinates never appear in the sample.
	points, err := db.SampledLocations(ctx, CollisionFilter{}, 10)
	if err != nil {
		t.Fatalf("SampledLocations: %v", err)
	}
	if len(points) != 0 {
		t.Errorf("expected no points for coordinate-less row, got %v", points)
	}
}

func TestCheckpoint(t *testing.T) {
	db := setupTestDB(t)

	if err := db.Checkpoint(context.Background()); err != nil {
		t.Errorf("Checkpoint failed: %v", err)
	}
}
