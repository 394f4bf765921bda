// Collisionscope - UK Road Collision Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/collisionscope

package loader

import (
	"time"
)

// nowFunc is replaceable in tests.
var nowFunc = time.Now

// LoadStats holds statistics about a load operation. Per-row problems are
// accumulated here and reported as a summary after each file finishes,
// rather than surfaced as individual errors.
type LoadStats struct {
	// FilesAttempted is the number of input files the loader tried to open.
	FilesAttempted int

	// FilesLoaded is the number of files read to completion.
	FilesLoaded int

	// FilesFailed is the number of files that were missing or unreadable.
	// These are skipped with a warning; they never abort the load.
	FilesFailed int

	// RowsRead is the number of data rows read (including rejected rows).
	RowsRead int64

	// RowsLoaded is the number of rows handed to the warehouse. Rows whose
	// accident_index already existed are deduplicated by the insert itself
	// and still count here.
	RowsLoaded int64

	// RowsRejected is the number of rows skipped because a required field
	// (accident_index, date) failed type coercion or an invariant check.
	RowsRejected int64

	// SkippedExisting is true when the whole load was skipped because the
	// collisions table already contained rows.
	SkippedExisting bool

	// StartTime is when the load started.
	StartTime time.Time

	// EndTime is when the load completed (zero if still running).
	EndTime time.Time
}

// Duration returns the duration of the load operation.
func (s *LoadStats) Duration() time.Duration {
	if s.EndTime.IsZero() {
		return time.Since(s.StartTime)
	}
	return s.EndTime.Sub(s.StartTime)
}

// RowsPerSecond returns the ingestion rate.
func (s *LoadStats) RowsPerSecond() float64 {
	duration := s.Duration().Seconds()
	if duration == 0 {
		return 0
	}
	return float64(s.RowsRead) / duration
}

// Summary is the JSON shape returned by the load status endpoint.
type Summary struct {
	Status          string    `json:"status"`
	FilesAttempted  int       `json:"files_attempted"`
	FilesLoaded     int       `json:"files_loaded"`
	FilesFailed     int       `json:"files_failed"`
	RowsRead        int64     `json:"rows_read"`
	RowsLoaded      int64     `json:"rows_loaded"`
	RowsRejected    int64     `json:"rows_rejected"`
	SkippedExisting bool      `json:"skipped_existing"`
	RowsPerSecond   float64   `json:"rows_per_second"`
	ElapsedSeconds  float64   `json:"elapsed_seconds"`
	StartTime       time.Time `json:"start_time"`
}

// ToSummary converts LoadStats to a Summary with calculated fields.
func (s *LoadStats) ToSummary(running bool) *Summary {
	summary := &Summary{
		FilesAttempted:  s.FilesAttempted,
		FilesLoaded:     s.FilesLoaded,
		FilesFailed:     s.FilesFailed,
		RowsRead:        s.RowsRead,
		RowsLoaded:      s.RowsLoaded,
		RowsRejected:    s.RowsRejected,
		SkippedExisting: s.SkippedExisting,
		RowsPerSecond:   s.RowsPerSecond(),
		ElapsedSeconds:  s.Duration().Seconds(),
		StartTime:       s.StartTime,
	}

	switch {
	case running:
		summary.Status = "running"
	case s.StartTime.IsZero():
		summary.Status = "pending"
	case s.SkippedExisting:
		summary.Status = "skipped"
	default:
		summary.Status = "completed"
	}

	return summary
}
