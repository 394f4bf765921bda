// Collisionscope - UK Road Collision Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/collisionscope

// Package loader streams STATS19 collision CSV files into the warehouse.
//
// A load is an all-files pass: each input file is read row by row, rows are
// mapped and validated, and valid records are inserted in batches inside
// single transactions. Malformed rows and missing files are counted and
// logged, never fatal. Loads are idempotent twice over: a populated
// warehouse short-circuits the whole pass, and re-inserted accident indexes
// are deduplicated by the insert statement itself.
package loader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/tomtom215/collisionscope/internal/config"
	"github.com/tomtom215/collisionscope/internal/database"
	"github.com/tomtom215/collisionscope/internal/logging"
	"github.com/tomtom215/collisionscope/internal/metrics"
	"github.com/tomtom215/collisionscope/internal/models"
)

// ErrLoadInProgress is returned when a load is started while another is
// still running.
var ErrLoadInProgress = errors.New("load already in progress")

// progressInterval is how many rows pass between progress log lines.
const progressInterval = 50_000

// Loader ingests collision CSV files into the database.
type Loader struct {
	cfg *config.LoaderConfig
	db  *database.DB

	mu      sync.Mutex
	running bool
	stats   LoadStats
}

// New creates a loader backed by the given database.
func New(cfg *config.LoaderConfig, db *database.DB) *Loader {
	return &Loader{cfg: cfg, db: db}
}

// DiscoverFiles returns the input files matched by the configured data
// directory and glob, sorted for deterministic load order.
func (l *Loader) DiscoverFiles() ([]string, error) {
	pattern := filepath.Join(l.cfg.DataDir, l.cfg.DataGlob)
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("bad data glob %q: %w", pattern, err)
	}
	sort.Strings(matches)
	return matches, nil
}

// Load ingests the given files. When paths is empty the configured data
// directory is scanned instead. Only one load may run at a time; a
// concurrent call returns ErrLoadInProgress.
func (l *Loader) Load(ctx context.Context, paths []string) (*LoadStats, error) {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return nil, ErrLoadInProgress
	}
	l.running = true
	l.stats = LoadStats{StartTime: nowFunc()}
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		l.running = false
		l.stats.EndTime = nowFunc()
		l.mu.Unlock()
	}()

	if err := l.db.Ping(ctx); err != nil {
		return nil, fmt.Errorf("database unavailable: %w", err)
	}

	if l.cfg.SkipIfLoaded {
		count, err := l.db.CollisionCount(ctx)
		if err != nil {
			return nil, fmt.Errorf("check existing data: %w", err)
		}
		if count > 0 {
			skipped := paths
			if len(skipped) == 0 {
				if discovered, derr := l.DiscoverFiles(); derr == nil {
					skipped = discovered
				}
			}
			metrics.LoaderFiles.WithLabelValues("skipped").Add(float64(len(skipped)))
			logging.Info().
				Int64("existing_rows", count).
				Int("files_skipped", len(skipped)).
				Msg("Warehouse already populated, skipping load")
			l.mu.Lock()
			l.stats.SkippedExisting = true
			stats := l.stats
			l.mu.Unlock()
			return &stats, nil
		}
	}

	if len(paths) == 0 {
		var err error
		paths, err = l.DiscoverFiles()
		if err != nil {
			return nil, err
		}
	}
	if len(paths) == 0 {
		logging.Warn().
			Str("data_dir", l.cfg.DataDir).
			Str("glob", l.cfg.DataGlob).
			Msg("No input files found")
	}

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("load canceled: %w", err)
		}
		l.loadFile(ctx, path)
	}

	l.mu.Lock()
	stats := l.stats
	l.mu.Unlock()

	logging.Info().
		Int("files_loaded", stats.FilesLoaded).
		Int("files_failed", stats.FilesFailed).
		Int64("rows_loaded", stats.RowsLoaded).
		Int64("rows_rejected", stats.RowsRejected).
		Float64("rows_per_sec", stats.RowsPerSecond()).
		Dur("elapsed", stats.Duration()).
		Msg("Load complete")

	return &stats, nil
}

// Stats returns a snapshot of the current load statistics and whether a
// load is running.
func (l *Loader) Stats() (LoadStats, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats, l.running
}

// loadFile ingests one CSV file. File-level failures are counted and
// logged; they never abort the surrounding load.
func (l *Loader) loadFile(ctx context.Context, path string) {
	l.mu.Lock()
	l.stats.FilesAttempted++
	l.mu.Unlock()

	f, err := os.Open(path)
	if err != nil {
		logging.Warn().Err(err).Str("file", path).Msg("Skipping unreadable input file")
		l.recordFileResult(path, false)
		return
	}
	defer f.Close()

	loaded, rejected, err := l.ingestCSV(ctx, f)

	l.mu.Lock()
	l.stats.RowsLoaded += loaded
	l.stats.RowsRejected += rejected
	l.mu.Unlock()

	if err != nil {
		logging.Warn().Err(err).Str("file", path).Msg("Input file failed mid-load")
		l.recordFileResult(path, false)
		return
	}

	logging.Info().
		Str("file", filepath.Base(path)).
		Int64("rows_loaded", loaded).
		Int64("rows_rejected", rejected).
		Msg("Loaded input file")
	l.recordFileResult(path, true)
}

func (l *Loader) recordFileResult(path string, ok bool) {
	l.mu.Lock()
	if ok {
		l.stats.FilesLoaded++
	} else {
		l.stats.FilesFailed++
	}
	l.mu.Unlock()

	status := "loaded"
	if !ok {
		status = "failed"
	}
	metrics.LoaderFiles.WithLabelValues(status).Inc()
}

// ingestCSV streams rows from r into the warehouse in batches. It returns
// the loaded and rejected row counts; the error is set only for failures
// that stop the file (header, read, or insert errors).
func (l *Loader) ingestCSV(ctx context.Context, r io.Reader) (loaded, rejected int64, err error) {
	reader := csv.NewReader(r)
	reader.ReuseRecord = true
	// STATS19 vintages disagree on trailing columns; length is checked per
	// field by the mapper instead.
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return 0, 0, fmt.Errorf("read header: %w", err)
	}
	mapper, err := NewMapper(header)
	if err != nil {
		return 0, 0, err
	}

	batch := make([]models.CollisionRecord, 0, l.cfg.BatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := l.db.InsertCollisionBatch(ctx, batch); err != nil {
			return fmt.Errorf("insert batch: %w", err)
		}
		loaded += int64(len(batch))
		metrics.LoaderRowsLoaded.Add(float64(len(batch)))
		batch = batch[:0]
		return nil
	}

	var read int64
	for {
		row, readErr := reader.Read()
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			// csv.Reader keeps going after per-row parse errors but not
			// after I/O errors; either way the row itself is unusable.
			var parseErr *csv.ParseError
			if errors.As(readErr, &parseErr) {
				rejected++
				metrics.LoaderRowsRejected.Inc()
				continue
			}
			return loaded, rejected, fmt.Errorf("read row: %w", readErr)
		}

		read++
		l.mu.Lock()
		l.stats.RowsRead++
		l.mu.Unlock()

		record, mapErr := mapper.MapRow(row)
		if mapErr != nil {
			rejected++
			metrics.LoaderRowsRejected.Inc()
			logging.Debug().Err(mapErr).Int64("row", read).Msg("Rejected row")
			continue
		}

		batch = append(batch, *record)
		if len(batch) >= l.cfg.BatchSize {
			if err := flush(); err != nil {
				return loaded, rejected, err
			}
		}

		if read%progressInterval == 0 {
			logging.Info().Int64("rows_read", read).Msg("Load progress")
		}
	}

	if err := flush(); err != nil {
		return loaded, rejected, err
	}
	return loaded, rejected, nil
}
