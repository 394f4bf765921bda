// Collisionscope - UK Road Collision Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/collisionscope

// Package metrics provides Prometheus instrumentation for:
//   - Warehouse query performance (DuckDB)
//   - API endpoint latency and throughput
//   - CSV ingestion progress and rejection counts
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Warehouse metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation"},
	)

	// Loader metrics
	LoaderRowsLoaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "loader_rows_loaded_total",
			Help: "Total number of collision rows inserted into the warehouse",
		},
	)

	LoaderRowsRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "loader_rows_rejected_total",
			Help: "Total number of rows rejected during type coercion",
		},
	)

	LoaderFiles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loader_files_total",
			Help: "Total number of input files processed by outcome",
		},
		[]string{"status"}, // "loaded", "failed", "skipped"
	)

	LoaderBatches = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "loader_batches_total",
			Help: "Total number of insert batches committed",
		},
	)

	// API metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)
)

// RecordAPIRequest records count and duration for one finished API request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(active bool) {
	if active {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// ObserveDBQuery records the duration of a warehouse query and, when err is
// non-nil, increments the error counter for the operation.
func ObserveDBQuery(operation string, start time.Time, err error) {
	DBQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation).Inc()
	}
}
