// Strataprep - Stratified Train/Test Preparation for Rating Datasets
// Copyright 2026 Strataprep Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/strataprep/strataprep

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for the preparation pipeline:
// - Database query performance (DuckDB)
// - Per-stage pipeline durations
// - Matrix shape and sparsity
// - Split output volumes
// - Dictionary persistence

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets, // 0.005s, 0.01s, 0.025s, 0.05s, 0.1s, 0.25s, 0.5s, 1s, 2.5s, 5s, 10s
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	// Pipeline Metrics
	PipelineRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_runs_total",
			Help: "Total number of pipeline runs",
		},
		[]string{"status"}, // "success", "error"
	)

	PipelineStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pipeline_stage_duration_seconds",
			Help:    "Duration of pipeline stages in seconds",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10, 30, 60, 300}, // index on large tables can take minutes
		},
		[]string{"stage"}, // "index", "affinity", "split", "inverse"
	)

	PipelineRowsLoaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pipeline_rows_loaded_total",
			Help: "Total number of rating rows fed into the pipeline",
		},
	)

	// Matrix Metrics
	MatrixCells = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "affinity_matrix_cells",
			Help: "Cell count (users x items) of the most recent affinity matrix",
		},
	)

	MatrixSparsityPercent = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "affinity_matrix_sparsity_percent",
			Help: "Percentage of unrated cells in the most recent affinity matrix",
		},
	)

	// Split Metrics
	SplitCells = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "split_cells_total",
			Help: "Total number of rated cells written to each split subset",
		},
		[]string{"subset"}, // "train", "test"
	)

	// Dictionary Persistence Metrics
	DictsPersisted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dicts_persisted_total",
			Help: "Total number of index dictionaries written to the store",
		},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		errorType := err.Error()
		// Truncate long error messages
		if len(errorType) > 50 {
			errorType = errorType[:50]
		}
		DBQueryErrors.WithLabelValues(operation, table, errorType).Inc()
	}
}

// RecordPipelineRun counts a finished run by outcome ("success" or "error")
func RecordPipelineRun(status string) {
	PipelineRuns.WithLabelValues(status).Inc()
}

// RecordStageDuration records how long one pipeline stage took
func RecordStageDuration(stage string, duration time.Duration) {
	PipelineStageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordRowsLoaded counts rating rows entering the pipeline
func RecordRowsLoaded(rows int) {
	PipelineRowsLoaded.Add(float64(rows))
}

// SetMatrixStats publishes the shape and sparsity of the latest matrix
func SetMatrixStats(cells int, sparsityPercent float64) {
	MatrixCells.Set(float64(cells))
	MatrixSparsityPercent.Set(sparsityPercent)
}

// RecordSplitCells counts the rated cells landing in each subset
func RecordSplitCells(train, test int) {
	SplitCells.WithLabelValues("train").Add(float64(train))
	SplitCells.WithLabelValues("test").Add(float64(test))
}

// RecordDictsPersisted counts dictionaries written to the store
func RecordDictsPersisted(count int) {
	DictsPersisted.Add(float64(count))
}
