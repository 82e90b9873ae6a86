// Strataprep - Stratified Train/Test Preparation for Rating Datasets
// Copyright 2026 Strataprep Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/strataprep/strataprep

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors register themselves with the default registry via promauto at
package load; the optional diagnostics listener serves them at /metrics in
Prometheus text format.

# Available Metrics

Database Metrics:
  - duckdb_query_duration_seconds: Query execution time (histogram)
    Labels: operation, table
  - duckdb_query_errors_total: Failed queries (counter)
    Labels: operation, table, error_type

Pipeline Metrics:
  - pipeline_runs_total: Finished runs by outcome (counter)
    Labels: status (success, error)
  - pipeline_stage_duration_seconds: Per-stage duration (histogram)
    Labels: stage (index, affinity, split, inverse)
  - pipeline_rows_loaded_total: Rating rows fed into the pipeline (counter)

Matrix Metrics:
  - affinity_matrix_cells: Cell count of the latest matrix (gauge)
  - affinity_matrix_sparsity_percent: Unrated-cell percentage (gauge)

Split Metrics:
  - split_cells_total: Rated cells per subset (counter)
    Labels: subset (train, test)

Persistence Metrics:
  - dicts_persisted_total: Index dictionaries written to the store (counter)

# Usage Example

	start := time.Now()
	rows, err := db.QueryContext(ctx, query)
	metrics.RecordDBQuery("SELECT", "ratings", time.Since(start), err)

Example PromQL queries:

	# Pipeline failure rate
	rate(pipeline_runs_total{status="error"}[15m])

	# p95 split stage duration
	histogram_quantile(0.95, rate(pipeline_stage_duration_seconds_bucket{stage="split"}[5m]))

# Thread Safety

All recording functions are safe for concurrent use; the Prometheus client
library handles synchronization internally.
*/
package metrics
