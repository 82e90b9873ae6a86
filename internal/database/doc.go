// Strataprep - Stratified Train/Test Preparation for Rating Datasets
// Copyright 2026 Strataprep Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/strataprep/strataprep

/*
Package database provides DuckDB-backed storage for rating tables.

The package wraps a single DuckDB connection and exposes the operations the
preparation pipeline needs: ingesting a CSV file into a table, reading a
rating table into memory with configurable column names, writing the train
and test tables back, and exporting tables to CSV.

Connection Management:
  - New(): Opens the database with thread count and memory limit tuning
  - ensureContext(): Applies the configured query timeout when the caller
    provides no deadline
  - Close(): Closes the underlying connection

Ordering:

Rating rows are always read back in rowid order, which matches ingest
order. Index assignment downstream depends on row order, so this keeps
repeated runs over the same table reproducible.

Identifiers:

Table and column names come from configuration and cannot be bound as SQL
parameters, so they are validated against a strict identifier pattern
before being interpolated into statements.
*/
package database
