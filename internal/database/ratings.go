// Strataprep - Stratified Train/Test Preparation for Rating Datasets
// Copyright 2026 Strataprep Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/strataprep/strataprep

package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/strataprep/strataprep/internal/dataset"
	"github.com/strataprep/strataprep/internal/logging"
	"github.com/strataprep/strataprep/internal/metrics"
)

// Columns names the rating table's column layout. Sources disagree on
// naming (userId vs user_id vs uid), so every name is configurable.
type Columns struct {
	User   string // user identifier column
	Item   string // item identifier column
	Rating string // numeric rating column
	// Timestamp is optional; empty means the table carries no timestamp
	// column and Record.Timestamp stays zero.
	Timestamp string
}

// DefaultColumns returns the conventional column names.
func DefaultColumns() Columns {
	return Columns{
		User:      "user_id",
		Item:      "item_id",
		Rating:    "rating",
		Timestamp: "timestamp",
	}
}

// Validate checks that every configured column name is a safe SQL identifier.
func (c Columns) Validate() error {
	if err := checkIdents(c.User, c.Item, c.Rating); err != nil {
		return err
	}
	if c.Timestamp != "" {
		return checkIdents(c.Timestamp)
	}
	return nil
}

// IngestCSV loads a CSV file into the named table, replacing any previous
// contents. Column types are inferred by DuckDB. Returns the row count.
func (db *DB) IngestCSV(ctx context.Context, table, csvPath string) (count int64, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { metrics.RecordDBQuery("CREATE", table, time.Since(start), err) }()

	if err = checkIdents(table); err != nil {
		return 0, err
	}

	// Table function arguments cannot be bound as parameters, so the path
	// is escaped and inlined as a string literal.
	//nolint:gosec // G201: table is validated, path is quoted by quoteLiteral
	query := fmt.Sprintf("CREATE OR REPLACE TABLE %s AS SELECT * FROM read_csv_auto(%s)",
		table, quoteLiteral(csvPath))
	if _, err = db.conn.ExecContext(ctx, query); err != nil {
		return 0, fmt.Errorf("failed to ingest %s into %s: %w", csvPath, table, err)
	}

	count, err = db.CountRows(ctx, table)
	if err != nil {
		return 0, err
	}

	logging.Debug().
		Str("table", table).
		Str("csv", csvPath).
		Int64("rows", count).
		Msg("CSV ingested")

	return count, nil
}

// QueryRatings reads the named rating table into memory. Rows come back in
// rowid order, which matches ingest order, so repeated runs over the same
// table see the same sequence. Identifier columns are cast to VARCHAR and
// the rating to DOUBLE so the source schema can use any compatible types.
func (db *DB) QueryRatings(ctx context.Context, table string, cols Columns) (records []dataset.Record, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { metrics.RecordDBQuery("SELECT", table, time.Since(start), err) }()

	if err = checkIdents(table); err != nil {
		return nil, err
	}
	if err = cols.Validate(); err != nil {
		return nil, err
	}

	var query string
	if cols.Timestamp != "" {
		//nolint:gosec // G201: identifiers are validated above
		query = fmt.Sprintf(`
	SELECT CAST(%s AS VARCHAR), CAST(%s AS VARCHAR), CAST(%s AS DOUBLE),
		COALESCE(TRY_CAST(%s AS BIGINT), 0)
	FROM %s
	ORDER BY rowid`, cols.User, cols.Item, cols.Rating, cols.Timestamp, table)
	} else {
		//nolint:gosec // G201: identifiers are validated above
		query = fmt.Sprintf(`
	SELECT CAST(%s AS VARCHAR), CAST(%s AS VARCHAR), CAST(%s AS DOUBLE)
	FROM %s
	ORDER BY rowid`, cols.User, cols.Item, cols.Rating, table)
	}

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query ratings from %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var r dataset.Record
		if cols.Timestamp != "" {
			err = rows.Scan(&r.User, &r.Item, &r.Rating, &r.Timestamp)
		} else {
			err = rows.Scan(&r.User, &r.Item, &r.Rating)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to scan rating row: %w", err)
		}
		records = append(records, r)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ratings from %s: %w", table, err)
	}

	return records, nil
}

// WriteRatings replaces the named table with the given (user, item, rating)
// triples. All rows are written in a single transaction.
func (db *DB) WriteRatings(ctx context.Context, table string, cols Columns, records []dataset.Record) (inserted int64, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { metrics.RecordDBQuery("INSERT", table, time.Since(start), err) }()

	if err = checkIdents(table, cols.User, cols.Item, cols.Rating); err != nil {
		return 0, err
	}

	//nolint:gosec // G201: identifiers are validated above
	createQuery := fmt.Sprintf(
		"CREATE OR REPLACE TABLE %s (%s VARCHAR NOT NULL, %s VARCHAR NOT NULL, %s DOUBLE NOT NULL)",
		table, cols.User, cols.Item, cols.Rating)
	if _, err = db.conn.ExecContext(ctx, createQuery); err != nil {
		return 0, fmt.Errorf("failed to create table %s: %w", table, err)
	}

	if len(records) == 0 {
		return 0, nil
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}

	// Ensure transaction is finalized
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logging.Error().
					Err(rbErr).
					AnErr("original_error", err).
					Msg("Transaction rollback failed")
			}
		}
	}()

	//nolint:gosec // G201: identifiers are validated above
	insertQuery := fmt.Sprintf("INSERT INTO %s (%s, %s, %s) VALUES (?, ?, ?)",
		table, cols.User, cols.Item, cols.Rating)

	stmt, err := tx.PrepareContext(ctx, insertQuery)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() {
		if closeErr := stmt.Close(); closeErr != nil {
			logging.Warn().Err(closeErr).Msg("Failed to close prepared statement")
		}
	}()

	for i, rec := range records {
		if _, execErr := stmt.ExecContext(ctx, rec.User, rec.Item, rec.Rating); execErr != nil {
			err = fmt.Errorf("failed to insert row %d (user=%s item=%s): %w", i, rec.User, rec.Item, execErr)
			return 0, err
		}
		inserted++
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	logging.Debug().
		Str("table", table).
		Int64("inserted", inserted).
		Msg("Rating table written")

	return inserted, nil
}

// ExportCSV writes the named table to a CSV file with a header row.
func (db *DB) ExportCSV(ctx context.Context, table, outputPath string) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { metrics.RecordDBQuery("COPY", table, time.Since(start), err) }()

	if err = checkIdents(table); err != nil {
		return err
	}

	outDir := filepath.Dir(outputPath)
	if outDir != "" && outDir != "." {
		if err = os.MkdirAll(outDir, 0o750); err != nil {
			return fmt.Errorf("failed to create export directory %s: %w", outDir, err)
		}
	}

	//nolint:gosec // G201: table is validated by checkIdents
	query := fmt.Sprintf("COPY %s TO ? (FORMAT CSV, HEADER)", table)
	if _, err = db.conn.ExecContext(ctx, query, outputPath); err != nil {
		return fmt.Errorf("failed to export %s to CSV: %w", table, err)
	}

	return nil
}

// CountRows counts the number of rows in a table
func (db *DB) CountRows(ctx context.Context, table string) (count int64, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if err = checkIdents(table); err != nil {
		return 0, err
	}

	//nolint:gosec // G201: table is validated by checkIdents
	query := fmt.Sprintf("SELECT count(*) FROM %s", table)
	if err = db.conn.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count rows in %s: %w", table, err)
	}

	return count, nil
}

// TableExists reports whether the named table exists in the database.
func (db *DB) TableExists(ctx context.Context, table string) (bool, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var exists bool
	err := db.conn.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM information_schema.tables WHERE table_name = ?)", table).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check table %s: %w", table, err)
	}

	return exists, nil
}
