// Strataprep - Stratified Train/Test Preparation for Rating Datasets
// Copyright 2026 Strataprep Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/strataprep/strataprep

// Package runlog keeps a history of preparation runs in DuckDB.
//
// Every invocation of the pipeline writes one row: configuration, outcome,
// and the run statistics as a JSON blob. The history answers "what split
// is in these tables, and which run produced it" long after the logs are
// gone, and the diagnostics listener serves it under /runs.
package runlog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"

	"github.com/strataprep/strataprep/internal/dataset"
	"github.com/strataprep/strataprep/internal/logging"
)

// Run statuses recorded in the history.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// ErrRunNotFound reports a run_id with no history row.
var ErrRunNotFound = errors.New("runlog: run not found")

// Entry is one recorded preparation run.
type Entry struct {
	RunID       string           `json:"run_id"`
	StartedAt   time.Time        `json:"started_at"`
	FinishedAt  time.Time        `json:"finished_at"`
	Status      string           `json:"status"`
	Error       string           `json:"error,omitempty"`
	Ratio       float64          `json:"ratio"`
	Seed        int64            `json:"seed"`
	SourceTable string           `json:"source_table"`
	TrainTable  string           `json:"train_table"`
	TestTable   string           `json:"test_table"`
	Stats       dataset.RunStats `json:"stats"`
}

// Finish stamps the entry with the run outcome. On error the statistics
// stay zero; a partial run has no meaningful numbers.
func (e *Entry) Finish(res *dataset.Result, err error) {
	e.FinishedAt = time.Now().UTC()
	if err != nil {
		e.Status = StatusError
		e.Error = err.Error()
		return
	}
	e.Status = StatusSuccess
	if res != nil {
		e.Stats = res.Stats
	}
}

// Store persists run history rows in DuckDB.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewStore creates a run history store on an existing database handle.
// The caller keeps ownership of the handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// CreateTable creates the prep_runs table and its indexes if they do not
// exist. Call once during startup.
func (s *Store) CreateTable(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS prep_runs (
			run_id TEXT PRIMARY KEY,
			started_at TIMESTAMPTZ NOT NULL,
			finished_at TIMESTAMPTZ NOT NULL,
			status TEXT NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			ratio DOUBLE NOT NULL,
			seed BIGINT NOT NULL,
			source_table TEXT NOT NULL,
			train_table TEXT NOT NULL,
			test_table TEXT NOT NULL,
			stats JSON,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_prep_runs_started_at ON prep_runs(started_at DESC);
		CREATE INDEX IF NOT EXISTS idx_prep_runs_status ON prep_runs(status);
	`

	// Split and execute each statement
	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("execute run history schema statement: %w", err)
		}
	}

	return nil
}

// Save persists one run entry.
func (s *Store) Save(ctx context.Context, entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry == nil {
		return fmt.Errorf("entry cannot be nil")
	}
	if entry.RunID == "" {
		return fmt.Errorf("entry has no run_id")
	}

	statsBlob, err := json.Marshal(entry.Stats)
	if err != nil {
		return fmt.Errorf("encode run stats: %w", err)
	}

	query := `
		INSERT INTO prep_runs (
			run_id, started_at, finished_at, status, error,
			ratio, seed, source_table, train_table, test_table,
			stats, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.ExecContext(ctx, query,
		entry.RunID,
		entry.StartedAt,
		entry.FinishedAt,
		entry.Status,
		entry.Error,
		entry.Ratio,
		entry.Seed,
		entry.SourceTable,
		entry.TrainTable,
		entry.TestTable,
		string(statsBlob),
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save run entry: %w", err)
	}

	return nil
}

// Get retrieves one run by its ID. A missing run is ErrRunNotFound.
func (s *Store) Get(ctx context.Context, runID string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, selectColumns+" FROM prep_runs WHERE run_id = ?", runID)

	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, fmt.Errorf("get run entry: %w", err)
	}

	return entry, nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		selectColumns+" FROM prep_runs ORDER BY started_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("query run history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			logging.Warn().Err(err).Msg("Failed to scan run history row")
			continue
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run history: %w", err)
	}

	return entries, nil
}

// CountByStatus returns run counts grouped by status.
func (s *Store) CountByStatus(ctx context.Context) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM prep_runs GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("count runs by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan run count: %w", err)
		}
		counts[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run counts: %w", err)
	}

	return counts, nil
}

// PruneBefore removes runs that started before the given time and
// returns how many were dropped.
func (s *Store) PruneBefore(ctx context.Context, olderThan time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, "DELETE FROM prep_runs WHERE started_at < ?", olderThan)
	if err != nil {
		return 0, fmt.Errorf("prune run history: %w", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("read pruned count: %w", err)
	}

	if count > 0 {
		logging.Info().Int64("pruned", count).Time("older_than", olderThan).Msg("Pruned run history")
	}

	return count, nil
}

// Cast JSON to VARCHAR for proper scanning.
const selectColumns = `
	SELECT
		run_id, started_at, finished_at, status, error,
		ratio, seed, source_table, train_table, test_table,
		CAST(stats AS VARCHAR) as stats
`

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*Entry, error) {
	var entry Entry
	var statsBlob sql.NullString

	err := row.Scan(
		&entry.RunID,
		&entry.StartedAt,
		&entry.FinishedAt,
		&entry.Status,
		&entry.Error,
		&entry.Ratio,
		&entry.Seed,
		&entry.SourceTable,
		&entry.TrainTable,
		&entry.TestTable,
		&statsBlob,
	)
	if err != nil {
		return nil, err
	}

	if statsBlob.Valid && statsBlob.String != "" {
		if err := json.Unmarshal([]byte(statsBlob.String), &entry.Stats); err != nil {
			logging.Debug().Err(err).Str("run_id", entry.RunID).Msg("Failed to parse run stats JSON")
		}
	}

	return &entry, nil
}
