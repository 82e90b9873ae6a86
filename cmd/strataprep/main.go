// Strataprep - Stratified Train/Test Preparation for Rating Datasets
// Copyright 2026 Strataprep Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/strataprep/strataprep

// Package main is the entry point for the strataprep command.
//
// Strataprep turns a raw table of (user, item, rating) observations into
// aligned train/test rating tables, ready for recommender training. One
// invocation is one run: load, prepare, split, write, report.
//
// # Run Sequence
//
// The command executes the following steps in order:
//
//  1. Configuration: load settings from environment variables and config
//     files (Koanf v2)
//  2. Database: open the DuckDB store holding the rating tables
//  3. Ingest (optional): load a ratings CSV into the source table
//  4. Prepare: filter, index, affinity matrix, stratified split, and
//     inverse mapping stages
//  5. Outputs: write the train/test tables, optionally export them to
//     CSV, optionally persist the index dictionaries to BadgerDB
//  6. Summary: record the run in the history table and print a JSON run
//     summary to stdout
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - Environment variables (SPLIT_RATIO, SPLIT_SEED, DUCKDB_PATH, ...)
//   - Config file (config.yaml, or the path in STRATAPREP_CONFIG)
//   - Built-in defaults
//
// # Reproducibility
//
// The split is driven entirely by (ratio, seed), both part of the
// configuration. Re-running with the same input table and the same
// configuration reproduces the same train/test tables bit for bit.
//
// # Dictionary Persistence
//
// With DICTS_ENABLED=true the four index dictionaries (user_dict,
// item_dict, user_back_dict, item_back_dict) are persisted to a BadgerDB
// store after indexing. DICTS_REUSE=true additionally reloads them at
// startup and encodes the current table under the persisted index, so a
// later table lines up cell for cell with earlier matrix artifacts.
//
// # Run History
//
// Every run, successful or failed, is recorded in the prep_runs table of
// the same DuckDB database, keyed by run ID. RUNLOG_RETENTION prunes old
// history rows at startup; the diagnostics listener serves the history
// under /runs.
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the run context. In-flight database work
// stops at the next stage boundary and the command exits non-zero.
//
// # Example Usage
//
// Prepare a previously ingested table with the default 75/25 split:
//
//	export DUCKDB_PATH=/data/ratings.duckdb
//	./strataprep
//
// Ingest a MovieLens-style CSV first, with custom column names:
//
//	export INPUT_CSV=/data/ratings.csv
//	export COLUMN_USER=userId
//	export COLUMN_ITEM=movieId
//	export COLUMN_RATING=rating
//	./strataprep
//
// Change the split and persist the dictionaries:
//
//	export SPLIT_RATIO=0.8
//	export SPLIT_SEED=42
//	export DICTS_ENABLED=true
//	export DICTS_DIR=/data/dicts
//	./strataprep
//
// Expose Prometheus metrics while a long run is in flight:
//
//	export METRICS_LISTEN=:9090
//	./strataprep
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/strataprep/strataprep/internal/api"
	"github.com/strataprep/strataprep/internal/config"
	"github.com/strataprep/strataprep/internal/database"
	"github.com/strataprep/strataprep/internal/dataset"
	"github.com/strataprep/strataprep/internal/dataset/dictstore"
	"github.com/strataprep/strataprep/internal/logging"
	"github.com/strataprep/strataprep/internal/metrics"
	"github.com/strataprep/strataprep/internal/runlog"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	runID := uuid.NewString()
	metrics.AppInfo.WithLabelValues(version, runtime.Version()).Set(1)

	logging.Info().
		Str("run_id", runID).
		Str("version", version).
		Str("db_path", cfg.Database.Path).
		Str("source_table", cfg.Input.Table).
		Float64("ratio", cfg.Split.Ratio).
		Int64("seed", cfg.Split.Seed).
		Msg("Starting strataprep")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	if err := run(ctx, cfg, runID); err != nil {
		logging.Fatal().Err(err).Str("run_id", runID).Msg("Preparation run failed")
	}

	logging.Info().Str("run_id", runID).Msg("Preparation run complete")
}

// run opens the database, keeps the run history, and drives one
// preparation. The history row is written for failed runs too, so /runs
// and post-mortems see every attempt.
func run(ctx context.Context, cfg *config.Config, runID string) error {
	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	runs := runlog.NewStore(db.Conn())
	if err := runs.CreateTable(ctx); err != nil {
		return fmt.Errorf("initialize run history: %w", err)
	}
	if cfg.RunLog.Retention > 0 {
		if _, err := runs.PruneBefore(ctx, time.Now().Add(-cfg.RunLog.Retention)); err != nil {
			logging.Warn().Err(err).Msg("Failed to prune run history")
		}
	}

	stopListener := startDiagnosticsListener(cfg, db, runs)
	defer stopListener()

	entry := &runlog.Entry{
		RunID:       runID,
		StartedAt:   time.Now().UTC(),
		Ratio:       cfg.Split.Ratio,
		Seed:        cfg.Split.Seed,
		SourceTable: cfg.Input.Table,
		TrainTable:  cfg.Split.TrainTable,
		TestTable:   cfg.Split.TestTable,
	}

	res, prepErr := prepare(ctx, cfg, db, runID)

	entry.Finish(res, prepErr)
	if err := runs.Save(ctx, entry); err != nil {
		// The split outcome matters more than its bookkeeping.
		logging.Warn().Err(err).Str("run_id", runID).Msg("Failed to record run history")
	}

	if prepErr != nil {
		return prepErr
	}

	return printSummary(os.Stdout, runID, cfg, res)
}

// prepare executes one preparation run end to end: optional CSV ingest,
// ratings load, the pipeline stages, table writes, optional CSV export.
func prepare(ctx context.Context, cfg *config.Config, db *database.DB, runID string) (*dataset.Result, error) {
	cols := database.Columns{
		User:      cfg.Columns.User,
		Item:      cfg.Columns.Item,
		Rating:    cfg.Columns.Rating,
		Timestamp: cfg.Columns.Timestamp,
	}

	if cfg.Input.CSV != "" {
		count, err := db.IngestCSV(ctx, cfg.Input.Table, cfg.Input.CSV)
		if err != nil {
			return nil, fmt.Errorf("ingest %s: %w", cfg.Input.CSV, err)
		}
		logging.Info().
			Int64("rows", count).
			Str("table", cfg.Input.Table).
			Str("csv", cfg.Input.CSV).
			Msg("Ingested ratings CSV")
	}

	exists, err := db.TableExists(ctx, cfg.Input.Table)
	if err != nil {
		return nil, fmt.Errorf("check source table: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("source table %q does not exist; set INPUT_CSV to ingest one", cfg.Input.Table)
	}

	records, err := db.QueryRatings(ctx, cfg.Input.Table, cols)
	if err != nil {
		return nil, fmt.Errorf("load ratings from %s: %w", cfg.Input.Table, err)
	}
	logging.Info().Int("rows", len(records)).Str("table", cfg.Input.Table).Msg("Loaded ratings")

	pipeline, err := dataset.NewPipeline(dataset.Config{
		Ratio:          cfg.Split.Ratio,
		Seed:           cfg.Split.Seed,
		MinUserRatings: cfg.Filter.MinUserRatings,
		MinItemRatings: cfg.Filter.MinItemRatings,
	}, logging.With().Str("run_id", runID).Logger())
	if err != nil {
		return nil, fmt.Errorf("configure pipeline: %w", err)
	}

	var store *dictstore.Store
	if cfg.Dicts.Enabled {
		store, err = dictstore.Open(cfg.Dicts.Dir)
		if err != nil {
			return nil, fmt.Errorf("open dictionary store: %w", err)
		}
		defer func() {
			if err := store.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing dictionary store")
			}
		}()
		pipeline.SetDictSink(store)
	}

	var res *dataset.Result
	if cfg.Dicts.Enabled && cfg.Dicts.Reuse {
		ix, err := dataset.LoadIndex(ctx, store)
		if err != nil {
			return nil, fmt.Errorf("reload index dictionaries: %w", err)
		}
		logging.Info().
			Int("users", ix.NumUsers()).
			Int("items", ix.NumItems()).
			Msg("Reusing persisted index dictionaries")

		res, err = pipeline.RunWithIndex(ctx, records, ix)
		if err != nil {
			return nil, err
		}
	} else {
		res, err = pipeline.Run(ctx, records)
		if err != nil {
			return nil, err
		}
	}

	if _, err := db.WriteRatings(ctx, cfg.Split.TrainTable, cols, res.TrainTable); err != nil {
		return nil, fmt.Errorf("write train table: %w", err)
	}
	if _, err := db.WriteRatings(ctx, cfg.Split.TestTable, cols, res.TestTable); err != nil {
		return nil, fmt.Errorf("write test table: %w", err)
	}
	logging.Info().
		Str("train_table", cfg.Split.TrainTable).
		Str("test_table", cfg.Split.TestTable).
		Int("train_rows", len(res.TrainTable)).
		Int("test_rows", len(res.TestTable)).
		Msg("Wrote split tables")

	if cfg.Export.Dir != "" {
		for _, table := range []string{cfg.Split.TrainTable, cfg.Split.TestTable} {
			out := filepath.Join(cfg.Export.Dir, table+".csv")
			if err := db.ExportCSV(ctx, table, out); err != nil {
				return nil, fmt.Errorf("export %s: %w", table, err)
			}
		}
		logging.Info().Str("dir", cfg.Export.Dir).Msg("Exported split tables to CSV")
	}

	return res, nil
}

// startDiagnosticsListener serves /healthz, /metrics, and /runs while the
// run is in flight when a listen address is configured. The returned stop
// function shuts the listener down and waits briefly for in-flight
// scrapes.
func startDiagnosticsListener(cfg *config.Config, db *database.DB, runs *runlog.Store) func() {
	if cfg.Metrics.Listen == "" {
		return func() {}
	}

	router := api.NewRouter(db)
	if runs != nil {
		router.SetRunLog(runs)
	}
	server := &http.Server{
		Addr:         cfg.Metrics.Listen,
		Handler:      router.Setup(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logging.Info().Str("addr", server.Addr).Msg("Diagnostics listener started")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error().Err(err).Msg("Diagnostics listener failed")
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logging.Warn().Err(err).Msg("Diagnostics listener shutdown timed out")
		}
	}
}

// runSummary is the JSON document printed to stdout after a successful
// run. Scripts driving strataprep parse this instead of the logs.
type runSummary struct {
	RunID      string           `json:"run_id"`
	TrainTable string           `json:"train_table"`
	TestTable  string           `json:"test_table"`
	Ratio      float64          `json:"ratio"`
	Seed       int64            `json:"seed"`
	Stats      dataset.RunStats `json:"stats"`
}

func printSummary(w io.Writer, runID string, cfg *config.Config, res *dataset.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	summary := runSummary{
		RunID:      runID,
		TrainTable: cfg.Split.TrainTable,
		TestTable:  cfg.Split.TestTable,
		Ratio:      cfg.Split.Ratio,
		Seed:       cfg.Split.Seed,
		Stats:      res.Stats,
	}
	if err := enc.Encode(summary); err != nil {
		return fmt.Errorf("write run summary: %w", err)
	}

	return nil
}
