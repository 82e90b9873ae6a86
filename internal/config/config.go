// Strataprep - Stratified Train/Test Preparation for Rating Datasets
// Copyright 2026 Strataprep Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/strataprep/strataprep

package config

import (
	"time"
)

// Config holds all application configuration
type Config struct {
	Log      LogConfig      `koanf:"log"`
	Database DatabaseConfig `koanf:"database"`
	Input    InputConfig    `koanf:"input"`
	Columns  ColumnsConfig  `koanf:"columns"`
	Filter   FilterConfig   `koanf:"filter"`
	Split    SplitConfig    `koanf:"split"`
	Export   ExportConfig   `koanf:"export"`
	Dicts    DictsConfig    `koanf:"dicts"`
	Metrics  MetricsConfig  `koanf:"metrics"`
	RunLog   RunLogConfig   `koanf:"runlog"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal panic"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

// DatabaseConfig holds DuckDB settings
type DatabaseConfig struct {
	Path         string        `koanf:"path" validate:"required"`
	MaxMemory    string        `koanf:"max_memory"`
	Threads      int           `koanf:"threads" validate:"gte=0"` // Number of DuckDB threads (0 = use NumCPU)
	QueryTimeout time.Duration `koanf:"query_timeout"`
}

// InputConfig names the source of rating rows.
type InputConfig struct {
	// CSV is an optional file to ingest into Table before the run.
	// When empty, Table must already exist in the database.
	CSV   string `koanf:"csv"`
	Table string `koanf:"table" validate:"required"`
}

// ColumnsConfig maps the source table's column names. Rating dumps disagree
// on naming (userId vs user_id vs uid), so every name is configurable.
type ColumnsConfig struct {
	User   string `koanf:"user" validate:"required"`
	Item   string `koanf:"item" validate:"required"`
	Rating string `koanf:"rating" validate:"required"`
	// Timestamp is optional; empty means the table has no timestamp column.
	Timestamp string `koanf:"timestamp"`
}

// FilterConfig holds minimum-activity thresholds applied before indexing.
// Zero disables a threshold.
type FilterConfig struct {
	MinUserRatings int `koanf:"min_user_ratings" validate:"gte=0"`
	MinItemRatings int `koanf:"min_item_ratings" validate:"gte=0"`
}

// SplitConfig holds train/test split settings
type SplitConfig struct {
	// Ratio is the train fraction, strictly between 0 and 1.
	Ratio float64 `koanf:"ratio" validate:"gt=0,lt=1"`
	// Seed makes sampling reproducible: equal inputs and equal seeds
	// produce identical splits.
	Seed       int64  `koanf:"seed"`
	TrainTable string `koanf:"train_table" validate:"required"`
	TestTable  string `koanf:"test_table" validate:"required"`
}

// ExportConfig holds CSV export settings.
type ExportConfig struct {
	// Dir receives train/test CSV exports after the run. Empty disables export.
	Dir string `koanf:"dir"`
}

// DictsConfig holds dictionary persistence settings.
type DictsConfig struct {
	// Enabled turns on persistence of the four index dictionaries.
	Enabled bool `koanf:"enabled"`
	// Dir is the BadgerDB directory holding the dictionaries.
	Dir string `koanf:"dir"`
	// Reuse loads a previously persisted index instead of building a fresh
	// one, keeping matrix positions stable across runs.
	Reuse bool `koanf:"reuse"`
}

// MetricsConfig holds diagnostics listener settings.
type MetricsConfig struct {
	// Listen is the host:port for the /healthz and /metrics endpoints.
	// Empty disables the listener; batch runs usually leave it off.
	Listen string `koanf:"listen" validate:"omitempty,hostname_port"`
}

// RunLogConfig holds run history settings.
type RunLogConfig struct {
	// Retention prunes history rows older than this at startup.
	// Zero keeps the history forever.
	Retention time.Duration `koanf:"retention" validate:"gte=0"`
}

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Database: DatabaseConfig{
			Path:         "/data/strataprep.duckdb",
			MaxMemory:    "2GB",
			Threads:      0, // 0 = use runtime.NumCPU()
			QueryTimeout: 30 * time.Second,
		},
		Input: InputConfig{
			CSV:   "",
			Table: "ratings",
		},
		Columns: ColumnsConfig{
			User:      "user_id",
			Item:      "item_id",
			Rating:    "rating",
			Timestamp: "timestamp",
		},
		Filter: FilterConfig{
			MinUserRatings: 0,
			MinItemRatings: 0,
		},
		Split: SplitConfig{
			Ratio:      0.75,
			Seed:       1234,
			TrainTable: "ratings_train",
			TestTable:  "ratings_test",
		},
		Export: ExportConfig{
			Dir: "",
		},
		Dicts: DictsConfig{
			Enabled: false,
			Dir:     "/data/dicts",
			Reuse:   false,
		},
		Metrics: MetricsConfig{
			Listen: "",
		},
		RunLog: RunLogConfig{
			Retention: 0,
		},
	}
}
