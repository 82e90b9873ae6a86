// Strataprep - Stratified Train/Test Preparation for Rating Datasets
// Copyright 2026 Strataprep Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/strataprep/strataprep

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaultConfig().Validate() error = %v, want nil", err)
	}

	if cfg.Split.Ratio != 0.75 {
		t.Errorf("default Split.Ratio = %v, want 0.75", cfg.Split.Ratio)
	}
	if cfg.Split.Seed != 1234 {
		t.Errorf("default Split.Seed = %v, want 1234", cfg.Split.Seed)
	}
	if cfg.Columns.User != "user_id" || cfg.Columns.Item != "item_id" {
		t.Errorf("default columns = %+v, want user_id/item_id", cfg.Columns)
	}
}

func TestLoadFile_DefaultsOnly(t *testing.T) {
	cfg, err := LoadFile("")
	if err != nil {
		t.Fatalf("LoadFile(\"\") error = %v", err)
	}

	if cfg.Input.Table != "ratings" {
		t.Errorf("Input.Table = %q, want ratings", cfg.Input.Table)
	}
	if cfg.Split.TrainTable != "ratings_train" || cfg.Split.TestTable != "ratings_test" {
		t.Errorf("split tables = %q/%q, want ratings_train/ratings_test",
			cfg.Split.TrainTable, cfg.Split.TestTable)
	}
	if cfg.Database.QueryTimeout != 30*time.Second {
		t.Errorf("Database.QueryTimeout = %v, want 30s", cfg.Database.QueryTimeout)
	}
}

func TestLoadFile_YAMLOverrides(t *testing.T) {
	yamlContent := `
split:
  ratio: 0.5
  seed: 42
columns:
  user: uid
  timestamp: ""
database:
  query_timeout: 45s
dicts:
  enabled: true
  dir: /tmp/dicts
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yamlContent), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if cfg.Split.Ratio != 0.5 {
		t.Errorf("Split.Ratio = %v, want 0.5", cfg.Split.Ratio)
	}
	if cfg.Split.Seed != 42 {
		t.Errorf("Split.Seed = %v, want 42", cfg.Split.Seed)
	}
	if cfg.Columns.User != "uid" {
		t.Errorf("Columns.User = %q, want uid", cfg.Columns.User)
	}
	if cfg.Columns.Timestamp != "" {
		t.Errorf("Columns.Timestamp = %q, want empty", cfg.Columns.Timestamp)
	}
	if cfg.Database.QueryTimeout != 45*time.Second {
		t.Errorf("Database.QueryTimeout = %v, want 45s", cfg.Database.QueryTimeout)
	}
	if !cfg.Dicts.Enabled || cfg.Dicts.Dir != "/tmp/dicts" {
		t.Errorf("Dicts = %+v, want enabled with /tmp/dicts", cfg.Dicts)
	}

	// Untouched settings keep their defaults
	if cfg.Columns.Item != "item_id" {
		t.Errorf("Columns.Item = %q, want default item_id", cfg.Columns.Item)
	}
}

func TestLoadFile_EnvBeatsFile(t *testing.T) {
	yamlContent := "split:\n  ratio: 0.5\n"
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yamlContent), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("SPLIT_RATIO", "0.9")
	t.Setenv("TRAIN_TABLE", "train_out")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if cfg.Split.Ratio != 0.9 {
		t.Errorf("Split.Ratio = %v, want env override 0.9", cfg.Split.Ratio)
	}
	if cfg.Split.TrainTable != "train_out" {
		t.Errorf("Split.TrainTable = %q, want env override train_out", cfg.Split.TrainTable)
	}
}

func TestLoadFile_InvalidRatio(t *testing.T) {
	t.Setenv("SPLIT_RATIO", "1.5")

	_, err := LoadFile("")
	if err == nil {
		t.Fatal("LoadFile() with ratio 1.5 expected error, got nil")
	}
	if !strings.Contains(err.Error(), "Ratio") {
		t.Errorf("error = %v, want mention of Ratio", err)
	}
}

func TestValidate_TableCollisions(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"train equals test", func(c *Config) { c.Split.TestTable = c.Split.TrainTable }},
		{"train equals input", func(c *Config) { c.Split.TrainTable = c.Input.Table }},
		{"test equals input", func(c *Config) { c.Split.TestTable = c.Input.Table }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := defaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() error = nil, want table collision error")
			}
		})
	}
}

func TestValidate_DictsConsistency(t *testing.T) {
	cfg := defaultConfig()
	cfg.Dicts.Enabled = true
	cfg.Dicts.Dir = ""
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() with enabled dicts and no dir expected error")
	}

	cfg = defaultConfig()
	cfg.Dicts.Reuse = true
	cfg.Dicts.Enabled = false
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() with reuse but disabled dicts expected error")
	}
}

func TestValidate_MetricsListen(t *testing.T) {
	cfg := defaultConfig()
	cfg.Metrics.Listen = ":9090"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() with listen :9090 error = %v", err)
	}

	cfg.Metrics.Listen = "not an address"
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() with malformed listen address expected error")
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want string
	}{
		{"split ratio", "SPLIT_RATIO", "split.ratio"},
		{"duckdb path", "DUCKDB_PATH", "database.path"},
		{"column user", "COLUMN_USER", "columns.user"},
		{"dicts reuse", "DICTS_REUSE", "dicts.reuse"},
		{"metrics listen", "METRICS_LISTEN", "metrics.listen"},
		{"unmapped is skipped", "HOME", ""},
		{"unmapped prefix is skipped", "SPLIT_RATIO_EXTRA", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := envTransformFunc(tt.key); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestFindConfigFile_EnvVar(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv(ConfigPathEnvVar, path)

	if got := findConfigFile(); got != path {
		t.Errorf("findConfigFile() = %q, want %q", got, path)
	}
}

func TestFindConfigFile_MissingEnvPathIgnored(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "does-not-exist.yaml"))

	// Falls through to the default search; in a scratch working directory
	// none of the default paths exist.
	if got := findConfigFile(); got != "" && !strings.HasSuffix(got, "config.yaml") && !strings.HasSuffix(got, "config.yml") {
		t.Errorf("findConfigFile() = %q, want empty or a default path", got)
	}
}
