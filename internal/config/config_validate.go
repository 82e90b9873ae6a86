// Strataprep - Stratified Train/Test Preparation for Rating Datasets
// Copyright 2026 Strataprep Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/strataprep/strataprep

package config

import (
	"fmt"

	"github.com/strataprep/strataprep/internal/validation"
)

// Validate checks that the configuration is complete and internally
// consistent. Field-level rules come from struct tags; cross-field rules
// are checked by hand.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}

	if err := c.validateTables(); err != nil {
		return err
	}

	if err := c.validateDatabase(); err != nil {
		return err
	}

	return c.validateDicts()
}

// validateTables ensures the input, train, and test tables are distinct.
// The split writer replaces its target tables, so a collision would
// silently destroy the source data.
func (c *Config) validateTables() error {
	if c.Split.TrainTable == c.Split.TestTable {
		return fmt.Errorf("TRAIN_TABLE and TEST_TABLE must differ (both %q)", c.Split.TrainTable)
	}
	if c.Split.TrainTable == c.Input.Table {
		return fmt.Errorf("TRAIN_TABLE must not overwrite INPUT_TABLE %q", c.Input.Table)
	}
	if c.Split.TestTable == c.Input.Table {
		return fmt.Errorf("TEST_TABLE must not overwrite INPUT_TABLE %q", c.Input.Table)
	}
	return nil
}

// validateDatabase checks database settings
func (c *Config) validateDatabase() error {
	if c.Database.QueryTimeout < 0 {
		return fmt.Errorf("DUCKDB_QUERY_TIMEOUT must not be negative (got %s)", c.Database.QueryTimeout)
	}
	return nil
}

// validateDicts checks dictionary persistence settings
func (c *Config) validateDicts() error {
	if c.Dicts.Enabled && c.Dicts.Dir == "" {
		return fmt.Errorf("DICTS_DIR is required when DICTS_ENABLED=true")
	}
	if c.Dicts.Reuse && !c.Dicts.Enabled {
		return fmt.Errorf("DICTS_REUSE=true requires DICTS_ENABLED=true")
	}
	return nil
}
