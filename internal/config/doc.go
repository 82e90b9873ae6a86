// Strataprep - Stratified Train/Test Preparation for Rating Datasets
// Copyright 2026 Strataprep Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/strataprep/strataprep

/*
Package config loads and validates application configuration.

Configuration is layered with Koanf v2:

 1. Built-in defaults (defaultConfig)
 2. Optional YAML config file (first match of DefaultConfigPaths, or the
    path named by STRATAPREP_CONFIG)
 3. Environment variables (highest priority, see envTransformFunc for the
    recognized names)

The loaded Config is validated before use: field-level rules live in
validate struct tags, cross-field rules (distinct table names, dictionary
persistence consistency) in Config.Validate.
*/
package config
