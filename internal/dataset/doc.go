// Strataprep - Stratified Train/Test Preparation for Rating Datasets
// Copyright 2026 Strataprep Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/strataprep/strataprep

// Package dataset converts a table of (user, item, rating) observations
// into a dense user-by-item affinity matrix and produces a reproducible,
// per-user stratified train/test split of it.
//
// # Stages
//
// The pipeline is an explicit sequence of pure stages; each takes the
// prior stage's output as a value and returns a new value:
//
//   - BuildIndex: bijective maps between raw identifiers and contiguous
//     zero-based matrix indices.
//   - BuildAffinityMatrix: dense (users x items) matrix from indexed
//     triples, 0 meaning "no observation"; duplicate (user, item) pairs
//     are summed.
//   - StratifiedSplit: per-row partition of non-zero cells into disjoint
//     train and test matrices at a target ratio.
//   - MapBackTable: one (user, item, rating) row per non-zero cell, in
//     original identifier space.
//
// Pipeline ties the stages together and adds logging, metrics, and the
// optional dictionary persistence hand-off.
//
// # Determinism
//
// Splitting uses a generator seeded per call and threaded through the
// sampling loop. The same (matrix, ratio, seed) input reproduces a
// bit-identical split regardless of what else the process has run.
package dataset
