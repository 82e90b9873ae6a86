// Strataprep - Stratified Train/Test Preparation for Rating Datasets
// Copyright 2026 Strataprep Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/strataprep/strataprep

package dataset

import "errors"

// Sentinel errors for the pipeline stages. Callers match with errors.Is;
// wrapped messages carry the offending row, index, or count.
var (
	// ErrShapeMismatch reports triples that do not fit the declared matrix
	// shape: parallel slices of unequal length, or an index outside
	// [0, rows) x [0, cols). The build aborts; no partial matrix is returned.
	ErrShapeMismatch = errors.New("dataset: triples do not match matrix shape")

	// ErrUnknownIndex reports a matrix index with no entry in the backward
	// map. This signals mismatched map/matrix versions and is never
	// silently skipped.
	ErrUnknownIndex = errors.New("dataset: no backward mapping for index")

	// ErrUnknownIdentifier reports a raw user or item identifier absent
	// from the forward map when encoding under a previously built index.
	ErrUnknownIdentifier = errors.New("dataset: identifier not in index")

	// ErrSplitInconsistent reports a violation of the split conservation
	// invariant (train plus test non-zero counts must equal the source
	// row's). It indicates a sampling bug, not bad input.
	ErrSplitInconsistent = errors.New("dataset: split lost or duplicated ratings")

	// ErrDictNotFound reports a missing dictionary key in the persistence
	// store.
	ErrDictNotFound = errors.New("dataset: dictionary not found in store")
)
