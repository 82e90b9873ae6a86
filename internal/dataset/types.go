// Strataprep - Stratified Train/Test Preparation for Rating Datasets
// Copyright 2026 Strataprep Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/strataprep/strataprep

package dataset

// Record is one observed (user, item, rating) row from the source table.
//
// User and Item are opaque identifiers carried as strings so numeric and
// non-numeric source ids are both representable. Rating is a positive
// value; 0 is reserved as the "unrated" sentinel in the matrix form.
// Timestamp is epoch seconds when the source table has a timestamp
// column, 0 otherwise; the pipeline tolerates it but never reads it.
type Record struct {
	User      string  `json:"user_id"`
	Item      string  `json:"item_id"`
	Rating    float64 `json:"rating"`
	Timestamp int64   `json:"timestamp,omitempty"`
}
