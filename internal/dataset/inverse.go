// Strataprep - Stratified Train/Test Preparation for Rating Datasets
// Copyright 2026 Strataprep Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/strataprep/strataprep

package dataset

import "fmt"

// MapBackTable converts a dense matrix back into one Record per non-zero
// cell, translating matrix indices to raw identifiers through the
// backward maps of ix. Rows come out grouped by ascending row index, then
// ascending column index — stable and reproducible, nothing more.
//
// Applied to a matrix built from a duplicate-free table, this is the
// exact inverse of indexing plus matrix construction: the same set of
// (user, item, rating) rows comes back out.
//
// An index without a backward entry is ErrUnknownIndex; it means the
// matrix and maps come from different pipeline runs, and the row is never
// silently dropped.
func MapBackTable(matrix [][]float64, ix *Index) ([]Record, error) {
	records := make([]Record, 0, len(matrix))

	for u, row := range matrix {
		for i, rating := range row {
			if rating == 0 {
				continue
			}

			user, err := ix.UserAt(u)
			if err != nil {
				return nil, fmt.Errorf("map back row %d: %w", u, err)
			}
			item, err := ix.ItemAt(i)
			if err != nil {
				return nil, fmt.Errorf("map back row %d col %d: %w", u, i, err)
			}

			records = append(records, Record{User: user, Item: item, Rating: rating})
		}
	}

	return records, nil
}
