// Strataprep - Stratified Train/Test Preparation for Rating Datasets
// Copyright 2026 Strataprep Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/strataprep/strataprep

package dataset

import "fmt"

// BuildAffinityMatrix produces a dense (numUsers x numItems) matrix from
// the parallel slices of user indices, item indices, and ratings. Cells
// without an observation hold the sentinel 0.
//
// Duplicate (user, item) pairs have their ratings summed into the single
// cell. This mirrors sparse-coordinate aggregation semantics and is part
// of the contract; it must never become last-write-wins.
//
// ErrShapeMismatch is returned when the three slices differ in length or
// when any index falls outside the declared shape; the build aborts with
// no partial matrix.
func BuildAffinityMatrix(numUsers, numItems int, users, items []int, ratings []float64) ([][]float64, error) {
	if len(users) != len(items) || len(users) != len(ratings) {
		return nil, fmt.Errorf("%w: %d user, %d item, %d rating entries",
			ErrShapeMismatch, len(users), len(items), len(ratings))
	}

	matrix := make([][]float64, numUsers)
	for u := range matrix {
		matrix[u] = make([]float64, numItems)
	}

	for n := range users {
		u, i := users[n], items[n]
		if u < 0 || u >= numUsers {
			return nil, fmt.Errorf("%w: user index %d outside [0, %d)", ErrShapeMismatch, u, numUsers)
		}
		if i < 0 || i >= numItems {
			return nil, fmt.Errorf("%w: item index %d outside [0, %d)", ErrShapeMismatch, i, numItems)
		}
		matrix[u][i] += ratings[n]
	}

	return matrix, nil
}

// Sparsity returns the fraction of matrix cells holding the "no
// observation" sentinel, in [0, 1]. A zero-sized matrix reports 0 rather
// than dividing by zero. Diagnostic only; nothing downstream branches on
// it.
func Sparsity(matrix [][]float64) float64 {
	cells := 0
	zeros := 0
	for _, row := range matrix {
		cells += len(row)
		for _, v := range row {
			if v == 0 {
				zeros++
			}
		}
	}

	if cells == 0 {
		return 0
	}
	return float64(zeros) / float64(cells)
}

// nonZeroCount returns the number of rated cells in a row.
func nonZeroCount(row []float64) int {
	n := 0
	for _, v := range row {
		if v != 0 {
			n++
		}
	}
	return n
}
