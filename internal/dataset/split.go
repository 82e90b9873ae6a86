// Strataprep - Stratified Train/Test Preparation for Rating Datasets
// Copyright 2026 Strataprep Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/strataprep/strataprep

package dataset

import (
	"fmt"
	"math/rand"
)

// StratifiedSplit partitions the non-zero cells of each matrix row into
// disjoint train and test subsets, holding back roughly (1 - ratio) of
// every user's ratings. Rows are handled independently so each user keeps
// a proportional share of their own volume in both halves.
//
// The held-back percentage is computed once for the whole call as
// int((1-ratio)*100) — truncated, not rounded, a deliberately coarse
// policy that downstream consumers depend on. Each row then contributes
// rated*cut/100 cells (integer division) to test, chosen uniformly
// without replacement by a partial shuffle of the row's non-zero column
// indices. Rows with too few ratings to reach the quota stay entirely in
// train; that is expected, not an error.
//
// train is the source row with the chosen cells zeroed; test holds
// exactly the chosen cells and zeros elsewhere. Both are freshly
// allocated; the source matrix is never written to or aliased.
//
// The generator is seeded here and scoped to this call, so the same
// (matrix, ratio, seed) input reproduces a bit-identical split no matter
// what else the process has run.
func StratifiedSplit(matrix [][]float64, ratio float64, seed int64) (train, test [][]float64, err error) {
	if ratio <= 0 || ratio >= 1 {
		return nil, nil, fmt.Errorf("train ratio must be in (0, 1), got %v", ratio)
	}

	testCut := int((1 - ratio) * 100)

	//nolint:gosec // G404: math/rand is acceptable for split sampling (not security)
	rng := rand.New(rand.NewSource(seed))

	train = make([][]float64, len(matrix))
	test = make([][]float64, len(matrix))

	for u, row := range matrix {
		trainRow := make([]float64, len(row))
		copy(trainRow, row)
		testRow := make([]float64, len(row))

		var ratedCols []int
		for i, v := range row {
			if v != 0 {
				ratedCols = append(ratedCols, i)
			}
		}
		rated := len(ratedCols)
		testCount := rated * testCut / 100

		// Partial shuffle: after i swaps the first i entries are a
		// uniform sample without replacement, so only testCount swaps
		// are needed.
		for i := 0; i < testCount; i++ {
			j := i + rng.Intn(rated-i)
			ratedCols[i], ratedCols[j] = ratedCols[j], ratedCols[i]
		}

		for _, col := range ratedCols[:testCount] {
			trainRow[col] = 0
			testRow[col] = row[col]
		}

		train[u] = trainRow
		test[u] = testRow

		if got := nonZeroCount(trainRow) + nonZeroCount(testRow); got != rated {
			return nil, nil, fmt.Errorf("%w: row %d has %d cells across train and test, source has %d",
				ErrSplitInconsistent, u, got, rated)
		}
	}

	return train, test, nil
}
