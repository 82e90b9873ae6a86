// Strataprep - Stratified Train/Test Preparation for Rating Datasets
// Copyright 2026 Strataprep Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/strataprep/strataprep

package dataset

import (
	"reflect"
	"testing"
)

// buildTestMatrix returns a 10x20 matrix with a deterministic rating
// pattern: varying rated counts per row, plus one entirely unrated row.
func buildTestMatrix() [][]float64 {
	matrix := make([][]float64, 10)
	for u := range matrix {
		matrix[u] = make([]float64, 20)
		if u == 4 {
			continue // row 4 stays unrated
		}
		for i := range matrix[u] {
			if (u*7+i*3)%4 != 0 {
				matrix[u][i] = float64(u + i + 1)
			}
		}
	}
	return matrix
}

func TestStratifiedSplit_Conservation(t *testing.T) {
	t.Parallel()

	matrix := buildTestMatrix()

	train, test, err := StratifiedSplit(matrix, 0.75, 1234)
	if err != nil {
		t.Fatalf("StratifiedSplit() error: %v", err)
	}

	for u := range matrix {
		for i := range matrix[u] {
			// Each cell lives in exactly one half, with its value intact.
			if train[u][i] != 0 && test[u][i] != 0 {
				t.Errorf("cell (%d,%d) present in both train and test", u, i)
			}
			if got := train[u][i] + test[u][i]; got != matrix[u][i] {
				t.Errorf("cell (%d,%d): train+test = %v, want %v", u, i, got, matrix[u][i])
			}
		}

		rated := nonZeroCount(matrix[u])
		wantTest := rated * 25 / 100
		if got := nonZeroCount(test[u]); got != wantTest {
			t.Errorf("row %d: test cells = %d, want %d (of %d rated)", u, got, wantTest, rated)
		}
		if got := nonZeroCount(train[u]); got != rated-wantTest {
			t.Errorf("row %d: train cells = %d, want %d", u, got, rated-wantTest)
		}
	}
}

func TestStratifiedSplit_Deterministic(t *testing.T) {
	t.Parallel()

	matrix := buildTestMatrix()

	train1, test1, err := StratifiedSplit(matrix, 0.75, 42)
	if err != nil {
		t.Fatalf("first StratifiedSplit() error: %v", err)
	}
	train2, test2, err := StratifiedSplit(matrix, 0.75, 42)
	if err != nil {
		t.Fatalf("second StratifiedSplit() error: %v", err)
	}

	if !reflect.DeepEqual(train1, train2) {
		t.Error("same seed produced different train matrices")
	}
	if !reflect.DeepEqual(test1, test2) {
		t.Error("same seed produced different test matrices")
	}
}

func TestStratifiedSplit_SourceUntouched(t *testing.T) {
	t.Parallel()

	matrix := buildTestMatrix()
	original := make([][]float64, len(matrix))
	for u, row := range matrix {
		original[u] = make([]float64, len(row))
		copy(original[u], row)
	}

	train, test, err := StratifiedSplit(matrix, 0.75, 7)
	if err != nil {
		t.Fatalf("StratifiedSplit() error: %v", err)
	}

	if !reflect.DeepEqual(matrix, original) {
		t.Error("source matrix was modified")
	}

	// Output rows must not alias source rows.
	for u := range matrix {
		if len(matrix[u]) == 0 {
			continue
		}
		if &train[u][0] == &matrix[u][0] || &test[u][0] == &matrix[u][0] {
			t.Errorf("row %d: output aliases source storage", u)
		}
	}
}

func TestStratifiedSplit_SmallRows(t *testing.T) {
	t.Parallel()

	// 2x2 matrix with three ratings at ratio 0.5: the two-rating row
	// sends exactly one cell to test, the one-rating row none.
	matrix := [][]float64{
		{5, 3},
		{4, 0},
	}

	train, test, err := StratifiedSplit(matrix, 0.5, 42)
	if err != nil {
		t.Fatalf("StratifiedSplit() error: %v", err)
	}

	if got := nonZeroCount(test[0]); got != 1 {
		t.Errorf("row 0: test cells = %d, want 1", got)
	}
	if got := nonZeroCount(train[0]); got != 1 {
		t.Errorf("row 0: train cells = %d, want 1", got)
	}

	wantTrain1 := []float64{4, 0}
	wantTest1 := []float64{0, 0}
	if !reflect.DeepEqual(train[1], wantTrain1) {
		t.Errorf("row 1 train = %v, want %v", train[1], wantTrain1)
	}
	if !reflect.DeepEqual(test[1], wantTest1) {
		t.Errorf("row 1 test = %v, want %v", test[1], wantTest1)
	}
}

func TestStratifiedSplit_CutTruncation(t *testing.T) {
	t.Parallel()

	// One row of 100 rated cells, so the test count equals the cut
	// percentage directly. The cut truncates: 1-0.8 lands just under
	// 0.2 in binary floating point, so 19 cells go to test, not 20.
	row := make([]float64, 100)
	for i := range row {
		row[i] = 1
	}
	matrix := [][]float64{row}

	tests := []struct {
		ratio float64
		want  int
	}{
		{0.75, 25},
		{0.5, 50},
		{0.25, 75},
		{0.8, 19},
		{0.9, 9},
	}

	for _, tt := range tests {
		_, test, err := StratifiedSplit(matrix, tt.ratio, 1)
		if err != nil {
			t.Fatalf("StratifiedSplit(ratio=%v) error: %v", tt.ratio, err)
		}
		if got := nonZeroCount(test[0]); got != tt.want {
			t.Errorf("ratio %v: test cells = %d, want %d", tt.ratio, got, tt.want)
		}
	}
}

func TestStratifiedSplit_InvalidRatio(t *testing.T) {
	t.Parallel()

	matrix := [][]float64{{1, 2}}

	for _, ratio := range []float64{0, 1, -0.5, 1.5} {
		train, test, err := StratifiedSplit(matrix, ratio, 1)
		if err == nil {
			t.Errorf("ratio %v: expected error, got nil", ratio)
		}
		if train != nil || test != nil {
			t.Errorf("ratio %v: expected nil matrices on error", ratio)
		}
	}
}

func TestStratifiedSplit_EmptyMatrix(t *testing.T) {
	t.Parallel()

	train, test, err := StratifiedSplit(nil, 0.75, 1)
	if err != nil {
		t.Fatalf("StratifiedSplit() error: %v", err)
	}
	if len(train) != 0 || len(test) != 0 {
		t.Errorf("train/test lengths = %d/%d, want 0/0", len(train), len(test))
	}
}

func BenchmarkStratifiedSplit(b *testing.B) {
	matrix := make([][]float64, 100)
	for u := range matrix {
		matrix[u] = make([]float64, 500)
		for i := range matrix[u] {
			if (u+i)%3 != 0 {
				matrix[u][i] = float64(i%5 + 1)
			}
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := StratifiedSplit(matrix, 0.75, int64(i)); err != nil {
			b.Fatal(err)
		}
	}
}
