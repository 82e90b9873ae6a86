// Strataprep - Stratified Train/Test Preparation for Rating Datasets
// Copyright 2026 Strataprep Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/strataprep/strataprep

package dataset

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/strataprep/strataprep/internal/metrics"
)

// Config controls a Pipeline run.
type Config struct {
	// Ratio is the train share of each user's ratings, in (0, 1).
	// Default: 0.75.
	Ratio float64

	// Seed for the split sampler.
	// If 0, uses a default seed.
	Seed int64

	// MinUserRatings drops users with fewer rows before indexing.
	// 0 or 1 disables the filter. Default: 0.
	MinUserRatings int

	// MinItemRatings drops items with fewer rows before indexing.
	// 0 or 1 disables the filter. Default: 0.
	MinItemRatings int
}

// DefaultConfig returns the default pipeline configuration.
func DefaultConfig() Config {
	return Config{
		Ratio: 0.75,
		Seed:  1234,
	}
}

// Validate checks configuration bounds.
func (c Config) Validate() error {
	if c.Ratio <= 0 || c.Ratio >= 1 {
		return fmt.Errorf("ratio must be in (0, 1), got %v", c.Ratio)
	}
	if c.MinUserRatings < 0 {
		return fmt.Errorf("min user ratings must be >= 0, got %d", c.MinUserRatings)
	}
	if c.MinItemRatings < 0 {
		return fmt.Errorf("min item ratings must be >= 0, got %d", c.MinItemRatings)
	}
	return nil
}

// Pipeline runs the stages in order — filter, index, persist, matrix,
// split, inverse — passing each stage's output explicitly to the next.
// It holds no per-run state, so one Pipeline can serve many runs.
type Pipeline struct {
	cfg    Config
	logger zerolog.Logger
	sink   DictSink
}

// Result is everything a run produces: the index with its backward maps,
// the train/test matrices, the train/test tables in original identifier
// space, and the run statistics.
type Result struct {
	Index      *Index
	Train      [][]float64
	Test       [][]float64
	TrainTable []Record
	TestTable  []Record
	Stats      RunStats
}

// RunStats carries the diagnostic numbers of one run.
type RunStats struct {
	RowsIn     int           `json:"rows_in"`
	RowsKept   int           `json:"rows_kept"`
	NumUsers   int           `json:"num_users"`
	NumItems   int           `json:"num_items"`
	Sparsity   float64       `json:"sparsity"`
	TestCut    int           `json:"test_cut"`
	TrainCells int           `json:"train_cells"`
	TestCells  int           `json:"test_cells"`
	Elapsed    time.Duration `json:"elapsed_ns"`
}

// NewPipeline creates a pipeline, filling zero config values with
// defaults.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewPipeline(cfg Config, logger zerolog.Logger) (*Pipeline, error) {
	if cfg.Ratio == 0 {
		cfg.Ratio = 0.75
	}
	if cfg.Seed == 0 {
		cfg.Seed = 1234
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Pipeline{
		cfg:    cfg,
		logger: logger.With().Str("component", "dataset").Logger(),
	}, nil
}

// SetDictSink enables dictionary persistence. A nil sink (the default)
// disables it.
func (p *Pipeline) SetDictSink(sink DictSink) {
	p.sink = sink
}

// Run executes the full pipeline over records, building fresh index maps.
func (p *Pipeline) Run(ctx context.Context, records []Record) (*Result, error) {
	res, err := p.run(ctx, records, nil)
	if err != nil {
		metrics.RecordPipelineRun("error")
		return nil, err
	}
	metrics.RecordPipelineRun("success")
	return res, nil
}

// RunWithIndex executes the pipeline under a previously built (usually
// reloaded) index, so a later table is encoded exactly as the original
// run encoded its own. Records with identifiers the index has never seen
// fail with ErrUnknownIdentifier. Dictionaries are not re-persisted.
func (p *Pipeline) RunWithIndex(ctx context.Context, records []Record, ix *Index) (*Result, error) {
	if ix == nil {
		return nil, fmt.Errorf("run with index: index is nil")
	}

	res, err := p.run(ctx, records, ix)
	if err != nil {
		metrics.RecordPipelineRun("error")
		return nil, err
	}
	metrics.RecordPipelineRun("success")
	return res, nil
}

//nolint:gocyclo // the stage sequence reads best as one function
func (p *Pipeline) run(ctx context.Context, records []Record, ix *Index) (*Result, error) {
	start := time.Now()
	rowsIn := len(records)

	records = FilterMinRatings(records, p.cfg.MinUserRatings, p.cfg.MinItemRatings)
	if len(records) < rowsIn {
		p.logger.Info().
			Int("rows_in", rowsIn).
			Int("rows_kept", len(records)).
			Int("min_user_ratings", p.cfg.MinUserRatings).
			Int("min_item_ratings", p.cfg.MinItemRatings).
			Msg("applied minimum-rating filter")
	}
	metrics.RecordRowsLoaded(len(records))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reused := ix != nil
	if !reused {
		stageStart := time.Now()
		ix = BuildIndex(records)
		metrics.RecordStageDuration("index", time.Since(stageStart))
	}
	p.logger.Info().
		Int("users", ix.NumUsers()).
		Int("items", ix.NumItems()).
		Bool("reused", reused).
		Msg("index maps ready")

	if !reused && p.sink != nil {
		dicts, err := EncodeDicts(ix)
		if err != nil {
			return nil, fmt.Errorf("persist dictionaries: %w", err)
		}
		if err := p.sink.PutDicts(ctx, dicts); err != nil {
			return nil, fmt.Errorf("persist dictionaries: %w", err)
		}
		metrics.RecordDictsPersisted(len(dicts))
		p.logger.Info().Int("dicts", len(dicts)).Msg("persisted index dictionaries")
	}

	userIdx, itemIdx, ratings, err := ix.Encode(records)
	if err != nil {
		return nil, fmt.Errorf("encode records: %w", err)
	}

	stageStart := time.Now()
	matrix, err := BuildAffinityMatrix(ix.NumUsers(), ix.NumItems(), userIdx, itemIdx, ratings)
	if err != nil {
		return nil, fmt.Errorf("build affinity matrix: %w", err)
	}
	metrics.RecordStageDuration("affinity", time.Since(stageStart))

	sparsity := Sparsity(matrix)
	metrics.SetMatrixStats(ix.NumUsers()*ix.NumItems(), sparsity*100)
	p.logger.Info().
		Int("users", ix.NumUsers()).
		Int("items", ix.NumItems()).
		Float64("sparsity_pct", sparsity*100).
		Msg("built affinity matrix")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stageStart = time.Now()
	train, test, err := StratifiedSplit(matrix, p.cfg.Ratio, p.cfg.Seed)
	if err != nil {
		return nil, fmt.Errorf("stratified split: %w", err)
	}
	metrics.RecordStageDuration("split", time.Since(stageStart))

	stageStart = time.Now()
	trainTable, err := MapBackTable(train, ix)
	if err != nil {
		return nil, fmt.Errorf("map back train: %w", err)
	}
	testTable, err := MapBackTable(test, ix)
	if err != nil {
		return nil, fmt.Errorf("map back test: %w", err)
	}
	metrics.RecordStageDuration("inverse", time.Since(stageStart))
	metrics.RecordSplitCells(len(trainTable), len(testTable))

	stats := RunStats{
		RowsIn:     rowsIn,
		RowsKept:   len(records),
		NumUsers:   ix.NumUsers(),
		NumItems:   ix.NumItems(),
		Sparsity:   sparsity,
		TestCut:    int((1 - p.cfg.Ratio) * 100),
		TrainCells: len(trainTable),
		TestCells:  len(testTable),
		Elapsed:    time.Since(start),
	}

	p.logger.Info().
		Int("train_cells", stats.TrainCells).
		Int("test_cells", stats.TestCells).
		Int("test_cut", stats.TestCut).
		Dur("elapsed", stats.Elapsed).
		Msg("split complete")

	return &Result{
		Index:      ix,
		Train:      train,
		Test:       test,
		TrainTable: trainTable,
		TestTable:  testTable,
		Stats:      stats,
	}, nil
}
