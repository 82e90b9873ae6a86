// Strataprep - Stratified Train/Test Preparation for Rating Datasets
// Copyright 2026 Strataprep Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/strataprep/strataprep

package dataset

import "fmt"

// Index holds the bijective mappings between raw identifiers and
// contiguous zero-based matrix indices, one pair of maps per axis.
//
// Users and Items are the forward maps (identifier to index); BackUsers
// and BackItems are the backward maps (index to identifier, addressed by
// position). An Index is built once per dataset and never mutated
// afterwards; it may be persisted through a DictSink and reloaded to
// encode later tables consistently.
type Index struct {
	Users     map[string]int
	Items     map[string]int
	BackUsers []string
	BackItems []string
}

// BuildIndex assigns a contiguous index to every distinct user and item
// identifier, in order of first appearance in records. Every observed
// identifier appears exactly once on each side of the bijection; nothing
// is dropped or invented. An empty input yields an empty Index, not an
// error.
func BuildIndex(records []Record) *Index {
	ix := &Index{
		Users: make(map[string]int),
		Items: make(map[string]int),
	}

	for _, rec := range records {
		if _, ok := ix.Users[rec.User]; !ok {
			ix.Users[rec.User] = len(ix.BackUsers)
			ix.BackUsers = append(ix.BackUsers, rec.User)
		}
		if _, ok := ix.Items[rec.Item]; !ok {
			ix.Items[rec.Item] = len(ix.BackItems)
			ix.BackItems = append(ix.BackItems, rec.Item)
		}
	}

	return ix
}

// NumUsers returns the count of distinct user identifiers.
func (ix *Index) NumUsers() int {
	return len(ix.BackUsers)
}

// NumItems returns the count of distinct item identifiers.
func (ix *Index) NumItems() int {
	return len(ix.BackItems)
}

// UserAt returns the raw user identifier for a matrix row index.
func (ix *Index) UserAt(row int) (string, error) {
	if row < 0 || row >= len(ix.BackUsers) {
		return "", fmt.Errorf("user index %d: %w", row, ErrUnknownIndex)
	}
	return ix.BackUsers[row], nil
}

// ItemAt returns the raw item identifier for a matrix column index.
func (ix *Index) ItemAt(col int) (string, error) {
	if col < 0 || col >= len(ix.BackItems) {
		return "", fmt.Errorf("item index %d: %w", col, ErrUnknownIndex)
	}
	return ix.BackItems[col], nil
}

// Encode translates records into the parallel index/rating slices consumed
// by BuildAffinityMatrix. A record whose user or item is absent from the
// forward maps is ErrUnknownIdentifier; this cannot happen when the Index
// was built from the same records, only when encoding under a reloaded
// index that predates them.
func (ix *Index) Encode(records []Record) (users, items []int, ratings []float64, err error) {
	users = make([]int, 0, len(records))
	items = make([]int, 0, len(records))
	ratings = make([]float64, 0, len(records))

	for _, rec := range records {
		u, ok := ix.Users[rec.User]
		if !ok {
			return nil, nil, nil, fmt.Errorf("user %q: %w", rec.User, ErrUnknownIdentifier)
		}
		i, ok := ix.Items[rec.Item]
		if !ok {
			return nil, nil, nil, fmt.Errorf("item %q: %w", rec.Item, ErrUnknownIdentifier)
		}

		users = append(users, u)
		items = append(items, i)
		ratings = append(ratings, rec.Rating)
	}

	return users, items, ratings, nil
}

// Validate checks that the forward and backward maps describe the same
// bijection. Fresh indices always pass; it guards indices reassembled
// from persisted dictionaries.
func (ix *Index) Validate() error {
	if len(ix.Users) != len(ix.BackUsers) {
		return fmt.Errorf("user maps disagree: %d forward, %d backward", len(ix.Users), len(ix.BackUsers))
	}
	if len(ix.Items) != len(ix.BackItems) {
		return fmt.Errorf("item maps disagree: %d forward, %d backward", len(ix.Items), len(ix.BackItems))
	}

	for row, user := range ix.BackUsers {
		if got, ok := ix.Users[user]; !ok || got != row {
			return fmt.Errorf("user %q maps to %d, backward map says %d", user, got, row)
		}
	}
	for col, item := range ix.BackItems {
		if got, ok := ix.Items[item]; !ok || got != col {
			return fmt.Errorf("item %q maps to %d, backward map says %d", item, got, col)
		}
	}

	return nil
}
