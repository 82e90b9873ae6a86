// Strataprep - Stratified Train/Test Preparation for Rating Datasets
// Copyright 2026 Strataprep Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/strataprep/strataprep

package dataset

import (
	"context"
	"fmt"

	json "github.com/goccy/go-json"
)

// Fixed logical keys under which the four index dictionaries are
// persisted. Consumers in other languages and tools address the maps by
// these names, so they never change.
const (
	UserDictKey     = "user_dict"
	ItemDictKey     = "item_dict"
	UserBackDictKey = "user_back_dict"
	ItemBackDictKey = "item_back_dict"
)

// DictNames lists the four keys in write order.
var DictNames = []string{UserDictKey, ItemDictKey, UserBackDictKey, ItemBackDictKey}

// DictSink persists serialized dictionary blobs under their fixed keys.
// The pipeline hands all four over in one call so implementations can
// write them atomically.
type DictSink interface {
	PutDicts(ctx context.Context, dicts map[string][]byte) error
}

// DictSource retrieves previously persisted dictionary blobs. A missing
// key is ErrDictNotFound.
type DictSource interface {
	GetDict(ctx context.Context, name string) ([]byte, error)
}

// EncodeDicts serializes the four maps of ix under their fixed keys.
// Forward maps serialize as JSON objects, backward maps as JSON arrays
// (position encodes the index).
func EncodeDicts(ix *Index) (map[string][]byte, error) {
	dicts := make(map[string][]byte, len(DictNames))

	for name, v := range map[string]any{
		UserDictKey:     ix.Users,
		ItemDictKey:     ix.Items,
		UserBackDictKey: ix.BackUsers,
		ItemBackDictKey: ix.BackItems,
	} {
		blob, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", name, err)
		}
		dicts[name] = blob
	}

	return dicts, nil
}

// DecodeDicts reassembles an Index from blobs written by EncodeDicts and
// verifies the forward and backward maps still describe one bijection.
func DecodeDicts(dicts map[string][]byte) (*Index, error) {
	ix := &Index{}

	for name, v := range map[string]any{
		UserDictKey:     &ix.Users,
		ItemDictKey:     &ix.Items,
		UserBackDictKey: &ix.BackUsers,
		ItemBackDictKey: &ix.BackItems,
	} {
		blob, ok := dicts[name]
		if !ok {
			return nil, fmt.Errorf("%s: %w", name, ErrDictNotFound)
		}
		if err := json.Unmarshal(blob, v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
	}

	if ix.Users == nil {
		ix.Users = make(map[string]int)
	}
	if ix.Items == nil {
		ix.Items = make(map[string]int)
	}

	if err := ix.Validate(); err != nil {
		return nil, fmt.Errorf("persisted dictionaries are inconsistent: %w", err)
	}

	return ix, nil
}

// LoadIndex fetches the four dictionaries from src and reassembles the
// Index they describe. The reloaded Index encodes identifiers exactly as
// the one persisted, so earlier matrix artifacts stay addressable.
func LoadIndex(ctx context.Context, src DictSource) (*Index, error) {
	dicts := make(map[string][]byte, len(DictNames))

	for _, name := range DictNames {
		blob, err := src.GetDict(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", name, err)
		}
		dicts[name] = blob
	}

	return DecodeDicts(dicts)
}
