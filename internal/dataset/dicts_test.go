// Strataprep - Stratified Train/Test Preparation for Rating Datasets
// Copyright 2026 Strataprep Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/strataprep/strataprep

package dataset

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
)

// mapSource is an in-memory DictSource for tests.
type mapSource map[string][]byte

func (m mapSource) GetDict(_ context.Context, name string) ([]byte, error) {
	blob, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrDictNotFound)
	}
	return blob, nil
}

func TestEncodeDicts_Keys(t *testing.T) {
	t.Parallel()

	ix := BuildIndex([]Record{{User: "u1", Item: "i1", Rating: 5}})

	dicts, err := EncodeDicts(ix)
	if err != nil {
		t.Fatalf("EncodeDicts() error: %v", err)
	}

	if len(dicts) != len(DictNames) {
		t.Fatalf("EncodeDicts() produced %d blobs, want %d", len(dicts), len(DictNames))
	}
	for _, name := range DictNames {
		if _, ok := dicts[name]; !ok {
			t.Errorf("missing dictionary %q", name)
		}
	}
}

func TestEncodeDecodeDicts_RoundTrip(t *testing.T) {
	t.Parallel()

	ix := BuildIndex([]Record{
		{User: "u2", Item: "i3", Rating: 5},
		{User: "u1", Item: "i1", Rating: 3},
		{User: "u2", Item: "i1", Rating: 4},
	})

	dicts, err := EncodeDicts(ix)
	if err != nil {
		t.Fatalf("EncodeDicts() error: %v", err)
	}

	got, err := DecodeDicts(dicts)
	if err != nil {
		t.Fatalf("DecodeDicts() error: %v", err)
	}

	if !reflect.DeepEqual(got, ix) {
		t.Errorf("decoded index = %+v, want %+v", got, ix)
	}
}

func TestEncodeDecodeDicts_EmptyIndex(t *testing.T) {
	t.Parallel()

	dicts, err := EncodeDicts(BuildIndex(nil))
	if err != nil {
		t.Fatalf("EncodeDicts() error: %v", err)
	}

	got, err := DecodeDicts(dicts)
	if err != nil {
		t.Fatalf("DecodeDicts() error: %v", err)
	}

	if got.NumUsers() != 0 || got.NumItems() != 0 {
		t.Errorf("decoded empty index has %d users, %d items", got.NumUsers(), got.NumItems())
	}
	if got.Users == nil || got.Items == nil {
		t.Error("decoded forward maps should be empty, not nil")
	}
}

func TestDecodeDicts_MissingKey(t *testing.T) {
	t.Parallel()

	dicts, err := EncodeDicts(BuildIndex([]Record{{User: "u1", Item: "i1", Rating: 5}}))
	if err != nil {
		t.Fatalf("EncodeDicts() error: %v", err)
	}
	delete(dicts, ItemBackDictKey)

	_, err = DecodeDicts(dicts)
	if !errors.Is(err, ErrDictNotFound) {
		t.Errorf("DecodeDicts() error = %v, want ErrDictNotFound", err)
	}
}

func TestDecodeDicts_CorruptBlob(t *testing.T) {
	t.Parallel()

	dicts, err := EncodeDicts(BuildIndex([]Record{{User: "u1", Item: "i1", Rating: 5}}))
	if err != nil {
		t.Fatalf("EncodeDicts() error: %v", err)
	}
	dicts[UserDictKey] = []byte("{not json")

	if _, err := DecodeDicts(dicts); err == nil {
		t.Error("DecodeDicts() = nil error for corrupt blob")
	}
}

func TestDecodeDicts_InconsistentMaps(t *testing.T) {
	t.Parallel()

	// Forward map says u1 is row 0, backward map says row 0 is u2.
	dicts := map[string][]byte{
		UserDictKey:     []byte(`{"u1":0}`),
		ItemDictKey:     []byte(`{"i1":0}`),
		UserBackDictKey: []byte(`["u2"]`),
		ItemBackDictKey: []byte(`["i1"]`),
	}

	if _, err := DecodeDicts(dicts); err == nil {
		t.Error("DecodeDicts() = nil error for inconsistent maps")
	}
}

func TestLoadIndex(t *testing.T) {
	t.Parallel()

	ix := BuildIndex([]Record{
		{User: "u1", Item: "i1", Rating: 5},
		{User: "u2", Item: "i2", Rating: 4},
	})
	dicts, err := EncodeDicts(ix)
	if err != nil {
		t.Fatalf("EncodeDicts() error: %v", err)
	}

	got, err := LoadIndex(context.Background(), mapSource(dicts))
	if err != nil {
		t.Fatalf("LoadIndex() error: %v", err)
	}
	if !reflect.DeepEqual(got, ix) {
		t.Errorf("loaded index = %+v, want %+v", got, ix)
	}
}

func TestLoadIndex_MissingDict(t *testing.T) {
	t.Parallel()

	_, err := LoadIndex(context.Background(), mapSource{})
	if !errors.Is(err, ErrDictNotFound) {
		t.Errorf("LoadIndex() error = %v, want ErrDictNotFound", err)
	}
}
