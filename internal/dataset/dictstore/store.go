// Strataprep - Stratified Train/Test Preparation for Rating Datasets
// Copyright 2026 Strataprep Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/strataprep/strataprep

// Package dictstore persists index dictionaries in an embedded BadgerDB
// key-value store so that downstream training jobs can translate between
// raw identifiers and matrix positions without re-reading the source table.
//
// The four dictionaries are stored under fixed keys (dataset.UserDictKey,
// dataset.ItemDictKey, dataset.UserBackDictKey, dataset.ItemBackDictKey).
// Downstream consumers depend on these exact names, so the store writes
// them verbatim with no namespacing prefix.
package dictstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/strataprep/strataprep/internal/dataset"
)

// Store is a BadgerDB-backed dictionary store. All four dictionaries for a
// run are written in a single transaction, so readers observe either the
// complete set or none of it.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) a BadgerDB store at the given directory.
//
// Example:
//
//	store, err := dictstore.Open("/data/dicts")
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Suppress BadgerDB internal logs
	// Dictionary blobs are small; shrink the value log from the 1GB default
	opts.ValueLogFileSize = 16 << 20 // 16MB
	// Enable sync writes for durability
	opts.SyncWrites = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for dictionaries: %w", err)
	}

	return &Store{db: db}, nil
}

// NewFromDB creates a Store from an existing BadgerDB connection.
// This is useful when sharing a BadgerDB instance across multiple stores.
func NewFromDB(db *badger.DB) *Store {
	return &Store{db: db}
}

// PutDicts writes all dictionaries in a single transaction. Keys are
// written exactly as given; values are opaque serialized blobs.
func (s *Store) PutDicts(ctx context.Context, dicts map[string][]byte) error {
	if len(dicts) == 0 {
		return errors.New("no dictionaries to store")
	}

	return s.db.Update(func(txn *badger.Txn) error {
		for name, blob := range dicts {
			if name == "" {
				return errors.New("dictionary key cannot be empty")
			}
			if err := txn.Set([]byte(name), blob); err != nil {
				return fmt.Errorf("store dictionary %q: %w", name, err)
			}
		}
		return nil
	})
}

// GetDict retrieves a single dictionary blob by key.
// Returns dataset.ErrDictNotFound if the key doesn't exist.
func (s *Store) GetDict(ctx context.Context, name string) ([]byte, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty key", dataset.ErrDictNotFound)
	}

	var blob []byte

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(name))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s", dataset.ErrDictNotFound, name)
		}
		if err != nil {
			return fmt.Errorf("get dictionary %q: %w", name, err)
		}

		blob, err = item.ValueCopy(nil)
		return err
	})

	if err != nil {
		return nil, err
	}

	return blob, nil
}

// Keys lists dictionary keys currently present in the store. Useful for
// diagnostics when a load fails.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	var keys []string

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, string(it.Item().Key()))
		}
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("scan dictionary keys: %w", err)
	}

	return keys, nil
}

// Close closes the underlying BadgerDB connection.
// Call this when the store is no longer needed.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Compile-time interface assertions
var (
	_ dataset.DictSink   = (*Store)(nil)
	_ dataset.DictSource = (*Store)(nil)
)
