// Tribe Engine - Liebefeld Community Event Personalization
// Copyright 2026 Liebefeld Tribe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/liebefeld/tribe-engine

package kv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/liebefeld/tribe-engine/internal/logging"
)

// BadgerStore implements Store using BadgerDB for durable storage.
// Suitable for production use with persistence across restarts.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadger opens (or creates) a BadgerDB database at the given path.
func OpenBadger(path string) (*badger.DB, error) {
	if err := os.MkdirAll(path, 0o750); err != nil { //nolint:gosec // 0750 is acceptable for local storage
		return nil, fmt.Errorf("create storage directory: %w", err)
	}

	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return db, nil
}

// NewBadgerStore creates a new BadgerDB-backed key-value store.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

// Get returns the stored value for key. Absent keys and read failures both
// report ok=false; read failures are logged but never surfaced.
func (s *BadgerStore) Get(key string) (string, bool) {
	var value []byte

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			value = append([]byte(nil), val...)
			return nil
		})
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false
	}
	if err != nil {
		logging.Warn().Err(err).Str("key", key).Msg("storage read failed, treating as empty")
		return "", false
	}

	return string(value), true
}

// Set durably stores value under key.
func (s *BadgerStore) Set(key, value string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// GCService periodically runs BadgerDB value-log garbage collection.
// It implements suture.Service so the supervisor restarts it on failure.
type GCService struct {
	db       *badger.DB
	interval time.Duration
}

// NewGCService creates a garbage collection service for the given database.
// An interval of zero defaults to 10 minutes.
func NewGCService(db *badger.DB, interval time.Duration) *GCService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &GCService{db: db, interval: interval}
}

// Serve runs value-log GC on the configured interval until ctx is canceled.
func (g *GCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			// Badger returns ErrNoRewrite when there is nothing to collect.
			err := g.db.RunValueLogGC(0.5)
			if err != nil && !errors.Is(err, badger.ErrNoRewrite) {
				logging.Warn().Err(err).Msg("badger value log GC failed")
			}
		}
	}
}

// String implements fmt.Stringer for supervisor logging.
func (g *GCService) String() string {
	return "badger-gc"
}
