// Driftwood - Personalized Content Discovery
// Copyright 2026 Driftwood Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/driftwood-io/driftwood

// Package trendcache persists the globally-trending candidate snapshot in
// Badger so the retrieval fallback keeps working across restarts and
// through catalog-store outages.
package trendcache

import (
	"context"
	"errors"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/driftwood-io/driftwood/internal/discovery"
	"github.com/driftwood-io/driftwood/internal/metrics"
)

// snapshotKey is the single Badger key holding the current snapshot.
var snapshotKey = []byte("trending:snapshot")

// ErrSnapshotMissing is returned when no snapshot has been stored yet.
var ErrSnapshotMissing = errors.New("trending snapshot not available")

// Cache is a Badger-backed trending snapshot store. It satisfies
// discovery.TrendingSource.
type Cache struct {
	db *badger.DB
}

// storedSnapshot is the persisted envelope around the candidate list.
type storedSnapshot struct {
	Candidates  []discovery.Candidate `json:"candidates"`
	RefreshedAt time.Time             `json:"refreshed_at"`
}

// New opens the cache at path. An empty path runs fully in-memory, which
// tests and ephemeral deployments use.
func New(path string) (*Cache, error) {
	var opts badger.Options
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(path)
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open trend cache: %w", err)
	}
	return &Cache{db: db}, nil
}

// Store replaces the snapshot.
func (c *Cache) Store(candidates []discovery.Candidate) error {
	payload, err := json.Marshal(storedSnapshot{
		Candidates:  candidates,
		RefreshedAt: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	err = c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(snapshotKey, payload)
	})
	if err != nil {
		return fmt.Errorf("store snapshot: %w", err)
	}

	metrics.TrendingSnapshotSize.Set(float64(len(candidates)))
	return nil
}

// TrendingSnapshot returns the current snapshot. It never blocks on the
// catalog store; what was last persisted is what callers get.
func (c *Cache) TrendingSnapshot(ctx context.Context) ([]discovery.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var snap storedSnapshot
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(snapshotKey)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrSnapshotMissing
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &snap)
		})
	})
	if errors.Is(err, ErrSnapshotMissing) {
		// A missing snapshot is an empty fallback, not a failure.
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return snap.Candidates, nil
}

// RefreshedAt returns when the snapshot was last stored.
func (c *Cache) RefreshedAt() (time.Time, error) {
	var snap storedSnapshot
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(snapshotKey)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &snap)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return time.Time{}, ErrSnapshotMissing
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("read snapshot: %w", err)
	}
	return snap.RefreshedAt, nil
}

// Close closes the underlying Badger database.
func (c *Cache) Close() error {
	return c.db.Close()
}
