// Driftwood - Personalized Content Discovery
// Copyright 2026 Driftwood Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/driftwood-io/driftwood

package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/driftwood-io/driftwood/internal/discovery"
)

type mockFetcher struct {
	mu         sync.Mutex
	candidates []discovery.Candidate
	err        error
	calls      int
}

func (m *mockFetcher) FetchTrending(ctx context.Context, limit int) ([]discovery.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if limit < len(m.candidates) {
		return m.candidates[:limit], nil
	}
	return m.candidates, nil
}

func (m *mockFetcher) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type mockSnapshotStore struct {
	mu     sync.Mutex
	stored [][]discovery.Candidate
	err    error
}

func (m *mockSnapshotStore) Store(candidates []discovery.Candidate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.stored = append(m.stored, candidates)
	return nil
}

func (m *mockSnapshotStore) storeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.stored)
}

func TestTrendingRefreshStoresSnapshot(t *testing.T) {
	fetcher := &mockFetcher{candidates: []discovery.Candidate{
		{ID: "c1", Domain: "a.com", Trending: 0.9, Active: true},
		{ID: "c2", Domain: "b.com", Trending: 0.8, Active: true},
	}}
	store := &mockSnapshotStore{}
	svc := NewTrendingService(fetcher, store, TrendingServiceConfig{
		RefreshInterval: time.Hour,
		SnapshotSize:    10,
	}, zerolog.Nop())

	if err := svc.refresh(context.Background()); err != nil {
		t.Fatalf("refresh() error = %v", err)
	}
	if store.storeCount() != 1 {
		t.Fatalf("stored %d snapshots, want 1", store.storeCount())
	}
	if len(store.stored[0]) != 2 {
		t.Errorf("snapshot size = %d, want 2", len(store.stored[0]))
	}
}

func TestTrendingRefreshHonorsSnapshotSize(t *testing.T) {
	fetcher := &mockFetcher{candidates: []discovery.Candidate{
		{ID: "c1"}, {ID: "c2"}, {ID: "c3"},
	}}
	store := &mockSnapshotStore{}
	svc := NewTrendingService(fetcher, store, TrendingServiceConfig{
		RefreshInterval: time.Hour,
		SnapshotSize:    2,
	}, zerolog.Nop())

	if err := svc.refresh(context.Background()); err != nil {
		t.Fatalf("refresh() error = %v", err)
	}
	if len(store.stored[0]) != 2 {
		t.Errorf("snapshot size = %d, want the configured bound of 2", len(store.stored[0]))
	}
}

func TestTrendingRefreshFetchFailure(t *testing.T) {
	fetcher := &mockFetcher{err: errors.New("store down")}
	store := &mockSnapshotStore{}
	svc := NewTrendingService(fetcher, store, TrendingServiceConfig{
		RefreshInterval: time.Hour,
	}, zerolog.Nop())

	if err := svc.refresh(context.Background()); err == nil {
		t.Error("refresh() should propagate fetch failure")
	}
	if store.storeCount() != 0 {
		t.Error("nothing should be stored on fetch failure")
	}
}

func TestTrendingServeRefreshesOnStartup(t *testing.T) {
	fetcher := &mockFetcher{candidates: []discovery.Candidate{{ID: "c1"}}}
	store := &mockSnapshotStore{}
	svc := NewTrendingService(fetcher, store, TrendingServiceConfig{
		RefreshInterval: time.Hour,
	}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- svc.Serve(ctx)
	}()

	deadline := time.After(2 * time.Second)
	for store.storeCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("startup refresh never happened")
		case <-time.After(10 * time.Millisecond):
		}
	}
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() error = %v, want context.Canceled", err)
	}
	if fetcher.callCount() != 1 {
		t.Errorf("fetcher called %d times, want once at startup", fetcher.callCount())
	}
}

func TestJanitorEvictsOnTick(t *testing.T) {
	evicter := &mockEvicter{}
	svc := NewJanitorService(evicter, 10*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- svc.Serve(ctx)
	}()

	deadline := time.After(2 * time.Second)
	for evicter.callCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("janitor never ticked")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() error = %v, want context.Canceled", err)
	}
}

type mockEvicter struct {
	mu    sync.Mutex
	calls int
}

func (m *mockEvicter) EvictIdleSessions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return 1
}

func (m *mockEvicter) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
