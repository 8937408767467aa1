// Driftwood - Personalized Content Discovery
// Copyright 2026 Driftwood Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/driftwood-io/driftwood

package discovery

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// fakeSource serves candidates honoring the query contract, so retriever
// tests can distinguish the fallback stages by what was asked for.
type fakeSource struct {
	candidates []Candidate
	err        error
	slow       time.Duration
	queries    []CandidateQuery
}

func (f *fakeSource) FetchCandidates(ctx context.Context, q CandidateQuery) ([]Candidate, error) {
	f.queries = append(f.queries, q)
	if f.slow > 0 {
		select {
		case <-time.After(f.slow):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}

	topics := make(map[string]struct{}, len(q.Topics))
	for _, t := range q.Topics {
		topics[t] = struct{}{}
	}
	blocked := make(map[string]struct{}, len(q.BlockedDomains))
	for _, d := range q.BlockedDomains {
		blocked[d] = struct{}{}
	}
	excluded := make(map[string]struct{}, len(q.ExcludedIDs))
	for _, id := range q.ExcludedIDs {
		excluded[id] = struct{}{}
	}

	var out []Candidate
	for _, c := range f.candidates {
		if !c.Active {
			continue
		}
		if _, ok := blocked[c.Domain]; ok {
			continue
		}
		if _, ok := excluded[c.ID]; ok {
			continue
		}
		if len(topics) > 0 {
			match := false
			for _, t := range c.Topics {
				if _, ok := topics[t]; ok {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, c)
		if q.Limit > 0 && len(out) >= q.Limit {
			break
		}
	}
	return out, nil
}

type fakeTrending struct {
	snapshot []Candidate
	err      error
}

func (f *fakeTrending) TrendingSnapshot(ctx context.Context) ([]Candidate, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.snapshot, nil
}

func candidateSet() []Candidate {
	return []Candidate{
		{ID: "c1", Domain: "a.com", Topics: []string{"jazz"}, Quality: 0.9, Active: true},
		{ID: "c2", Domain: "a.com", Topics: []string{"jazz"}, Quality: 0.8, Active: true},
		{ID: "c3", Domain: "b.com", Topics: []string{"jazz"}, Quality: 0.7, Active: true},
		{ID: "c4", Domain: "b.com", Topics: []string{"rock"}, Quality: 0.6, Active: true},
		{ID: "c5", Domain: "c.com", Topics: []string{"rock"}, Quality: 0.5, Active: true},
		{ID: "c6", Domain: "c.com", Topics: []string{"folk"}, Quality: 0.4, Active: true},
	}
}

func newTestRetriever(source CandidateSource, trending TrendingSource, minViable int) *Retriever {
	return NewRetriever(source, trending, time.Second, minViable, 50, zerolog.Nop())
}

func TestRetrieverPrimaryPath(t *testing.T) {
	source := &fakeSource{candidates: candidateSet()}
	r := newTestRetriever(source, &fakeTrending{}, 3)

	pool, stage, err := r.Fetch(context.Background(), UserContext{
		UserID:          "u1",
		PreferredTopics: []string{"jazz"},
	}, nil)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if stage != FallbackNone {
		t.Errorf("stage = %q, want primary", stage)
	}
	if len(pool) != 3 {
		t.Errorf("pool size = %d, want 3", len(pool))
	}
}

func TestRetrieverTopicRelaxation(t *testing.T) {
	source := &fakeSource{candidates: candidateSet()}
	r := newTestRetriever(source, &fakeTrending{}, 5)

	// Only one folk candidate exists; relaxing topics widens the pool.
	pool, stage, err := r.Fetch(context.Background(), UserContext{
		UserID:          "u1",
		PreferredTopics: []string{"folk"},
	}, nil)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if stage != FallbackTopicRelaxed {
		t.Errorf("stage = %q, want %q", stage, FallbackTopicRelaxed)
	}
	if len(pool) != 6 {
		t.Errorf("pool size = %d, want 6", len(pool))
	}
	if len(source.queries) != 2 {
		t.Fatalf("source queried %d times, want 2", len(source.queries))
	}
	if len(source.queries[1].Topics) != 0 {
		t.Error("relaxed query must drop topic narrowing")
	}
	if len(source.queries[1].BlockedDomains) != len(source.queries[0].BlockedDomains) {
		t.Error("relaxed query must keep domain blocks")
	}
}

func TestRetrieverRelaxationKeepsDomainBlocks(t *testing.T) {
	source := &fakeSource{candidates: candidateSet()}
	r := newTestRetriever(source, &fakeTrending{}, 5)

	pool, _, err := r.Fetch(context.Background(), UserContext{
		UserID:          "u1",
		PreferredTopics: []string{"folk"},
		BlockedDomains:  []string{"a.com"},
	}, nil)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	for _, c := range pool {
		if c.Domain == "a.com" {
			t.Fatalf("blocked domain leaked through relaxation: %s", c.ID)
		}
	}
}

func TestRetrieverTrendingAfterFetchFailure(t *testing.T) {
	source := &fakeSource{err: errors.New("store down")}
	trending := &fakeTrending{snapshot: candidateSet()}
	r := newTestRetriever(source, trending, 3)

	pool, stage, err := r.Fetch(context.Background(), UserContext{UserID: "u1"}, nil)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if stage != FallbackTrending {
		t.Errorf("stage = %q, want %q", stage, FallbackTrending)
	}
	if len(pool) != 6 {
		t.Errorf("pool size = %d, want 6", len(pool))
	}
}

func TestRetrieverTrendingAfterTimeout(t *testing.T) {
	source := &fakeSource{candidates: candidateSet(), slow: 500 * time.Millisecond}
	trending := &fakeTrending{snapshot: candidateSet()}
	r := NewRetriever(source, trending, 50*time.Millisecond, 3, 50, zerolog.Nop())

	pool, stage, err := r.Fetch(context.Background(), UserContext{UserID: "u1"}, nil)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if stage != FallbackTrending {
		t.Errorf("stage = %q, want %q", stage, FallbackTrending)
	}
	if len(pool) == 0 {
		t.Error("expected trending pool after timeout")
	}
}

func TestRetrieverTrendingFiltersExclusions(t *testing.T) {
	source := &fakeSource{err: errors.New("store down")}
	trending := &fakeTrending{snapshot: []Candidate{
		{ID: "c1", Domain: "a.com", Active: true},
		{ID: "c2", Domain: "blocked.com", Active: true},
		{ID: "c3", Domain: "b.com", Active: false},
		{ID: "c4", Domain: "b.com", Active: true},
	}}
	r := newTestRetriever(source, trending, 3)

	pool, _, err := r.Fetch(context.Background(), UserContext{
		UserID:         "u1",
		BlockedDomains: []string{"blocked.com"},
	}, []string{"c4"})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(pool) != 1 || pool[0].ID != "c1" {
		t.Errorf("pool = %v, want only c1", pool)
	}
}

func TestRetrieverAllPathsEmpty(t *testing.T) {
	source := &fakeSource{}
	r := newTestRetriever(source, &fakeTrending{}, 3)

	_, _, err := r.Fetch(context.Background(), UserContext{UserID: "u1"}, nil)
	if !errors.Is(err, ErrNoContentAvailable) {
		t.Errorf("Fetch() error = %v, want ErrNoContentAvailable", err)
	}
}

func TestRetrieverFetchAndTrendingBothFail(t *testing.T) {
	source := &fakeSource{err: errors.New("store down")}
	trending := &fakeTrending{err: errors.New("cache down")}
	r := newTestRetriever(source, trending, 3)

	_, _, err := r.Fetch(context.Background(), UserContext{UserID: "u1"}, nil)
	if !errors.Is(err, ErrRetrievalTimeout) {
		t.Errorf("Fetch() error = %v, want ErrRetrievalTimeout", err)
	}
}

func TestRetrieverUndersizedPoolStillReturned(t *testing.T) {
	source := &fakeSource{candidates: candidateSet()[:2]}
	r := newTestRetriever(source, &fakeTrending{}, 5)

	pool, _, err := r.Fetch(context.Background(), UserContext{
		UserID:          "u1",
		PreferredTopics: []string{"jazz"},
	}, nil)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(pool) != 2 {
		t.Errorf("pool size = %d, want the undersized pool of 2", len(pool))
	}
}

func TestRetrieverCancellationStopsFallback(t *testing.T) {
	source := &fakeSource{candidates: candidateSet(), slow: time.Second}
	trending := &fakeTrending{snapshot: candidateSet()}
	r := newTestRetriever(source, trending, 3)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, _, err := r.Fetch(ctx, UserContext{UserID: "u1"}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Fetch() error = %v, want context.Canceled", err)
	}
}
