// Driftwood - Personalized Content Discovery
// Copyright 2026 Driftwood Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/driftwood-io/driftwood

package discovery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/driftwood-io/driftwood/internal/metrics"
)

// Retrieval fallback stages, in escalation order.
const (
	// FallbackNone means the primary, topic-narrowed fetch sufficed.
	FallbackNone = ""

	// FallbackTopicRelaxed means topic narrowing was dropped to widen the
	// pool. Domain blocks and the active-only constraint are never relaxed.
	FallbackTopicRelaxed = "topic_relaxed"

	// FallbackTrending means the cached globally-trending snapshot was
	// used, after a storage failure or an insufficient filtered fetch.
	FallbackTrending = "trending"
)

// Retriever fetches a bounded, pre-filtered candidate pool and owns the
// fallback ladder. The primary fetch is bounded by a timeout and protected
// by a circuit breaker; an open breaker short-circuits straight to the
// trending snapshot instead of hammering a struggling store.
type Retriever struct {
	source    CandidateSource
	trending  TrendingSource
	breaker   *gobreaker.CircuitBreaker[[]Candidate]
	timeout   time.Duration
	minViable int
	limit     int
	logger    zerolog.Logger
}

// NewRetriever creates a retriever.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRetriever(source CandidateSource, trending TrendingSource, timeout time.Duration, minViable, limit int, logger zerolog.Logger) *Retriever {
	breaker := gobreaker.NewCircuitBreaker[[]Candidate](gobreaker.Settings{
		Name:    "candidate-fetch",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	return &Retriever{
		source:    source,
		trending:  trending,
		breaker:   breaker,
		timeout:   timeout,
		minViable: minViable,
		limit:     limit,
		logger:    logger.With().Str("component", "retriever").Logger(),
	}
}

// Fetch returns the eligible candidate pool for one selection, the fallback
// stage that produced it, and an error only when every path came up empty or
// failed. excluded must include the session's full shown-set.
func (r *Retriever) Fetch(ctx context.Context, user UserContext, excluded []string) ([]Candidate, string, error) {
	q := CandidateQuery{
		Topics:         user.PreferredTopics,
		ExcludedIDs:    excluded,
		BlockedDomains: user.BlockedDomains,
		Limit:          r.limit,
	}

	primary, err := r.fetchWithBudget(ctx, q)
	if err != nil {
		if ctx.Err() != nil && errors.Is(err, context.Canceled) {
			// Caller abandoned the request; no fallback.
			return nil, FallbackNone, err
		}
		r.countFetchFailure(err)
		r.logger.Warn().Err(err).Msg("primary fetch failed, degrading to trending snapshot")
		return r.fetchTrending(ctx, user, excluded, err)
	}

	narrowed := len(user.PreferredTopics) > 0
	if len(primary) >= r.minViable || (!narrowed && len(primary) > 0) {
		return primary, FallbackNone, nil
	}

	// Step 1: relax topic narrowing. Domain blocks and active-only are
	// untouchable.
	relaxed := primary
	stage := FallbackNone
	if narrowed {
		q.Topics = nil
		relaxed, err = r.fetchWithBudget(ctx, q)
		if err != nil {
			r.countFetchFailure(err)
			r.logger.Warn().Err(err).Msg("relaxed fetch failed, degrading to trending snapshot")
			return r.fetchTrending(ctx, user, excluded, err)
		}
		stage = FallbackTopicRelaxed
		metrics.RetrievalFallbacksTotal.WithLabelValues(FallbackTopicRelaxed).Inc()
		if len(relaxed) >= r.minViable {
			r.logger.Debug().Int("pool", len(relaxed)).Msg("topic narrowing relaxed")
			return relaxed, stage, nil
		}
	}

	// Step 2: cached globally-trending set, regardless of topic.
	trending, terr := r.filteredTrending(ctx, user, excluded)
	if terr == nil && len(trending) > 0 {
		metrics.RetrievalFallbacksTotal.WithLabelValues(FallbackTrending).Inc()
		r.logger.Debug().Int("pool", len(trending)).Msg("trending fallback used")
		return trending, FallbackTrending, nil
	}

	// The trending snapshot was empty or unreadable; an undersized pool
	// from the earlier steps is still a real pool.
	if len(relaxed) > 0 {
		return relaxed, stage, nil
	}
	if terr != nil {
		return nil, FallbackNone, fmt.Errorf("trending fallback: %w", errors.Join(ErrRetrievalTimeout, terr))
	}
	return nil, FallbackNone, ErrNoContentAvailable
}

// fetchWithBudget runs one storage fetch under the configured timeout and
// the circuit breaker.
func (r *Retriever) fetchWithBudget(ctx context.Context, q CandidateQuery) ([]Candidate, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	return r.breaker.Execute(func() ([]Candidate, error) {
		return r.source.FetchCandidates(fetchCtx, q)
	})
}

// fetchTrending is the degraded path after a primary-fetch failure. If the
// snapshot itself is unusable the failure propagates as ErrRetrievalTimeout.
func (r *Retriever) fetchTrending(ctx context.Context, user UserContext, excluded []string, cause error) ([]Candidate, string, error) {
	trending, err := r.filteredTrending(ctx, user, excluded)
	if err != nil {
		return nil, FallbackNone, fmt.Errorf("trending fallback after fetch failure: %w", errors.Join(ErrRetrievalTimeout, cause, err))
	}
	if len(trending) == 0 {
		return nil, FallbackNone, ErrNoContentAvailable
	}
	metrics.RetrievalFallbacksTotal.WithLabelValues(FallbackTrending).Inc()
	return trending, FallbackTrending, nil
}

// filteredTrending reads the trending snapshot and applies the exclusions
// the snapshot cannot know about. Blocked domains and shown identifiers are
// filtered here because the snapshot is global, never per-user.
func (r *Retriever) filteredTrending(ctx context.Context, user UserContext, excluded []string) ([]Candidate, error) {
	snapshot, err := r.trending.TrendingSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	blocked := make(map[string]struct{}, len(user.BlockedDomains))
	for _, d := range user.BlockedDomains {
		blocked[d] = struct{}{}
	}
	seen := make(map[string]struct{}, len(excluded))
	for _, id := range excluded {
		seen[id] = struct{}{}
	}

	eligible := make([]Candidate, 0, len(snapshot))
	for _, c := range snapshot {
		if !c.Active {
			continue
		}
		if _, ok := blocked[c.Domain]; ok {
			continue
		}
		if _, ok := seen[c.ID]; ok {
			continue
		}
		eligible = append(eligible, c)
	}
	return eligible, nil
}

// countFetchFailure classifies a primary-path failure for observability.
func (r *Retriever) countFetchFailure(err error) {
	if errors.Is(err, context.DeadlineExceeded) {
		metrics.RetrievalTimeoutsTotal.Inc()
		return
	}
	metrics.RetrievalErrorsTotal.Inc()
}
