// Driftwood - Personalized Content Discovery
// Copyright 2026 Driftwood Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/driftwood-io/driftwood

package discovery

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/driftwood-io/driftwood/internal/metrics"
)

// Engine runs the selection pipeline: session exclusions → retrieval →
// scoring → exploration sampling → diversity guard → session record. It is
// safe for concurrent use; requests for distinct sessions proceed without
// coordination, while overlapping requests on one session are serialized by
// that session's lock.
type Engine struct {
	config     *Config
	logger     zerolog.Logger
	retriever  *Retriever
	scorer     *Scorer
	controller *Controller
	guard      *Guard
	sessions   *SessionStore
	prefs      PreferenceProvider

	// impressions is optional; nil disables event publishing.
	impressions ImpressionRecorder

	// rng is the injected sampling source, guarded for concurrent use.
	rng   Rand
	rngMu sync.Mutex

	requestCount     atomic.Int64
	noContentCount   atomic.Int64
	diversityRelaxed atomic.Int64
}

// EngineStats is a point-in-time snapshot of engine counters.
type EngineStats struct {
	// Requests is the total number of selection requests handled.
	Requests int64 `json:"requests"`

	// NoContent counts requests that ended with an empty eligible pool.
	NoContent int64 `json:"no_content"`

	// DiversityRelaxed counts selections that violated the domain window.
	DiversityRelaxed int64 `json:"diversity_relaxed"`

	// ActiveSessions is the number of sessions currently tracked.
	ActiveSessions int `json:"active_sessions"`
}

// NewEngine creates a selection engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, source CandidateSource, trending TrendingSource, prefs PreferenceProvider, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if source == nil {
		return nil, errors.New("candidate source is required")
	}
	if trending == nil {
		return nil, errors.New("trending source is required")
	}
	if prefs == nil {
		return nil, errors.New("preference provider is required")
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	engineLogger := logger.With().Str("component", "engine").Logger()

	return &Engine{
		config:     cfg,
		logger:     engineLogger,
		retriever:  NewRetriever(source, trending, cfg.FetchTimeout, cfg.MinViable, cfg.FetchLimit, logger),
		scorer:     NewScorer(cfg.Weights, cfg.DomainWindow),
		controller: NewController(cfg.TauMax, cfg.Curve),
		guard:      NewGuard(),
		sessions:   NewSessionStore(cfg.DomainWindow),
		prefs:      prefs,
		rng:        rand.New(rand.NewSource(seed)), //nolint:gosec // sampling needs statistical soundness, not crypto
	}, nil
}

// SetImpressionRecorder wires the impression event sink. Optional.
func (e *Engine) SetImpressionRecorder(rec ImpressionRecorder) {
	e.impressions = rec
}

// SetRand replaces the sampling random source. Tests use this with a seeded
// source for byte-for-byte reproducible selections.
func (e *Engine) SetRand(rng Rand) {
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	e.rng = rng
}

// Next selects the next discovery for one user session. It returns the
// chosen candidate with its diagnostic score breakdown, or
// ErrNoContentAvailable when the eligible pool is empty after every
// fallback. Context cancellation aborts without recording a shown mutation.
func (e *Engine) Next(ctx context.Context, req Request) (*Selection, error) {
	start := time.Now()
	e.requestCount.Add(1)

	if req.RequestID == "" {
		req.RequestID = uuid.New().String()
	}
	logger := e.logger.With().
		Str("request_id", req.RequestID).
		Str("user_id", req.UserID).
		Str("session_id", req.SessionID).
		Logger()

	user := e.loadUserContext(ctx, req.UserID, logger)
	wildness := e.effectiveWildness(user, logger)
	metrics.SelectionWildness.Observe(float64(wildness))

	sess := e.sessions.acquireLocked(req.UserID, req.SessionID)
	defer sess.mu.Unlock()

	pool, stage, err := e.buildPool(ctx, user, sess, logger)
	if err != nil {
		e.countOutcome(err)
		return nil, err
	}
	metrics.CandidatePoolSize.Observe(float64(len(pool)))

	window := sess.windowSnapshot()
	scored := e.scorer.ScoreAll(pool, user, window)

	pick, relaxed, err := e.selectWithDiversity(scored, wildness, window, logger)
	if err != nil {
		metrics.SelectionsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("select: %w", err)
	}

	// A cancelled caller never receives the pick, so it must not burn the
	// candidate for the rest of the session.
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	sess.recordShown(pick.Candidate.ID, pick.Candidate.Domain)

	sel := &Selection{
		CandidateID:      pick.Candidate.ID,
		Domain:           pick.Candidate.Domain,
		Score:            pick.Score,
		Breakdown:        pick.Breakdown,
		Wildness:         wildness,
		FallbackStage:    stage,
		DiversityRelaxed: relaxed,
		PoolSize:         len(pool),
		RequestID:        req.RequestID,
		SessionID:        req.SessionID,
		LatencyMS:        time.Since(start).Milliseconds(),
		Timestamp:        time.Now(),
	}

	e.publishImpression(ctx, req, sel)

	metrics.SelectionsTotal.WithLabelValues("ok").Inc()
	metrics.SelectionDuration.Observe(time.Since(start).Seconds())
	logger.Debug().
		Str("candidate_id", sel.CandidateID).
		Str("domain", sel.Domain).
		Float64("score", sel.Score).
		Int("pool", sel.PoolSize).
		Str("fallback", stage).
		Int64("latency_ms", sel.LatencyMS).
		Msg("selection complete")

	return sel, nil
}

// SessionDiagnostics exposes one session's state for the diagnostics
// endpoint.
func (e *Engine) SessionDiagnostics(userID, sessionID string) (SessionDiagnostics, bool) {
	return e.sessions.Diagnostics(userID, sessionID)
}

// EvictIdleSessions discards sessions idle past the configured TTL.
func (e *Engine) EvictIdleSessions() int {
	return e.sessions.EvictIdle(e.config.SessionTTL)
}

// Stats returns a snapshot of engine counters.
func (e *Engine) Stats() EngineStats {
	return EngineStats{
		Requests:         e.requestCount.Load(),
		NoContent:        e.noContentCount.Load(),
		DiversityRelaxed: e.diversityRelaxed.Load(),
		ActiveSessions:   e.sessions.Len(),
	}
}

// loadUserContext fetches preferences, falling back to cold-start defaults
// on any failure. Missing preference data is never fatal.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func (e *Engine) loadUserContext(ctx context.Context, userID string, logger zerolog.Logger) UserContext {
	user, err := e.prefs.UserContext(ctx, userID)
	if err != nil {
		logger.Warn().Err(err).Msg("preferences unavailable, using cold-start defaults")
		return UserContext{UserID: userID, Wildness: e.config.DefaultWildness}
	}
	user.UserID = userID
	return user
}

// effectiveWildness clamps an out-of-range wildness value and logs the
// recovery.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func (e *Engine) effectiveWildness(user UserContext, logger zerolog.Logger) int {
	wildness, clamped := ClampWildness(user.Wildness)
	if clamped {
		metrics.WildnessClampedTotal.Inc()
		logger.Warn().
			Int("requested", user.Wildness).
			Int("effective", wildness).
			Msg("wildness out of range, clamped")
	}
	return wildness
}

// buildPool runs retrieval and applies the final eligibility screen. The
// screen re-checks the absolute constraints (blocked domain, shown-set,
// active flag) on whatever any path returned; a storage bug upstream must
// not leak an ineligible candidate.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func (e *Engine) buildPool(ctx context.Context, user UserContext, sess *sessionState, logger zerolog.Logger) ([]Candidate, string, error) {
	excluded := sess.exclusions()

	fetched, stage, err := e.retriever.Fetch(ctx, user, excluded)
	if err != nil {
		if ctx.Err() != nil {
			return nil, stage, ctx.Err()
		}
		if errors.Is(err, ErrRetrievalTimeout) {
			// Degraded-mode event; the caller only ever sees the
			// distinct empty-pool outcome.
			logger.Error().Err(err).Msg("retrieval failed on all paths")
			return nil, stage, ErrNoContentAvailable
		}
		return nil, stage, err
	}

	blocked := make(map[string]struct{}, len(user.BlockedDomains))
	for _, d := range user.BlockedDomains {
		blocked[d] = struct{}{}
	}

	pool := make([]Candidate, 0, len(fetched))
	for _, c := range fetched {
		if !c.Active {
			continue
		}
		if _, ok := blocked[c.Domain]; ok {
			continue
		}
		if sess.hasShown(c.ID) {
			continue
		}
		pool = append(pool, c)
	}

	if len(pool) == 0 {
		return nil, stage, ErrNoContentAvailable
	}
	return pool, stage, nil
}

// selectWithDiversity samples a pick and re-samples up to the configured
// bound when the diversity guard rejects it. Exhausting the bound accepts
// the last attempted pick with the violation recorded.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func (e *Engine) selectWithDiversity(scored []ScoredCandidate, wildness int, window []string, logger zerolog.Logger) (ScoredCandidate, bool, error) {
	pool := scored
	var pick ScoredCandidate

	for attempt := 0; attempt < e.config.MaxResample; attempt++ {
		var err error
		e.rngMu.Lock()
		pick, err = e.controller.Select(pool, wildness, e.rng)
		e.rngMu.Unlock()
		if err != nil {
			return ScoredCandidate{}, false, err
		}

		if e.guard.Accept(pick.Candidate, window) {
			return pick, false, nil
		}

		metrics.DiversityResamplesTotal.Inc()
		pool = withoutCandidate(pool, pick.Candidate.ID)
		if len(pool) == 0 {
			break
		}
	}

	// Diversity is a soft constraint: the pool can't satisfy the window,
	// so the last attempted pick goes through with the violation counted.
	e.diversityRelaxed.Add(1)
	metrics.DiversityRelaxedTotal.Inc()
	logger.Warn().
		Str("domain", pick.Candidate.Domain).
		Strs("window", window).
		Msg("diversity window relaxed")
	return pick, true, nil
}

// publishImpression emits the finalized selection to the impression sink.
// Fire-and-forget: failures are logged and counted, never surfaced.
func (e *Engine) publishImpression(ctx context.Context, req Request, sel *Selection) {
	if e.impressions == nil {
		return
	}

	imp := Impression{
		UserID:           req.UserID,
		SessionID:        req.SessionID,
		RequestID:        req.RequestID,
		CandidateID:      sel.CandidateID,
		Domain:           sel.Domain,
		Score:            sel.Score,
		Wildness:         sel.Wildness,
		FallbackStage:    sel.FallbackStage,
		DiversityRelaxed: sel.DiversityRelaxed,
		Timestamp:        sel.Timestamp,
	}

	logger := e.logger
	go func() {
		pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := e.impressions.RecordImpression(pubCtx, imp); err != nil {
			metrics.ImpressionsPublishedTotal.WithLabelValues("error").Inc()
			logger.Warn().Err(err).Str("candidate_id", imp.CandidateID).Msg("impression publish failed")
			return
		}
		metrics.ImpressionsPublishedTotal.WithLabelValues("ok").Inc()
	}()
}

// countOutcome tallies a failed selection by kind.
func (e *Engine) countOutcome(err error) {
	switch {
	case errors.Is(err, ErrNoContentAvailable):
		e.noContentCount.Add(1)
		metrics.SelectionsTotal.WithLabelValues("no_content").Inc()
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		// Abandoned by the caller; not an engine failure.
	default:
		metrics.SelectionsTotal.WithLabelValues("error").Inc()
	}
}

// withoutCandidate returns the pool minus one identifier.
func withoutCandidate(pool []ScoredCandidate, id string) []ScoredCandidate {
	out := make([]ScoredCandidate, 0, len(pool)-1)
	for _, sc := range pool {
		if sc.Candidate.ID != id {
			out = append(out, sc)
		}
	}
	return out
}
