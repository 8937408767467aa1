// Driftwood - Personalized Content Discovery
// Copyright 2026 Driftwood Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/driftwood-io/driftwood

package discovery

import (
	"context"
	"time"
)

// Candidate is a content item eligible for selection. Candidates are
// immutable snapshots at fetch time; the engine never mutates their fields.
type Candidate struct {
	// ID is the unique content identifier.
	ID string `json:"id"`

	// Domain is the source domain the content was published on.
	Domain string `json:"domain"`

	// Topics is the set of topic tags attached to the content.
	Topics []string `json:"topics"`

	// Quality is the precomputed quality gauge (0-1), supplied by the
	// storage collaborator and used as-is.
	Quality float64 `json:"quality"`

	// Trending is the precomputed, already time-decayed engagement
	// gauge (0-1), supplied by the storage collaborator and used as-is.
	Trending float64 `json:"trending"`

	// Active indicates the item passed moderation review. Anything
	// reaching the engine has Active=true; it is re-checked anyway.
	Active bool `json:"active"`
}

// UserContext carries the per-user inputs to a selection, supplied by the
// preference collaborator.
type UserContext struct {
	// UserID is the user identifier.
	UserID string `json:"user_id"`

	// PreferredTopics is the user's topic preference set. Empty means
	// cold start: topic affinity contributes a neutral constant.
	PreferredTopics []string `json:"preferred_topics"`

	// Wildness is the exploration dial on a 0-100 scale.
	Wildness int `json:"wildness"`

	// BlockedDomains lists domains the user never wants content from.
	// This exclusion is absolute and survives every fallback path.
	BlockedDomains []string `json:"blocked_domains"`
}

// ScoreBreakdown holds the per-factor components of a composite score.
// It is kept on the response for observability and discarded afterwards.
type ScoreBreakdown struct {
	// TopicAffinity is the overlap between candidate and user topics (0-1).
	TopicAffinity float64 `json:"topic_affinity"`

	// Quality is the candidate's quality gauge contribution (0-1).
	Quality float64 `json:"quality"`

	// Trending is the candidate's engagement gauge contribution (0-1).
	Trending float64 `json:"trending"`

	// Novelty is 1 minus the candidate domain's recent appearance
	// frequency in the session's domain window (0-1).
	Novelty float64 `json:"novelty"`
}

// ScoredCandidate pairs a candidate with its composite score. Instances are
// ephemeral: they are computed per request and never cached across requests.
type ScoredCandidate struct {
	// Candidate is the scored content item.
	Candidate Candidate `json:"candidate"`

	// Score is the weighted composite score.
	Score float64 `json:"score"`

	// Breakdown is the per-factor score decomposition.
	Breakdown ScoreBreakdown `json:"breakdown"`
}

// Request identifies one "give me the next item" invocation.
type Request struct {
	// UserID is the user to select content for.
	UserID string `json:"user_id"`

	// SessionID scopes the no-repeat and diversity state.
	SessionID string `json:"session_id"`

	// RequestID is a unique identifier for tracing. Generated if empty.
	RequestID string `json:"request_id,omitempty"`
}

// Selection is the outcome of a successful pick.
type Selection struct {
	// CandidateID is the chosen content identifier.
	CandidateID string `json:"candidate_id"`

	// Domain is the chosen candidate's source domain.
	Domain string `json:"domain"`

	// Score is the composite score of the chosen candidate.
	Score float64 `json:"score"`

	// Breakdown is the diagnostic score decomposition.
	Breakdown ScoreBreakdown `json:"breakdown"`

	// Wildness is the effective (clamped) wildness used for sampling.
	Wildness int `json:"wildness"`

	// FallbackStage names the retrieval fallback that produced the pool,
	// empty when the primary fetch sufficed.
	FallbackStage string `json:"fallback_stage,omitempty"`

	// DiversityRelaxed is true when the pick violated the domain
	// diversity window after resampling was exhausted.
	DiversityRelaxed bool `json:"diversity_relaxed,omitempty"`

	// PoolSize is the number of eligible candidates that were scored.
	PoolSize int `json:"pool_size"`

	// RequestID echoes the request identifier.
	RequestID string `json:"request_id"`

	// SessionID echoes the session identifier.
	SessionID string `json:"session_id"`

	// LatencyMS is the end-to-end selection latency in milliseconds.
	LatencyMS int64 `json:"latency_ms"`

	// Timestamp is when the selection was made.
	Timestamp time.Time `json:"timestamp"`
}

// Impression is the event emitted after a selection is finalized, feeding
// the external interaction-history collaborator.
type Impression struct {
	// UserID is the user the selection was made for.
	UserID string `json:"user_id"`

	// SessionID is the session the selection belongs to.
	SessionID string `json:"session_id"`

	// RequestID is the originating request identifier.
	RequestID string `json:"request_id"`

	// CandidateID is the shown content identifier.
	CandidateID string `json:"candidate_id"`

	// Domain is the shown candidate's source domain.
	Domain string `json:"domain"`

	// Score is the composite score at selection time.
	Score float64 `json:"score"`

	// Wildness is the effective wildness used.
	Wildness int `json:"wildness"`

	// FallbackStage names the retrieval fallback used, if any.
	FallbackStage string `json:"fallback_stage,omitempty"`

	// DiversityRelaxed marks a pick that violated the diversity window.
	DiversityRelaxed bool `json:"diversity_relaxed,omitempty"`

	// Timestamp is when the selection was finalized.
	Timestamp time.Time `json:"timestamp"`
}

// CandidateQuery describes one storage fetch. Exclusions are pushed down to
// the storage collaborator rather than re-filtered after a broad fetch.
type CandidateQuery struct {
	// Topics narrows the fetch to candidates tagged with at least one of
	// these topics. Empty disables narrowing; this is the only relaxable
	// constraint in the fallback ladder.
	Topics []string

	// ExcludedIDs are identifiers already shown in the session. Sized up
	// to the full session history.
	ExcludedIDs []string

	// BlockedDomains are domains that must never be returned.
	BlockedDomains []string

	// Limit bounds the result size.
	Limit int
}

// CandidateSource is the storage collaborator's query contract. Returned
// candidates are active, not excluded, not from blocked domains, and ordered
// by quality descending.
type CandidateSource interface {
	FetchCandidates(ctx context.Context, q CandidateQuery) ([]Candidate, error)
}

// TrendingSource supplies the externally-refreshed globally-trending
// snapshot used as the retrieval fallback. The engine treats it as a
// read-only snapshot; it is never managed or invalidated here.
type TrendingSource interface {
	TrendingSnapshot(ctx context.Context) ([]Candidate, error)
}

// PreferenceProvider is the preference collaborator's contract. The returned
// context is assumed fresh at request time.
type PreferenceProvider interface {
	UserContext(ctx context.Context, userID string) (UserContext, error)
}

// ImpressionRecorder receives one event per finalized selection. Recording
// failures never fail the selection itself.
type ImpressionRecorder interface {
	RecordImpression(ctx context.Context, imp Impression) error
}

// Rand is the injected random source used for sampling. *math/rand.Rand
// satisfies it; tests inject seeded instances for determinism.
type Rand interface {
	Float64() float64
}
