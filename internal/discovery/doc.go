// Driftwood - Personalized Content Discovery
// Copyright 2026 Driftwood Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/driftwood-io/driftwood

// Package discovery implements the personalized discovery selection engine:
// given a user's taste profile and a wildness dial, it picks the next item
// to surface from a pool of eligible content.
//
// The pipeline per request:
//
//	session exclusions → Retriever → Scorer → Controller → Guard → record
//
// Candidate retrieval pushes exclusion filtering down to the storage
// collaborator and degrades through a fallback ladder (relax topic
// narrowing, then the cached trending snapshot) before reporting
// ErrNoContentAvailable. Scoring is a deterministic weighted blend of topic
// affinity, quality, trending, and domain novelty. The exploration
// controller softmax-samples over the scored pool at a temperature derived
// from wildness, and the diversity guard resamples picks that would repeat
// a recently shown source domain.
//
// Two exclusions are absolute and survive every fallback: a user's blocked
// domains, and identifiers already shown in the session. Domain diversity,
// by contrast, is best-effort and observable when relaxed.
//
// This package has no dependencies on the storage or transport packages;
// collaborators are injected through the CandidateSource, TrendingSource,
// PreferenceProvider, and ImpressionRecorder interfaces.
package discovery
