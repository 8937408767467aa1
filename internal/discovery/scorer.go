// Driftwood - Personalized Content Discovery
// Copyright 2026 Driftwood Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/driftwood-io/driftwood

package discovery

// coldStartAffinity is the neutral topic affinity used when the user has no
// recorded topic preferences, so no topic is systematically favored.
const coldStartAffinity = 0.5

// Weights defines the relative contribution of each scoring factor.
type Weights struct {
	// TopicAffinity weights the candidate/user topic overlap.
	TopicAffinity float64 `json:"topic_affinity"`

	// Quality weights the precomputed quality gauge.
	Quality float64 `json:"quality"`

	// Trending weights the precomputed engagement gauge.
	Trending float64 `json:"trending"`

	// Novelty weights the domain novelty relative to the session window.
	Novelty float64 `json:"novelty"`
}

// DefaultWeights returns an even split across the four factors.
func DefaultWeights() Weights {
	return Weights{TopicAffinity: 0.25, Quality: 0.25, Trending: 0.25, Novelty: 0.25}
}

// Normalize returns a copy with weights scaled to sum to 1.0.
// An all-zero input falls back to the even default split.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (w Weights) Normalize() Weights {
	sum := w.TopicAffinity + w.Quality + w.Trending + w.Novelty
	if sum == 0 {
		return DefaultWeights()
	}
	return Weights{
		TopicAffinity: w.TopicAffinity / sum,
		Quality:       w.Quality / sum,
		Trending:      w.Trending / sum,
		Novelty:       w.Novelty / sum,
	}
}

// ToMap returns the weights as a string-keyed map for logging.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (w Weights) ToMap() map[string]float64 {
	return map[string]float64{
		"topic_affinity": w.TopicAffinity,
		"quality":        w.Quality,
		"trending":       w.Trending,
		"novelty":        w.Novelty,
	}
}

// Scorer computes composite relevance scores. It holds no mutable state and
// is deterministic given identical inputs.
type Scorer struct {
	weights   Weights
	windowCap int
}

// NewScorer creates a scorer with normalized weights. windowCap is the
// diversity window capacity, used as the denominator for domain frequency.
func NewScorer(weights Weights, windowCap int) *Scorer {
	if windowCap < 1 {
		windowCap = 1
	}
	return &Scorer{weights: weights.Normalize(), windowCap: windowCap}
}

// Score computes the composite score for one candidate. window is the
// session's recent-domain window at request time.
func (s *Scorer) Score(c Candidate, user UserContext, window []string) ScoredCandidate {
	breakdown := ScoreBreakdown{
		TopicAffinity: topicAffinity(c.Topics, user.PreferredTopics),
		Quality:       c.Quality,
		Trending:      c.Trending,
		Novelty:       s.novelty(c.Domain, window),
	}

	score := s.weights.TopicAffinity*breakdown.TopicAffinity +
		s.weights.Quality*breakdown.Quality +
		s.weights.Trending*breakdown.Trending +
		s.weights.Novelty*breakdown.Novelty

	return ScoredCandidate{Candidate: c, Score: score, Breakdown: breakdown}
}

// ScoreAll scores every candidate against the same user context and window.
func (s *Scorer) ScoreAll(candidates []Candidate, user UserContext, window []string) []ScoredCandidate {
	scored := make([]ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		scored = append(scored, s.Score(c, user, window))
	}
	return scored
}

// topicAffinity is |candidate ∩ preferred| / max(|candidate topics|, 1).
// An empty preference set yields the neutral cold-start constant.
func topicAffinity(topics, preferred []string) float64 {
	if len(preferred) == 0 {
		return coldStartAffinity
	}

	prefSet := make(map[string]struct{}, len(preferred))
	for _, t := range preferred {
		prefSet[t] = struct{}{}
	}

	matches := 0
	for _, t := range topics {
		if _, ok := prefSet[t]; ok {
			matches++
		}
	}

	denom := len(topics)
	if denom < 1 {
		denom = 1
	}
	return float64(matches) / float64(denom)
}

// novelty is 1 minus the domain's appearance frequency over the window
// capacity. A domain absent from the window scores full novelty.
func (s *Scorer) novelty(domain string, window []string) float64 {
	if len(window) == 0 {
		return 1.0
	}

	count := 0
	for _, d := range window {
		if d == domain {
			count++
		}
	}

	freq := float64(count) / float64(s.windowCap)
	if freq > 1 {
		freq = 1
	}
	return 1 - freq
}
