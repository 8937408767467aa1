// Driftwood - Personalized Content Discovery
// Copyright 2026 Driftwood Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/driftwood-io/driftwood

package discovery

import (
	"math"
	"sort"
)

// minSamplingTau is the temperature below which sampling degenerates to
// deterministic argmax. Guards against division blowup as tau approaches 0.
const minSamplingTau = 1e-9

// Controller converts the wildness dial into a probabilistic selection over
// scored candidates: pure exploitation at wildness 0, near-uniform sampling
// at wildness 100.
type Controller struct {
	tauMax float64
	curve  TemperatureCurve
}

// NewController creates an exploration controller. A nil curve defaults to
// LinearCurve.
func NewController(tauMax float64, curve TemperatureCurve) *Controller {
	if curve == nil {
		curve = LinearCurve
	}
	return &Controller{tauMax: tauMax, curve: curve}
}

// Temperature returns the sampling temperature for a wildness value.
func (c *Controller) Temperature(wildness int) float64 {
	w, _ := ClampWildness(wildness)
	return c.curve(float64(w)/float64(WildnessMax)) * c.tauMax
}

// Select draws one candidate from the pool using softmax sampling at the
// temperature implied by wildness. rng must be the injected random source;
// no ambient generator is ever consulted.
//
// Exact score ties are broken by candidate identifier before sampling, so
// tie resolution is deterministic for a fixed input order. At wildness 0 the
// maximum-score candidate is returned without drawing from rng at all.
//
// An empty pool is a contract violation by the caller and returns
// ErrEmptyPool without recovery.
func (c *Controller) Select(pool []ScoredCandidate, wildness int, rng Rand) (ScoredCandidate, error) {
	if len(pool) == 0 {
		return ScoredCandidate{}, ErrEmptyPool
	}

	// Stable order: score descending, identifier ascending.
	sorted := make([]ScoredCandidate, len(pool))
	copy(sorted, pool)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].Candidate.ID < sorted[j].Candidate.ID
	})

	tau := c.Temperature(wildness)
	if tau < minSamplingTau {
		// Pure exploitation: the single maximum-score candidate.
		return sorted[0], nil
	}

	// Softmax with max-shift for numeric stability; sorted[0] holds the
	// maximum score.
	maxScore := sorted[0].Score
	weights := make([]float64, len(sorted))
	var total float64
	for i, sc := range sorted {
		w := math.Exp((sc.Score - maxScore) / tau)
		weights[i] = w
		total += w
	}

	draw := rng.Float64() * total
	var cumulative float64
	for i, w := range weights {
		cumulative += w
		if draw < cumulative {
			return sorted[i], nil
		}
	}

	// Floating point accumulation can leave draw marginally above the
	// final cumulative value.
	return sorted[len(sorted)-1], nil
}
