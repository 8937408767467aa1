// Driftwood - Personalized Content Discovery
// Copyright 2026 Driftwood Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/driftwood-io/driftwood

package discovery

import (
	"fmt"
	"time"
)

// Config contains all tunables for the selection engine. The weight values
// and the diversity window size are product-tuning parameters; the defaults
// here are starting points, not validated production values.
type Config struct {
	// Weights defines the relative contribution of each scoring factor.
	// Weights are normalized at runtime, so they don't need to sum to 1.0.
	Weights Weights `json:"weights"`

	// DomainWindow is the number of recent picks whose source domains are
	// protected from repetition.
	DomainWindow int `json:"domain_window"`

	// MaxResample bounds how many times a diversity-rejected pick is
	// resampled before the violation is accepted and recorded.
	MaxResample int `json:"max_resample"`

	// TauMax is the sampling temperature at wildness 100. The default is
	// sized so that full wildness is near-uniform over the 0-1 score range.
	TauMax float64 `json:"tau_max"`

	// Curve maps normalized wildness (0-1) onto the temperature fraction.
	// Kept as an isolated unit so its shape can change without touching
	// the rest of the pipeline. Defaults to LinearCurve.
	Curve TemperatureCurve `json:"-"`

	// FetchLimit bounds the candidate fetch size.
	FetchLimit int `json:"fetch_limit"`

	// MinViable is the pool size under which the retrieval fallback
	// ladder starts relaxing constraints.
	MinViable int `json:"min_viable"`

	// FetchTimeout bounds the blocking storage fetch.
	FetchTimeout time.Duration `json:"fetch_timeout"`

	// DefaultWildness is used when preferences are missing or malformed.
	DefaultWildness int `json:"default_wildness"`

	// SessionTTL is how long an idle session is kept before eviction.
	SessionTTL time.Duration `json:"session_ttl"`

	// Seed seeds the sampling random source. Zero means time-seeded
	// (production); tests pass a fixed seed for reproducibility.
	Seed int64 `json:"seed"`
}

// DefaultConfig returns engine defaults.
func DefaultConfig() *Config {
	return &Config{
		Weights:         DefaultWeights(),
		DomainWindow:    3,
		MaxResample:     4,
		TauMax:          20.0,
		Curve:           LinearCurve,
		FetchLimit:      200,
		MinViable:       5,
		FetchTimeout:    2 * time.Second,
		DefaultWildness: 50,
		SessionTTL:      30 * time.Minute,
		Seed:            0,
	}
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.Weights.TopicAffinity < 0 || c.Weights.Quality < 0 ||
		c.Weights.Trending < 0 || c.Weights.Novelty < 0 {
		return fmt.Errorf("scoring weights must be non-negative: %+v", c.Weights)
	}
	if c.DomainWindow < 0 {
		return fmt.Errorf("domain window must be non-negative, got %d", c.DomainWindow)
	}
	if c.MaxResample < 1 {
		return fmt.Errorf("max resample must be at least 1, got %d", c.MaxResample)
	}
	if c.TauMax <= 0 {
		return fmt.Errorf("tau max must be positive, got %f", c.TauMax)
	}
	if c.FetchLimit < 1 {
		return fmt.Errorf("fetch limit must be at least 1, got %d", c.FetchLimit)
	}
	if c.MinViable < 1 {
		return fmt.Errorf("min viable must be at least 1, got %d", c.MinViable)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive, got %s", c.FetchTimeout)
	}
	if c.DefaultWildness < 0 || c.DefaultWildness > WildnessMax {
		return fmt.Errorf("default wildness must be within 0-%d, got %d", WildnessMax, c.DefaultWildness)
	}
	return nil
}
