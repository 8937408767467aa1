// Driftwood - Personalized Content Discovery
// Copyright 2026 Driftwood Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/driftwood-io/driftwood

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/driftwood-io/driftwood/internal/discovery"
	"github.com/driftwood-io/driftwood/internal/metrics"
)

// TrendingFetcher reads the top-trending candidates from the catalog store.
type TrendingFetcher interface {
	FetchTrending(ctx context.Context, limit int) ([]discovery.Candidate, error)
}

// SnapshotStore persists the trending snapshot for the retrieval fallback.
type SnapshotStore interface {
	Store(candidates []discovery.Candidate) error
}

// TrendingServiceConfig holds the refresher settings.
type TrendingServiceConfig struct {
	// RefreshInterval is how often the snapshot is recomputed.
	RefreshInterval time.Duration

	// SnapshotSize bounds the snapshot.
	SnapshotSize int
}

// TrendingService periodically recomputes the trending snapshot and writes
// it to the cache. A rate limiter caps refresh bursts when suture restarts
// the service repeatedly during a store outage.
type TrendingService struct {
	fetcher TrendingFetcher
	store   SnapshotStore
	config  TrendingServiceConfig
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// NewTrendingService creates the snapshot refresher.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewTrendingService(fetcher TrendingFetcher, store SnapshotStore, cfg TrendingServiceConfig, logger zerolog.Logger) *TrendingService {
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = 5 * time.Minute
	}
	if cfg.SnapshotSize <= 0 {
		cfg.SnapshotSize = 100
	}
	return &TrendingService{
		fetcher: fetcher,
		store:   store,
		config:  cfg,
		limiter: rate.NewLimiter(rate.Every(10*time.Second), 1),
		logger:  logger.With().Str("service", "trending").Logger(),
	}
}

// Serve implements suture.Service. The snapshot is refreshed once at
// startup and then on every tick.
func (s *TrendingService) Serve(ctx context.Context) error {
	s.logger.Info().
		Dur("interval", s.config.RefreshInterval).
		Int("size", s.config.SnapshotSize).
		Msg("trending refresher starting")

	if err := s.refresh(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("initial trending refresh failed, retrying on schedule")
	}

	ticker := time.NewTicker(s.config.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("trending refresher shutting down")
			return ctx.Err()

		case <-ticker.C:
			if err := s.refresh(ctx); err != nil {
				s.logger.Warn().Err(err).Msg("trending refresh failed")
			}
		}
	}
}

// refresh recomputes and persists the snapshot once.
func (s *TrendingService) refresh(ctx context.Context) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	candidates, err := s.fetcher.FetchTrending(ctx, s.config.SnapshotSize)
	if err != nil {
		metrics.TrendingRefreshesTotal.WithLabelValues("error").Inc()
		return err
	}
	if err := s.store.Store(candidates); err != nil {
		metrics.TrendingRefreshesTotal.WithLabelValues("error").Inc()
		return err
	}

	metrics.TrendingRefreshesTotal.WithLabelValues("ok").Inc()
	s.logger.Debug().Int("candidates", len(candidates)).Msg("trending snapshot refreshed")
	return nil
}

// String implements fmt.Stringer for suture's event logs.
func (s *TrendingService) String() string {
	return "trending-refresher"
}
