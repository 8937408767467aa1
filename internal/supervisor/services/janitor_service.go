// Driftwood - Personalized Content Discovery
// Copyright 2026 Driftwood Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/driftwood-io/driftwood

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// SessionEvicter discards idle sessions. The engine implements it.
type SessionEvicter interface {
	EvictIdleSessions() int
}

// JanitorService periodically evicts idle sessions so per-session state is
// bounded by active traffic, not process uptime.
type JanitorService struct {
	evicter  SessionEvicter
	interval time.Duration
	logger   zerolog.Logger
}

// NewJanitorService creates the session janitor.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewJanitorService(evicter SessionEvicter, interval time.Duration, logger zerolog.Logger) *JanitorService {
	if interval <= 0 {
		interval = time.Minute
	}
	return &JanitorService{
		evicter:  evicter,
		interval: interval,
		logger:   logger.With().Str("service", "janitor").Logger(),
	}
}

// Serve implements suture.Service.
func (s *JanitorService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-ticker.C:
			if evicted := s.evicter.EvictIdleSessions(); evicted > 0 {
				s.logger.Debug().Int("evicted", evicted).Msg("idle sessions evicted")
			}
		}
	}
}

// String implements fmt.Stringer for suture's event logs.
func (s *JanitorService) String() string {
	return "session-janitor"
}
