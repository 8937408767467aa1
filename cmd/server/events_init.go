// Driftwood - Personalized Content Discovery
// Copyright 2026 Driftwood Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/driftwood-io/driftwood

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/driftwood-io/driftwood/internal/config"
	"github.com/driftwood-io/driftwood/internal/discovery"
	"github.com/driftwood-io/driftwood/internal/events"
	"github.com/driftwood-io/driftwood/internal/logging"
)

// initEvents wires impression publishing when NATS is enabled: optionally
// an embedded server, then the Watermill publisher hooked into the engine.
// The returned cleanup closes the publisher and stops the embedded server.
func initEvents(cfg *config.Config, engine *discovery.Engine) (func(), error) {
	if !cfg.NATS.Enabled {
		logging.Info().Msg("Impression events disabled")
		return func() {}, nil
	}

	natsURL := cfg.NATS.URL
	var embedded *events.EmbeddedServer
	if cfg.NATS.EmbeddedServer {
		var err error
		embedded, err = events.NewEmbeddedServer(cfg.NATS.URL, cfg.NATS.StoreDir)
		if err != nil {
			return nil, fmt.Errorf("start embedded NATS server: %w", err)
		}
		natsURL = embedded.ClientURL()
		logging.Info().Str("url", natsURL).Msg("Embedded NATS server started")
	}

	natsCfg := cfg.NATS
	natsCfg.URL = natsURL
	publisher, err := events.NewNATSPublisher(&natsCfg, nil)
	if err != nil {
		if embedded != nil {
			shutdownEmbedded(embedded)
		}
		return nil, fmt.Errorf("create impression publisher: %w", err)
	}

	engine.SetImpressionRecorder(publisher)
	logging.Info().Str("topic", cfg.NATS.Topic).Msg("Impression events enabled")

	return func() {
		if err := publisher.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing impression publisher")
		}
		if embedded != nil {
			shutdownEmbedded(embedded)
		}
	}, nil
}

func shutdownEmbedded(embedded *events.EmbeddedServer) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := embedded.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("Error stopping embedded NATS server")
	}
}
