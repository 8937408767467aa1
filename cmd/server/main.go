// Driftwood - Personalized Content Discovery
// Copyright 2026 Driftwood Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/driftwood-io/driftwood

// Driftwood serves personalized content discovery: one request, one
// surprising-but-relevant item, with per-session no-repeat guarantees and
// a tunable exploration dial.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/driftwood-io/driftwood/internal/api"
	"github.com/driftwood-io/driftwood/internal/config"
	"github.com/driftwood-io/driftwood/internal/discovery"
	"github.com/driftwood-io/driftwood/internal/logging"
	"github.com/driftwood-io/driftwood/internal/storage"
	"github.com/driftwood-io/driftwood/internal/supervisor"
	"github.com/driftwood-io/driftwood/internal/supervisor/services"
	"github.com/driftwood-io/driftwood/internal/trendcache"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Int("port", cfg.Server.Port).
		Bool("nats_enabled", cfg.NATS.Enabled).
		Msg("Starting Driftwood")

	db, err := storage.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	cache, err := trendcache.New(cfg.Trending.CachePath)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open trending cache")
	}
	defer func() {
		if err := cache.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing trending cache")
		}
	}()

	engineCfg, err := engineConfig(&cfg.Engine)
	if err != nil {
		logging.Fatal().Err(err).Msg("Invalid engine configuration")
	}
	engine, err := discovery.NewEngine(engineCfg, db, cache, db, logging.Logger())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create selection engine")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())

	// Data layer: trending snapshot refresher and session janitor.
	tree.AddDataService(services.NewTrendingService(db, cache, services.TrendingServiceConfig{
		RefreshInterval: cfg.Trending.RefreshInterval,
		SnapshotSize:    cfg.Trending.SnapshotSize,
	}, logging.Logger()))
	tree.AddDataService(services.NewJanitorService(engine, time.Minute, logging.Logger()))

	// Messaging layer: impression events over NATS, when enabled.
	cleanupEvents, err := initEvents(cfg, engine)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize impression events")
	}
	defer cleanupEvents()

	// API layer: the HTTP surface.
	handler := api.NewHandler(engine, db)
	router := api.NewRouter(handler, &cfg.API)
	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
	}
	tree.AddAPIService(services.NewHTTPService(server, 10*time.Second))

	logging.Info().Str("addr", server.Addr).Msg("Supervisor tree starting")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Fatal().Err(err).Msg("Supervisor tree failed")
	}
	logging.Info().Msg("Shutdown complete")
}

// engineConfig maps the application configuration onto the engine's.
func engineConfig(cfg *config.EngineConfig) (*discovery.Config, error) {
	curve, err := discovery.CurveByName(cfg.TemperatureCurve)
	if err != nil {
		return nil, err
	}
	return &discovery.Config{
		Weights: discovery.Weights{
			TopicAffinity: cfg.WeightTopicAffinity,
			Quality:       cfg.WeightQuality,
			Trending:      cfg.WeightTrending,
			Novelty:       cfg.WeightNovelty,
		},
		DomainWindow:    cfg.DomainWindow,
		MaxResample:     cfg.MaxResample,
		TauMax:          cfg.TauMax,
		Curve:           curve,
		FetchLimit:      cfg.FetchLimit,
		MinViable:       cfg.MinViable,
		FetchTimeout:    cfg.FetchTimeout,
		DefaultWildness: cfg.DefaultWildness,
		SessionTTL:      cfg.SessionTTL,
		Seed:            cfg.Seed,
	}, nil
}
