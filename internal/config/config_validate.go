// Driftwood - Personalized Content Discovery
// Copyright 2026 Driftwood Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/driftwood-io/driftwood

package config

import (
	"fmt"
	"strings"
)

// Validate checks that the configuration is complete and internally
// consistent.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateEngine(); err != nil {
		return err
	}
	if err := c.validateTrending(); err != nil {
		return err
	}
	if err := c.validateNATS(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 1-65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %s", c.Server.Timeout)
	}
	switch c.Server.Environment {
	case "development", "production":
		return nil
	default:
		return fmt.Errorf("server.environment must be development or production, got %q", c.Server.Environment)
	}
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("database.threads must be >= 0, got %d", c.Database.Threads)
	}
	return nil
}

func (c *Config) validateEngine() error {
	weights := []struct {
		name  string
		value float64
	}{
		{"engine.weight_topic_affinity", c.Engine.WeightTopicAffinity},
		{"engine.weight_quality", c.Engine.WeightQuality},
		{"engine.weight_trending", c.Engine.WeightTrending},
		{"engine.weight_novelty", c.Engine.WeightNovelty},
	}
	for _, w := range weights {
		if w.value < 0 {
			return fmt.Errorf("%s must be >= 0, got %v", w.name, w.value)
		}
	}
	if c.Engine.DomainWindow < 0 {
		return fmt.Errorf("engine.domain_window must be >= 0, got %d", c.Engine.DomainWindow)
	}
	if c.Engine.MaxResample < 1 {
		return fmt.Errorf("engine.max_resample must be >= 1, got %d", c.Engine.MaxResample)
	}
	if c.Engine.TauMax <= 0 {
		return fmt.Errorf("engine.tau_max must be positive, got %v", c.Engine.TauMax)
	}
	switch c.Engine.TemperatureCurve {
	case "", "linear", "smoothstep":
	default:
		return fmt.Errorf("engine.temperature_curve must be linear or smoothstep, got %q", c.Engine.TemperatureCurve)
	}
	if c.Engine.FetchLimit < 1 {
		return fmt.Errorf("engine.fetch_limit must be >= 1, got %d", c.Engine.FetchLimit)
	}
	if c.Engine.MinViable < 1 {
		return fmt.Errorf("engine.min_viable must be >= 1, got %d", c.Engine.MinViable)
	}
	if c.Engine.FetchTimeout <= 0 {
		return fmt.Errorf("engine.fetch_timeout must be positive, got %s", c.Engine.FetchTimeout)
	}
	if c.Engine.DefaultWildness < 0 || c.Engine.DefaultWildness > 100 {
		return fmt.Errorf("engine.default_wildness must be 0-100, got %d", c.Engine.DefaultWildness)
	}
	if c.Engine.SessionTTL <= 0 {
		return fmt.Errorf("engine.session_ttl must be positive, got %s", c.Engine.SessionTTL)
	}
	return nil
}

func (c *Config) validateTrending() error {
	if c.Trending.RefreshInterval <= 0 {
		return fmt.Errorf("trending.refresh_interval must be positive, got %s", c.Trending.RefreshInterval)
	}
	if c.Trending.SnapshotSize < 1 {
		return fmt.Errorf("trending.snapshot_size must be >= 1, got %d", c.Trending.SnapshotSize)
	}
	return nil
}

func (c *Config) validateNATS() error {
	if !c.NATS.Enabled {
		return nil
	}
	if c.NATS.URL == "" {
		return fmt.Errorf("nats.url is required when nats.enabled=true")
	}
	if !strings.HasPrefix(c.NATS.URL, "nats://") && !strings.HasPrefix(c.NATS.URL, "tls://") {
		return fmt.Errorf("nats.url must start with nats:// or tls://, got %q", c.NATS.URL)
	}
	if c.NATS.Topic == "" {
		return fmt.Errorf("nats.topic is required when nats.enabled=true")
	}
	if c.NATS.EmbeddedServer && c.NATS.StoreDir == "" {
		return fmt.Errorf("nats.store_dir is required when the embedded server is enabled")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of trace, debug, info, warn, error, got %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
		return nil
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
}
