// Driftwood - Personalized Content Discovery
// Copyright 2026 Driftwood Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/driftwood-io/driftwood

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero port", func(c *Config) { c.Server.Port = 0 }},
		{"bad environment", func(c *Config) { c.Server.Environment = "staging" }},
		{"empty db path", func(c *Config) { c.Database.Path = "" }},
		{"negative weight", func(c *Config) { c.Engine.WeightQuality = -0.1 }},
		{"negative window", func(c *Config) { c.Engine.DomainWindow = -1 }},
		{"zero resample", func(c *Config) { c.Engine.MaxResample = 0 }},
		{"zero tau", func(c *Config) { c.Engine.TauMax = 0 }},
		{"unknown curve", func(c *Config) { c.Engine.TemperatureCurve = "cubic" }},
		{"wildness over range", func(c *Config) { c.Engine.DefaultWildness = 101 }},
		{"zero snapshot", func(c *Config) { c.Trending.SnapshotSize = 0 }},
		{"nats enabled without url", func(c *Config) { c.NATS.Enabled = true; c.NATS.URL = "" }},
		{"nats bad scheme", func(c *Config) { c.NATS.Enabled = true; c.NATS.URL = "http://x:4222" }},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() accepted an invalid config")
			}
		})
	}
}

func TestEnvTransform(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"DRIFTWOOD_SERVER_PORT", "server.port"},
		{"DRIFTWOOD_ENGINE_TAU_MAX", "engine.tau_max"},
		{"DRIFTWOOD_ENGINE_DOMAIN_WINDOW", "engine.domain_window"},
		{"DRIFTWOOD_NATS_URL", "nats.url"},
		{"DRIFTWOOD_LOGGING_LEVEL", "logging.level"},
	}
	for _, tt := range tests {
		if got := envTransformFunc(tt.in); got != tt.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLoadLayering(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  port: 9000
engine:
  domain_window: 5
  tau_max: 10.0
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("DRIFTWOOD_SERVER_PORT", "9100")
	t.Setenv("DRIFTWOOD_LOGGING_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Env beats file beats defaults.
	if cfg.Server.Port != 9100 {
		t.Errorf("port = %d, want env override 9100", cfg.Server.Port)
	}
	if cfg.Engine.DomainWindow != 5 {
		t.Errorf("domain window = %d, want file value 5", cfg.Engine.DomainWindow)
	}
	if cfg.Engine.TauMax != 10.0 {
		t.Errorf("tau max = %v, want file value 10.0", cfg.Engine.TauMax)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("log level = %q, want env override debug", cfg.Logging.Level)
	}
	if cfg.Engine.FetchTimeout != 2*time.Second {
		t.Errorf("fetch timeout = %s, want default 2s", cfg.Engine.FetchTimeout)
	}
}

func TestEngineConfigToDiscovery(t *testing.T) {
	cfg := defaultConfig()
	if cfg.Engine.WeightTopicAffinity+cfg.Engine.WeightQuality+
		cfg.Engine.WeightTrending+cfg.Engine.WeightNovelty != 1.0 {
		t.Error("default weights should sum to 1")
	}
}
