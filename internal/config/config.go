// Driftwood - Personalized Content Discovery
// Copyright 2026 Driftwood Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/driftwood-io/driftwood

package config

import "time"

// Config is the top-level application configuration, assembled from
// defaults, an optional YAML file, and environment variables.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Engine   EngineConfig   `koanf:"engine"`
	Trending TrendingConfig `koanf:"trending"`
	NATS     NATSConfig     `koanf:"nats"`
	API      APIConfig      `koanf:"api"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host        string        `koanf:"host"`
	Port        int           `koanf:"port"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	// Path is the DuckDB database file. ":memory:" runs fully in-memory.
	Path string `koanf:"path"`

	// MaxMemory caps DuckDB's memory usage, e.g. "2GB".
	MaxMemory string `koanf:"max_memory"`

	// Threads is the DuckDB thread count. 0 uses runtime.NumCPU().
	Threads int `koanf:"threads"`

	// SeedMockData loads a small demo catalog on startup.
	SeedMockData bool `koanf:"seed_mock_data"`
}

// EngineConfig holds the selection engine tuning knobs.
type EngineConfig struct {
	// Weight* are the composite score factor weights. They are
	// normalized to sum to 1 at engine construction.
	WeightTopicAffinity float64 `koanf:"weight_topic_affinity"`
	WeightQuality       float64 `koanf:"weight_quality"`
	WeightTrending      float64 `koanf:"weight_trending"`
	WeightNovelty       float64 `koanf:"weight_novelty"`

	// DomainWindow is the recent-domain diversity window size.
	DomainWindow int `koanf:"domain_window"`

	// MaxResample bounds diversity re-sampling attempts per selection.
	MaxResample int `koanf:"max_resample"`

	// TauMax is the softmax temperature at wildness 100.
	TauMax float64 `koanf:"tau_max"`

	// TemperatureCurve maps wildness to temperature: "linear" or
	// "smoothstep".
	TemperatureCurve string `koanf:"temperature_curve"`

	// FetchLimit bounds each candidate fetch.
	FetchLimit int `koanf:"fetch_limit"`

	// MinViable is the pool size below which the fallback ladder engages.
	MinViable int `koanf:"min_viable"`

	// FetchTimeout bounds each storage fetch.
	FetchTimeout time.Duration `koanf:"fetch_timeout"`

	// DefaultWildness is used for users with no stored preferences.
	DefaultWildness int `koanf:"default_wildness"`

	// SessionTTL is how long an idle session is retained.
	SessionTTL time.Duration `koanf:"session_ttl"`

	// Seed fixes the sampling seed. 0 seeds from the clock.
	Seed int64 `koanf:"seed"`
}

// TrendingConfig holds the trending snapshot cache and refresher settings.
type TrendingConfig struct {
	// RefreshInterval is how often the snapshot is recomputed.
	RefreshInterval time.Duration `koanf:"refresh_interval"`

	// SnapshotSize bounds the snapshot candidate count.
	SnapshotSize int `koanf:"snapshot_size"`

	// CachePath is the Badger directory for the persisted snapshot.
	// Empty runs the cache in-memory.
	CachePath string `koanf:"cache_path"`
}

// NATSConfig holds impression event publishing settings.
type NATSConfig struct {
	Enabled bool `koanf:"enabled"`

	// URL is the NATS server address.
	URL string `koanf:"url"`

	// EmbeddedServer starts an in-process NATS server instead of
	// connecting to an external one.
	EmbeddedServer bool `koanf:"embedded_server"`

	// StoreDir is the JetStream storage directory for the embedded server.
	StoreDir string `koanf:"store_dir"`

	// Topic is the subject impressions are published to.
	Topic string `koanf:"topic"`
}

// APIConfig holds HTTP API settings.
type APIConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}
