// Driftwood - Personalized Content Discovery
// Copyright 2026 Driftwood Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/driftwood-io/driftwood

// Package metrics provides Prometheus instrumentation for Driftwood.
//
// Coverage:
//   - Selection pipeline latency and outcomes
//   - Retrieval fallback activity (how often the degraded paths fire)
//   - Diversity window relaxations
//   - Session lifecycle
//   - HTTP endpoint latency and throughput
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Selection Pipeline Metrics

	SelectionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "driftwood_selection_duration_seconds",
			Help:    "End-to-end duration of a single discovery selection",
			Buckets: prometheus.DefBuckets,
		},
	)

	SelectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "driftwood_selections_total",
			Help: "Total discovery selections by outcome",
		},
		[]string{"outcome"}, // "ok", "no_content", "error"
	)

	SelectionWildness = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "driftwood_selection_wildness",
			Help:    "Distribution of wildness values across selection requests",
			Buckets: []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
	)

	WildnessClampedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "driftwood_wildness_clamped_total",
			Help: "Requests whose wildness value was outside range and clamped",
		},
	)

	// Retrieval Metrics

	RetrievalFallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "driftwood_retrieval_fallbacks_total",
			Help: "Retrieval fallback activations by stage",
		},
		[]string{"stage"}, // "topic_relaxed", "trending"
	)

	RetrievalTimeoutsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "driftwood_retrieval_timeouts_total",
			Help: "Primary fetches that exceeded the retrieval time budget",
		},
	)

	RetrievalErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "driftwood_retrieval_errors_total",
			Help: "Storage errors on the primary retrieval path",
		},
	)

	CandidatePoolSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "driftwood_candidate_pool_size",
			Help:    "Number of eligible candidates entering the scorer",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 200, 500},
		},
	)

	// Diversity Metrics

	DiversityRelaxedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "driftwood_diversity_relaxed_total",
			Help: "Selections that violated the domain diversity window after exhausting resampling",
		},
	)

	DiversityResamplesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "driftwood_diversity_resamples_total",
			Help: "Total resampling attempts triggered by the diversity guard",
		},
	)

	// Session Metrics

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "driftwood_active_sessions",
			Help: "Sessions currently tracked in memory",
		},
	)

	SessionsEvictedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "driftwood_sessions_evicted_total",
			Help: "Idle sessions evicted by the janitor",
		},
	)

	// Trending Snapshot Metrics

	TrendingRefreshesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "driftwood_trending_refreshes_total",
			Help: "Trending snapshot refresh attempts by status",
		},
		[]string{"status"}, // "ok", "error"
	)

	TrendingSnapshotSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "driftwood_trending_snapshot_size",
			Help: "Candidates in the current trending fallback snapshot",
		},
	)

	// Impression Event Metrics

	ImpressionsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "driftwood_impressions_published_total",
			Help: "Impression events published by status",
		},
		[]string{"status"}, // "ok", "error", "dropped"
	)

	// HTTP Metrics

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "driftwood_http_request_duration_seconds",
			Help:    "HTTP request duration by endpoint",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "driftwood_http_requests_total",
			Help: "Total HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)
)

// ObserveHTTPRequest records metrics for a completed HTTP request.
func ObserveHTTPRequest(endpoint, method string, status int, duration time.Duration) {
	code := strconv.Itoa(status)
	HTTPRequestDuration.WithLabelValues(endpoint, method, code).Observe(duration.Seconds())
	HTTPRequestsTotal.WithLabelValues(endpoint, method, code).Inc()
}
