// Driftwood - Personalized Content Discovery
// Copyright 2026 Driftwood Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/driftwood-io/driftwood

package storage

import (
	"context"
	"fmt"

	"github.com/driftwood-io/driftwood/internal/discovery"
	"github.com/driftwood-io/driftwood/internal/logging"
)

// seedMockData loads a small demo catalog for local development. It only
// runs when the catalog is empty.
func (db *DB) seedMockData(ctx context.Context) error {
	var count int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM candidates`).Scan(&count); err != nil {
		return fmt.Errorf("count candidates: %w", err)
	}
	if count > 0 {
		return nil
	}

	demo := []discovery.Candidate{
		{ID: "demo-001", Domain: "longform.example", Topics: []string{"essays", "history"}, Quality: 0.92, Trending: 0.31, Active: true},
		{ID: "demo-002", Domain: "longform.example", Topics: []string{"essays", "science"}, Quality: 0.88, Trending: 0.45, Active: true},
		{ID: "demo-003", Domain: "fieldnotes.example", Topics: []string{"nature", "photography"}, Quality: 0.81, Trending: 0.72, Active: true},
		{ID: "demo-004", Domain: "fieldnotes.example", Topics: []string{"nature", "travel"}, Quality: 0.77, Trending: 0.58, Active: true},
		{ID: "demo-005", Domain: "synthwave.example", Topics: []string{"music", "retro"}, Quality: 0.69, Trending: 0.91, Active: true},
		{ID: "demo-006", Domain: "synthwave.example", Topics: []string{"music", "production"}, Quality: 0.74, Trending: 0.83, Active: true},
		{ID: "demo-007", Domain: "kitchentable.example", Topics: []string{"cooking", "fermentation"}, Quality: 0.85, Trending: 0.40, Active: true},
		{ID: "demo-008", Domain: "kitchentable.example", Topics: []string{"cooking", "baking"}, Quality: 0.79, Trending: 0.52, Active: true},
		{ID: "demo-009", Domain: "deepdive.example", Topics: []string{"science", "space"}, Quality: 0.90, Trending: 0.66, Active: true},
		{ID: "demo-010", Domain: "deepdive.example", Topics: []string{"science", "biology"}, Quality: 0.83, Trending: 0.49, Active: true},
		{ID: "demo-011", Domain: "retired.example", Topics: []string{"essays"}, Quality: 0.95, Trending: 0.10, Active: false},
	}

	for _, c := range demo {
		if err := db.UpsertCandidate(ctx, c); err != nil {
			return err
		}
	}

	logging.Info().Int("candidates", len(demo)).Msg("Seeded demo catalog")
	return nil
}
