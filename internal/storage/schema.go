// Driftwood - Personalized Content Discovery
// Copyright 2026 Driftwood Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/driftwood-io/driftwood

package storage

import "fmt"

// initSchema creates the catalog and preference tables. All statements are
// idempotent; re-running them on an existing database is a no-op.
func (db *DB) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS candidates (
			id VARCHAR PRIMARY KEY,
			domain VARCHAR NOT NULL,
			quality DOUBLE NOT NULL DEFAULT 0,
			trending DOUBLE NOT NULL DEFAULT 0,
			active BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS candidate_topics (
			candidate_id VARCHAR NOT NULL,
			topic VARCHAR NOT NULL,
			PRIMARY KEY (candidate_id, topic)
		)`,
		`CREATE TABLE IF NOT EXISTS user_preferences (
			user_id VARCHAR PRIMARY KEY,
			wildness INTEGER NOT NULL DEFAULT 50,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS user_topics (
			user_id VARCHAR NOT NULL,
			topic VARCHAR NOT NULL,
			PRIMARY KEY (user_id, topic)
		)`,
		`CREATE TABLE IF NOT EXISTS user_blocked_domains (
			user_id VARCHAR NOT NULL,
			domain VARCHAR NOT NULL,
			PRIMARY KEY (user_id, domain)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_candidates_active_quality
			ON candidates (active, quality DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_candidates_trending
			ON candidates (trending DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_candidate_topics_topic
			ON candidate_topics (topic)`,
	}

	for _, stmt := range statements {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}
