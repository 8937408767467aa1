// Driftwood - Personalized Content Discovery
// Copyright 2026 Driftwood Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/driftwood-io/driftwood

package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/driftwood-io/driftwood/internal/discovery"
)

// queryTimeout bounds individual catalog queries. The engine applies its own
// fetch budget on top; this is the hard stop for a stuck query.
const queryTimeout = 10 * time.Second

// FetchCandidates returns active candidates matching the query, ordered by
// quality descending. Exclusions and domain blocks are pushed down into SQL
// so the result is eligible as returned.
func (db *DB) FetchCandidates(ctx context.Context, q discovery.CandidateQuery) ([]discovery.Candidate, error) {
	var sb strings.Builder
	var args []any

	sb.WriteString(`
		SELECT
			c.id,
			c.domain,
			COALESCE(string_agg(t.topic, ','), '') AS topics,
			c.quality,
			c.trending,
			c.active
		FROM candidates c
		LEFT JOIN candidate_topics t ON t.candidate_id = c.id
		WHERE c.active`)

	if len(q.BlockedDomains) > 0 {
		sb.WriteString(" AND c.domain NOT IN (" + placeholders(len(q.BlockedDomains)) + ")")
		for _, d := range q.BlockedDomains {
			args = append(args, d)
		}
	}
	if len(q.ExcludedIDs) > 0 {
		sb.WriteString(" AND c.id NOT IN (" + placeholders(len(q.ExcludedIDs)) + ")")
		for _, id := range q.ExcludedIDs {
			args = append(args, id)
		}
	}
	if len(q.Topics) > 0 {
		sb.WriteString(` AND EXISTS (
			SELECT 1 FROM candidate_topics n
			WHERE n.candidate_id = c.id AND n.topic IN (` + placeholders(len(q.Topics)) + "))")
		for _, topic := range q.Topics {
			args = append(args, topic)
		}
	}

	sb.WriteString(`
		GROUP BY c.id, c.domain, c.quality, c.trending, c.active
		ORDER BY c.quality DESC, c.id
		LIMIT ?`)
	args = append(args, q.Limit)

	return db.queryCandidates(ctx, sb.String(), args...)
}

// FetchTrending returns the top candidates by the trending gauge, used to
// build the globally-trending snapshot. Per-user exclusions are applied by
// the snapshot's consumers, never here.
func (db *DB) FetchTrending(ctx context.Context, limit int) ([]discovery.Candidate, error) {
	query := `
		SELECT
			c.id,
			c.domain,
			COALESCE(string_agg(t.topic, ','), '') AS topics,
			c.quality,
			c.trending,
			c.active
		FROM candidates c
		LEFT JOIN candidate_topics t ON t.candidate_id = c.id
		WHERE c.active
		GROUP BY c.id, c.domain, c.quality, c.trending, c.active
		ORDER BY c.trending DESC, c.id
		LIMIT ?`

	return db.queryCandidates(ctx, query, limit)
}

// UpsertCandidate inserts or replaces one catalog entry and its topic tags.
func (db *DB) UpsertCandidate(ctx context.Context, c discovery.Candidate) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO candidates (id, domain, quality, trending, active)
		VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Domain, c.Quality, c.Trending, c.Active); err != nil {
		return fmt.Errorf("upsert candidate %s: %w", c.ID, err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM candidate_topics WHERE candidate_id = ?`, c.ID); err != nil {
		return fmt.Errorf("clear topics for %s: %w", c.ID, err)
	}
	for _, topic := range c.Topics {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO candidate_topics (candidate_id, topic) VALUES (?, ?)`,
			c.ID, topic); err != nil {
			return fmt.Errorf("insert topic %s for %s: %w", topic, c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}
	return nil
}

// queryCandidates runs a candidate query and scans the rows.
func (db *DB) queryCandidates(ctx context.Context, query string, args ...any) ([]discovery.Candidate, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	var candidates []discovery.Candidate
	for rows.Next() {
		var c discovery.Candidate
		var topics string
		if err := rows.Scan(&c.ID, &c.Domain, &topics, &c.Quality, &c.Trending, &c.Active); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		if topics != "" {
			c.Topics = strings.Split(topics, ",")
		}
		candidates = append(candidates, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidates: %w", err)
	}
	return candidates, nil
}

// placeholders returns n comma-joined SQL placeholders.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}
