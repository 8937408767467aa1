// Driftwood - Personalized Content Discovery
// Copyright 2026 Driftwood Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/driftwood-io/driftwood

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/driftwood-io/driftwood/internal/discovery"
)

// UserContext loads one user's preferences. A user without a stored profile
// gets discovery.ErrPreferencesNotFound; the engine treats that as cold
// start, never as a failure.
func (db *DB) UserContext(ctx context.Context, userID string) (discovery.UserContext, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	user := discovery.UserContext{UserID: userID}

	err := db.conn.QueryRowContext(ctx,
		`SELECT wildness FROM user_preferences WHERE user_id = ?`, userID).
		Scan(&user.Wildness)
	if errors.Is(err, sql.ErrNoRows) {
		return discovery.UserContext{}, discovery.ErrPreferencesNotFound
	}
	if err != nil {
		return discovery.UserContext{}, fmt.Errorf("query preferences for %s: %w", userID, err)
	}

	user.PreferredTopics, err = db.queryStrings(ctx,
		`SELECT topic FROM user_topics WHERE user_id = ? ORDER BY topic`, userID)
	if err != nil {
		return discovery.UserContext{}, fmt.Errorf("query topics for %s: %w", userID, err)
	}

	user.BlockedDomains, err = db.queryStrings(ctx,
		`SELECT domain FROM user_blocked_domains WHERE user_id = ? ORDER BY domain`, userID)
	if err != nil {
		return discovery.UserContext{}, fmt.Errorf("query blocked domains for %s: %w", userID, err)
	}

	return user, nil
}

// UpsertUserPreferences stores one user's full preference profile,
// replacing any existing topics and domain blocks.
func (db *DB) UpsertUserPreferences(ctx context.Context, user discovery.UserContext) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin preference upsert: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO user_preferences (user_id, wildness, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)`,
		user.UserID, user.Wildness); err != nil {
		return fmt.Errorf("upsert preferences for %s: %w", user.UserID, err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM user_topics WHERE user_id = ?`, user.UserID); err != nil {
		return fmt.Errorf("clear topics for %s: %w", user.UserID, err)
	}
	for _, topic := range user.PreferredTopics {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO user_topics (user_id, topic) VALUES (?, ?)`,
			user.UserID, topic); err != nil {
			return fmt.Errorf("insert topic %s for %s: %w", topic, user.UserID, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM user_blocked_domains WHERE user_id = ?`, user.UserID); err != nil {
		return fmt.Errorf("clear blocked domains for %s: %w", user.UserID, err)
	}
	for _, domain := range user.BlockedDomains {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO user_blocked_domains (user_id, domain) VALUES (?, ?)`,
			user.UserID, domain); err != nil {
			return fmt.Errorf("insert blocked domain %s for %s: %w", domain, user.UserID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit preference upsert: %w", err)
	}
	return nil
}

// queryStrings runs a single-column string query.
func (db *DB) queryStrings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
