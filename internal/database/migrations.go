// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/curator/internal/logging"
)

// Migration is one versioned schema change. Versions are applied in
// ascending order and never re-run.
type Migration struct {
	Version   int
	Name      string
	SQL       string
	AppliedAt time.Time
}

const schemaMigrationsTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	applied_at TIMESTAMP NOT NULL
);
`

// migrations is the ordered schema history.
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_interactions",
		SQL: `
CREATE TABLE IF NOT EXISTS interactions (
	user_id TEXT NOT NULL,
	content_id TEXT NOT NULL,
	type TEXT NOT NULL,
	occurred_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_interactions_user ON interactions(user_id, occurred_at);
CREATE INDEX IF NOT EXISTS idx_interactions_time ON interactions(occurred_at);
`,
	},
	{
		Version: 2,
		Name:    "create_catalog",
		SQL: `
CREATE TABLE IF NOT EXISTS creators (
	creator_id TEXT PRIMARY KEY,
	revenue DOUBLE NOT NULL DEFAULT 0,
	sales BIGINT NOT NULL DEFAULT 0,
	followers BIGINT NOT NULL DEFAULT 0,
	rating DOUBLE NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS content (
	content_id TEXT PRIMARY KEY,
	title TEXT,
	category TEXT NOT NULL DEFAULT '',
	file_type TEXT NOT NULL DEFAULT '',
	creator_id TEXT NOT NULL DEFAULT '',
	fingerprint BLOB,
	views BIGINT NOT NULL DEFAULT 0,
	likes BIGINT NOT NULL DEFAULT 0,
	purchases BIGINT NOT NULL DEFAULT 0,
	rating DOUBLE NOT NULL DEFAULT 0,
	published_at TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_content_category ON content(category);
CREATE TABLE IF NOT EXISTS content_tags (
	content_id TEXT NOT NULL,
	tag TEXT NOT NULL,
	PRIMARY KEY (content_id, tag)
);
`,
	},
}

// migrate creates the bookkeeping table and applies every migration not yet
// recorded there.
func (db *DB) migrate(ctx context.Context) error {
	if _, err := db.conn.ExecContext(ctx, schemaMigrationsTable); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := db.appliedMigrations(ctx)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if _, ok := applied[m.Version]; ok {
			continue
		}
		if err := db.apply(ctx, m); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Name, err)
		}
		logging.Info().Int("version", m.Version).Str("name", m.Name).Msg("applied migration")
	}
	return nil
}

func (db *DB) apply(ctx context.Context, m Migration) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range statements(m.SQL) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)`,
		m.Version, m.Name, db.now().UTC()); err != nil {
		return err
	}
	return tx.Commit()
}

// statements splits a migration into single statements. Migration SQL never
// contains semicolons inside literals.
func statements(script string) []string {
	var out []string
	for _, s := range strings.Split(script, ";") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// AppliedMigrations returns the recorded migrations keyed by version.
func (db *DB) AppliedMigrations(ctx context.Context) (map[int]Migration, error) {
	return db.appliedMigrations(ctx)
}

func (db *DB) appliedMigrations(ctx context.Context) (map[int]Migration, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT version, name, applied_at FROM schema_migrations ORDER BY version`)
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	defer closeRows(rows)

	applied := make(map[int]Migration)
	for rows.Next() {
		var m Migration
		if err := rows.Scan(&m.Version, &m.Name, &m.AppliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan migration row: %w", err)
		}
		applied[m.Version] = m
	}
	return applied, rows.Err()
}
