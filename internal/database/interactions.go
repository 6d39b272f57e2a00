// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/curator/internal/logging"
	"github.com/tomtom215/curator/internal/recommend"
)

const selectInteractions = `
SELECT user_id, content_id, type, occurred_at
FROM interactions
WHERE occurred_at >= ?`

// RecordInteraction appends one tracked event. A zero timestamp is set to now.
func (db *DB) RecordInteraction(ctx context.Context, e recommend.Event) error {
	if !e.Type.Valid() {
		return fmt.Errorf("record interaction: unknown type %q", e.Type)
	}
	ts := e.Timestamp
	if ts.IsZero() {
		ts = db.now()
	}
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO interactions (user_id, content_id, type, occurred_at) VALUES (?, ?, ?, ?)`,
		e.UserID, e.ContentID, string(e.Type), ts.UTC())
	if err != nil {
		return fmt.Errorf("record interaction: %w", err)
	}
	return nil
}

// RecordInteractions appends events in one transaction.
func (db *DB) RecordInteractions(ctx context.Context, events []recommend.Event) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO interactions (user_id, content_id, type, occurred_at) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer closeQuietly(stmt)

	now := db.now()
	for i, e := range events {
		if !e.Type.Valid() {
			return fmt.Errorf("event %d: unknown type %q", i, e.Type)
		}
		ts := e.Timestamp
		if ts.IsZero() {
			ts = now
		}
		if _, err := stmt.ExecContext(ctx, e.UserID, e.ContentID, string(e.Type), ts.UTC()); err != nil {
			return fmt.Errorf("event %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// GetInteractions implements recommend.InteractionGateway.
func (db *DB) GetInteractions(ctx context.Context, userID string, window time.Duration) ([]recommend.Event, error) {
	rows, err := db.conn.QueryContext(ctx,
		selectInteractions+` AND user_id = ? ORDER BY occurred_at, content_id`,
		db.since(window), userID)
	if err != nil {
		return nil, fmt.Errorf("query interactions: %w", err)
	}
	defer closeRows(rows)
	return scanEvents(rows)
}

// ListInteractions implements recommend.InteractionGateway.
func (db *DB) ListInteractions(ctx context.Context, window time.Duration) ([]recommend.Event, error) {
	rows, err := db.conn.QueryContext(ctx,
		selectInteractions+` ORDER BY user_id, occurred_at, content_id`,
		db.since(window))
	if err != nil {
		return nil, fmt.Errorf("query interactions: %w", err)
	}
	defer closeRows(rows)
	return scanEvents(rows)
}

// since is the lower time bound for window; a non-positive window reads
// everything.
func (db *DB) since(window time.Duration) time.Time {
	if window <= 0 {
		return time.Unix(0, 0).UTC()
	}
	return db.now().Add(-window).UTC()
}

func scanEvents(rows *sql.Rows) ([]recommend.Event, error) {
	var events []recommend.Event
	for rows.Next() {
		var (
			e   recommend.Event
			typ string
		)
		if err := rows.Scan(&e.UserID, &e.ContentID, &typ, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan interaction: %w", err)
		}
		t, err := recommend.ParseEventType(typ)
		if err != nil {
			logging.Debug().Str("type", typ).Msg("skipping interaction of unknown type")
			continue
		}
		e.Type = t
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate interactions: %w", err)
	}
	return events, nil
}
