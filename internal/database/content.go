// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/tomtom215/curator/internal/recommend"
)

// catalogSelect joins content with its creator and tags. The %s slot takes
// the inner content query so that limits apply to items, not tag rows.
const catalogSelect = `
SELECT c.content_id, COALESCE(c.title, ''), c.category, c.file_type, c.creator_id,
       c.fingerprint, c.views, c.likes, c.purchases, c.rating, c.published_at,
       COALESCE(cr.revenue, 0), COALESCE(cr.sales, 0), COALESCE(cr.followers, 0), COALESCE(cr.rating, 0),
       t.tag
FROM (%s) c
LEFT JOIN creators cr ON cr.creator_id = c.creator_id
LEFT JOIN content_tags t ON t.content_id = c.content_id
ORDER BY c.content_id, t.tag`

// GetContentFeatures implements recommend.ContentGateway.
func (db *DB) GetContentFeatures(ctx context.Context, contentID string) (*recommend.ContentFeatureProfile, error) {
	query := fmt.Sprintf(catalogSelect, `SELECT * FROM content WHERE content_id = ?`)
	rows, err := db.conn.QueryContext(ctx, query, contentID)
	if err != nil {
		return nil, fmt.Errorf("query content: %w", err)
	}
	defer closeRows(rows)

	profiles, err := scanProfiles(rows)
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, fmt.Errorf("content %q: %w", contentID, recommend.ErrContentNotFound)
	}
	return &profiles[0], nil
}

// ListCatalog implements recommend.ContentGateway. Profiles are ordered by
// content ID.
func (db *DB) ListCatalog(ctx context.Context, filter recommend.CatalogFilter) ([]recommend.ContentFeatureProfile, error) {
	var (
		inner strings.Builder
		args  []any
	)
	inner.WriteString(`SELECT * FROM content`)
	if filter.Category != "" {
		inner.WriteString(` WHERE category = ?`)
		args = append(args, filter.Category)
	}
	inner.WriteString(` ORDER BY content_id`)
	if filter.Limit > 0 {
		inner.WriteString(` LIMIT ?`)
		args = append(args, filter.Limit)
	}

	rows, err := db.conn.QueryContext(ctx, fmt.Sprintf(catalogSelect, inner.String()), args...)
	if err != nil {
		return nil, fmt.Errorf("query catalog: %w", err)
	}
	defer closeRows(rows)
	return scanProfiles(rows)
}

// scanProfiles folds the joined rows, one per tag, into profiles.
func scanProfiles(rows *sql.Rows) ([]recommend.ContentFeatureProfile, error) {
	var profiles []recommend.ContentFeatureProfile
	for rows.Next() {
		var (
			p         recommend.ContentFeatureProfile
			published sql.NullTime
			tag       sql.NullString
		)
		if err := rows.Scan(
			&p.ContentID, &p.Title, &p.Category, &p.FileType, &p.CreatorID,
			&p.Fingerprint, &p.Stats.Views, &p.Stats.Likes, &p.Stats.Purchases, &p.Stats.Rating, &published,
			&p.Creator.Revenue, &p.Creator.Sales, &p.Creator.Followers, &p.Creator.Rating,
			&tag,
		); err != nil {
			return nil, fmt.Errorf("scan content: %w", err)
		}

		if n := len(profiles); n > 0 && profiles[n-1].ContentID == p.ContentID {
			if tag.Valid {
				profiles[n-1].Tags = append(profiles[n-1].Tags, tag.String)
			}
			continue
		}
		if published.Valid {
			p.Stats.PublishedAt = published.Time
		}
		p.Tags = []string{}
		if tag.Valid {
			p.Tags = append(p.Tags, tag.String)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate content: %w", err)
	}
	return profiles, nil
}

// UpsertContent inserts or replaces a catalog item together with its tags
// and creator statistics.
func (db *DB) UpsertContent(ctx context.Context, p *recommend.ContentFeatureProfile) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var published, fingerprint any
	if !p.Stats.PublishedAt.IsZero() {
		published = p.Stats.PublishedAt.UTC()
	}
	if len(p.Fingerprint) > 0 {
		fingerprint = p.Fingerprint
	}

	if _, err := tx.ExecContext(ctx, `
INSERT OR REPLACE INTO content
	(content_id, title, category, file_type, creator_id, fingerprint, views, likes, purchases, rating, published_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ContentID, p.Title, p.Category, p.FileType, p.CreatorID, fingerprint,
		p.Stats.Views, p.Stats.Likes, p.Stats.Purchases, p.Stats.Rating, published,
	); err != nil {
		return fmt.Errorf("upsert content %s: %w", p.ContentID, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM content_tags WHERE content_id = ?`, p.ContentID); err != nil {
		return fmt.Errorf("clear tags %s: %w", p.ContentID, err)
	}
	for _, tag := range lo.Uniq(p.Tags) {
		if _, err := tx.ExecContext(ctx, `INSERT INTO content_tags (content_id, tag) VALUES (?, ?)`, p.ContentID, tag); err != nil {
			return fmt.Errorf("insert tag %s/%s: %w", p.ContentID, tag, err)
		}
	}

	if p.CreatorID != "" {
		if _, err := tx.ExecContext(ctx, `
INSERT OR REPLACE INTO creators (creator_id, revenue, sales, followers, rating)
VALUES (?, ?, ?, ?, ?)`,
			p.CreatorID, p.Creator.Revenue, p.Creator.Sales, p.Creator.Followers, p.Creator.Rating,
		); err != nil {
			return fmt.Errorf("upsert creator %s: %w", p.CreatorID, err)
		}
	}
	return tx.Commit()
}
