// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/tomtom215/curator/internal/config"
	"github.com/tomtom215/curator/internal/recommend"
)

// testDBSemaphore serializes DuckDB tests; concurrent CGO connections from
// many parallel tests can stall under CI resource pressure.
var testDBSemaphore = make(chan struct{}, 1)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() { <-testDBSemaphore })

	db, err := New(&config.DatabaseConfig{Path: ":memory:", Threads: 1, MaxMemory: "256MB"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	db.now = func() time.Time { return testNow }
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return db
}

func TestNewAppliesMigrations(t *testing.T) {
	db := setupTestDB(t)

	applied, err := db.AppliedMigrations(context.Background())
	if err != nil {
		t.Fatalf("AppliedMigrations() error = %v", err)
	}
	if len(applied) != len(migrations) {
		t.Fatalf("applied %d migrations, want %d", len(applied), len(migrations))
	}

	// Re-running is a no-op.
	if err := db.migrate(context.Background()); err != nil {
		t.Fatalf("second migrate() error = %v", err)
	}
}

func TestNewCreatesDirectory(t *testing.T) {
	testDBSemaphore <- struct{}{}
	defer func() { <-testDBSemaphore }()

	path := filepath.Join(t.TempDir(), "nested", "curator.duckdb")
	db, err := New(&config.DatabaseConfig{Path: path, Threads: 1})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}

func TestStatements(t *testing.T) {
	t.Parallel()

	got := statements("CREATE TABLE a (x INT);\n\n CREATE INDEX i ON a(x);  ;")
	if len(got) != 2 || got[0] != "CREATE TABLE a (x INT)" || got[1] != "CREATE INDEX i ON a(x)" {
		t.Errorf("statements() = %q", got)
	}
}

func TestInteractions(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	events := []recommend.Event{
		{UserID: "u1", ContentID: "c1", Type: recommend.EventView, Timestamp: testNow.Add(-time.Hour)},
		{UserID: "u1", ContentID: "c2", Type: recommend.EventPurchase, Timestamp: testNow.Add(-2 * time.Hour)},
		{UserID: "u2", ContentID: "c1", Type: recommend.EventLike, Timestamp: testNow.Add(-48 * time.Hour)},
	}
	if err := db.RecordInteractions(ctx, events); err != nil {
		t.Fatalf("RecordInteractions() error = %v", err)
	}
	if err := db.RecordInteraction(ctx, recommend.Event{UserID: "u1", ContentID: "c3", Type: recommend.EventShare}); err != nil {
		t.Fatalf("RecordInteraction() error = %v", err)
	}

	t.Run("user history oldest first", func(t *testing.T) {
		got, err := db.GetInteractions(ctx, "u1", 24*time.Hour)
		if err != nil {
			t.Fatalf("GetInteractions() error = %v", err)
		}
		want := []string{"c2", "c1", "c3"}
		if len(got) != len(want) {
			t.Fatalf("got %d events, want %d", len(got), len(want))
		}
		for i, id := range want {
			if got[i].ContentID != id {
				t.Errorf("event %d = %s, want %s", i, got[i].ContentID, id)
			}
		}
		if got[1].Type != recommend.EventView || !got[1].Timestamp.Equal(testNow.Add(-time.Hour)) {
			t.Errorf("event 1 = %+v", got[1])
		}
		if !got[2].Timestamp.Equal(testNow) {
			t.Errorf("zero timestamp stored as %v, want %v", got[2].Timestamp, testNow)
		}
	})

	t.Run("window excludes old events", func(t *testing.T) {
		got, err := db.GetInteractions(ctx, "u2", 24*time.Hour)
		if err != nil {
			t.Fatalf("GetInteractions() error = %v", err)
		}
		if len(got) != 0 {
			t.Errorf("got %d events, want 0", len(got))
		}
	})

	t.Run("list all", func(t *testing.T) {
		got, err := db.ListInteractions(ctx, 0)
		if err != nil {
			t.Fatalf("ListInteractions() error = %v", err)
		}
		if len(got) != 4 {
			t.Fatalf("got %d events, want 4", len(got))
		}
		if got[3].UserID != "u2" {
			t.Errorf("last event user = %s, want u2", got[3].UserID)
		}
	})

	t.Run("unknown type rejected", func(t *testing.T) {
		err := db.RecordInteraction(ctx, recommend.Event{UserID: "u1", ContentID: "c1", Type: "bogus"})
		if err == nil {
			t.Fatal("RecordInteraction() accepted an unknown type")
		}
	})

	t.Run("unknown stored type skipped", func(t *testing.T) {
		if _, err := db.Conn().ExecContext(ctx,
			`INSERT INTO interactions VALUES ('u3', 'c9', 'bookmark', ?)`, testNow); err != nil {
			t.Fatalf("insert: %v", err)
		}
		got, err := db.GetInteractions(ctx, "u3", 0)
		if err != nil {
			t.Fatalf("GetInteractions() error = %v", err)
		}
		if len(got) != 0 {
			t.Errorf("got %d events, want 0", len(got))
		}
	})
}

func TestContent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	published := testNow.Add(-72 * time.Hour)
	items := []*recommend.ContentFeatureProfile{
		{
			ContentID: "c1", Title: "Live Set", Category: "music", Tags: []string{"rock", "live", "rock"},
			FileType: "mp3", CreatorID: "alice", Fingerprint: []byte{0xab, 0xcd},
			Stats:   recommend.ContentStats{Views: 100, Likes: 10, Purchases: 5, Rating: 4.5, PublishedAt: published},
			Creator: recommend.CreatorStats{Revenue: 1200, Sales: 40, Followers: 300, Rating: 4.8},
		},
		{ContentID: "c2", Category: "video", FileType: "mp4", CreatorID: "bob"},
		{ContentID: "c3", Category: "music", Tags: []string{"indie"}, FileType: "flac", CreatorID: "alice",
			Creator: recommend.CreatorStats{Revenue: 1200, Sales: 40, Followers: 300, Rating: 4.8}},
	}
	for _, p := range items {
		if err := db.UpsertContent(ctx, p); err != nil {
			t.Fatalf("UpsertContent(%s) error = %v", p.ContentID, err)
		}
	}

	t.Run("get features", func(t *testing.T) {
		got, err := db.GetContentFeatures(ctx, "c1")
		if err != nil {
			t.Fatalf("GetContentFeatures() error = %v", err)
		}
		if got.Title != "Live Set" || got.Category != "music" || got.FileType != "mp3" || got.CreatorID != "alice" {
			t.Errorf("profile = %+v", got)
		}
		if len(got.Tags) != 2 || got.Tags[0] != "live" || got.Tags[1] != "rock" {
			t.Errorf("Tags = %v, want [live rock]", got.Tags)
		}
		if string(got.Fingerprint) != string([]byte{0xab, 0xcd}) {
			t.Errorf("Fingerprint = %x", got.Fingerprint)
		}
		if got.Stats.Views != 100 || got.Stats.Purchases != 5 || got.Stats.Rating != 4.5 {
			t.Errorf("Stats = %+v", got.Stats)
		}
		if !got.Stats.PublishedAt.Equal(published) {
			t.Errorf("PublishedAt = %v, want %v", got.Stats.PublishedAt, published)
		}
		if got.Creator.Followers != 300 || got.Creator.Revenue != 1200 {
			t.Errorf("Creator = %+v", got.Creator)
		}
	})

	t.Run("missing optional columns", func(t *testing.T) {
		got, err := db.GetContentFeatures(ctx, "c2")
		if err != nil {
			t.Fatalf("GetContentFeatures() error = %v", err)
		}
		if len(got.Tags) != 0 || len(got.Fingerprint) != 0 || !got.Stats.PublishedAt.IsZero() {
			t.Errorf("profile = %+v", got)
		}
		if got.Creator != (recommend.CreatorStats{}) {
			t.Errorf("Creator = %+v, want zero", got.Creator)
		}
	})

	t.Run("not found", func(t *testing.T) {
		_, err := db.GetContentFeatures(ctx, "nope")
		if !errors.Is(err, recommend.ErrContentNotFound) {
			t.Errorf("error = %v, want ErrContentNotFound", err)
		}
	})

	t.Run("upsert replaces tags", func(t *testing.T) {
		updated := *items[2]
		updated.Tags = []string{"folk"}
		if err := db.UpsertContent(ctx, &updated); err != nil {
			t.Fatalf("UpsertContent() error = %v", err)
		}
		got, err := db.GetContentFeatures(ctx, "c3")
		if err != nil {
			t.Fatalf("GetContentFeatures() error = %v", err)
		}
		if len(got.Tags) != 1 || got.Tags[0] != "folk" {
			t.Errorf("Tags = %v, want [folk]", got.Tags)
		}
	})

	tests := []struct {
		name   string
		filter recommend.CatalogFilter
		want   []string
	}{
		{"all", recommend.CatalogFilter{}, []string{"c1", "c2", "c3"}},
		{"category", recommend.CatalogFilter{Category: "music"}, []string{"c1", "c3"}},
		{"limit counts items not tags", recommend.CatalogFilter{Limit: 1}, []string{"c1"}},
		{"unknown category", recommend.CatalogFilter{Category: "games"}, nil},
	}
	for _, tt := range tests {
		t.Run("list "+tt.name, func(t *testing.T) {
			got, err := db.ListCatalog(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListCatalog() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d profiles, want %d", len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].ContentID != id {
					t.Errorf("profile %d = %s, want %s", i, got[i].ContentID, id)
				}
			}
		})
	}
}

func TestCancelledContext(t *testing.T) {
	db := setupTestDB(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := db.GetInteractions(ctx, "u1", time.Hour); err == nil {
		t.Error("GetInteractions() with cancelled context succeeded")
	}
	if _, err := db.ListCatalog(ctx, recommend.CatalogFilter{}); err == nil {
		t.Error("ListCatalog() with cancelled context succeeded")
	}
}
