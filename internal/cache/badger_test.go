// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestBadger(t *testing.T, path, prefix string) *Badger {
	t.Helper()
	b, err := OpenBadger(path, prefix)
	if err != nil {
		t.Fatalf("OpenBadger: %v", err)
	}
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestBadger_Contract(t *testing.T) {
	t.Parallel()
	testStoreContract(t, openTestBadger(t, "", "curator:"))
}

func TestBadger_Persists(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "cache")
	ctx := context.Background()

	b, err := OpenBadger(dir, "")
	if err != nil {
		t.Fatalf("OpenBadger: %v", err)
	}
	if err := b.Set(ctx, "k", []byte("kept"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened := openTestBadger(t, dir, "")
	val, ok, err := reopened.Get(ctx, "k")
	if err != nil || !ok || string(val) != "kept" {
		t.Errorf("Get after reopen = %q, %v, %v", val, ok, err)
	}
}

func TestBadger_ClearRespectsPrefix(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b := openTestBadger(t, "", "mine:")
	other := &Badger{db: b.db, prefix: []byte("theirs:")}

	_ = b.Set(ctx, "k", []byte("1"), time.Hour)
	_ = other.Set(ctx, "k", []byte("2"), time.Hour)

	if err := b.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok, _ := b.Get(ctx, "k"); ok {
		t.Error("own key survived Clear")
	}
	if _, ok, _ := other.Get(ctx, "k"); !ok {
		t.Error("Clear removed another prefix's key")
	}
}
