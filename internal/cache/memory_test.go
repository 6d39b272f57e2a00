// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestMemory_Contract(t *testing.T) {
	t.Parallel()
	testStoreContract(t, NewMemory(100))
}

func TestMemory_TTL(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemory(10)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	_ = m.Set(ctx, "short", []byte("1"), time.Second)
	_ = m.Set(ctx, "long", []byte("2"), time.Hour)

	now = now.Add(2 * time.Second)
	if _, ok, _ := m.Get(ctx, "short"); ok {
		t.Error("expired entry served")
	}
	if _, ok, _ := m.Get(ctx, "long"); !ok {
		t.Error("live entry missing")
	}

	_ = m.Set(ctx, "short2", []byte("3"), time.Second)
	now = now.Add(2 * time.Second)
	if n := m.CleanupExpired(); n != 1 {
		t.Errorf("CleanupExpired = %d, want 1", n)
	}
	if m.Len() != 1 {
		t.Errorf("Len = %d, want 1", m.Len())
	}
}

func TestMemory_LRUEviction(t *testing.T) {
	t.Parallel()

	m := NewMemory(3)
	ctx := context.Background()
	for _, k := range []string{"a", "b", "c"} {
		_ = m.Set(ctx, k, []byte(k), time.Hour)
	}
	// Touch a so that b is the least recently used.
	_, _, _ = m.Get(ctx, "a")
	_ = m.Set(ctx, "d", []byte("d"), time.Hour)

	if _, ok, _ := m.Get(ctx, "b"); ok {
		t.Error("least recently used entry not evicted")
	}
	for _, k := range []string{"a", "c", "d"} {
		if _, ok, _ := m.Get(ctx, k); !ok {
			t.Errorf("%s evicted", k)
		}
	}
	if m.Len() != 3 {
		t.Errorf("Len = %d, want 3", m.Len())
	}
}

func TestMemory_ValuesAreCopied(t *testing.T) {
	t.Parallel()

	m := NewMemory(10)
	ctx := context.Background()
	buf := []byte("original")
	_ = m.Set(ctx, "k", buf, time.Hour)
	buf[0] = 'X'

	got, _, _ := m.Get(ctx, "k")
	got[1] = 'Y'
	again, _, _ := m.Get(ctx, "k")
	if string(again) != "original" {
		t.Errorf("stored value mutated to %q", again)
	}
}

func TestMemory_Stats(t *testing.T) {
	t.Parallel()

	m := NewMemory(10)
	ctx := context.Background()
	_ = m.Set(ctx, "k", []byte("v"), time.Hour)
	_, _, _ = m.Get(ctx, "k")
	_, _, _ = m.Get(ctx, "missing")

	hits, misses, size := m.Stats()
	if hits != 1 || misses != 1 || size != 1 {
		t.Errorf("Stats = %d/%d/%d, want 1/1/1", hits, misses, size)
	}
}

func TestMemory_Closed(t *testing.T) {
	t.Parallel()

	m := NewMemory(10)
	_ = m.Close()
	if _, _, err := m.Get(context.Background(), "k"); !errors.Is(err, ErrClosed) {
		t.Errorf("Get after Close err = %v, want ErrClosed", err)
	}
	if err := m.Set(context.Background(), "k", nil, time.Minute); !errors.Is(err, ErrClosed) {
		t.Errorf("Set after Close err = %v, want ErrClosed", err)
	}
}

func TestMemory_Concurrent(t *testing.T) {
	t.Parallel()

	m := NewMemory(50)
	ctx := context.Background()
	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 200 {
				key := fmt.Sprintf("k%d", (g*200+i)%80)
				_ = m.Set(ctx, key, []byte(key), time.Minute)
				_, _, _ = m.Get(ctx, key)
				if i%50 == 0 {
					_, _ = m.DeletePrefix(ctx, "k1")
				}
			}
		}()
	}
	wg.Wait()
	if m.Len() > 50 {
		t.Errorf("Len = %d exceeds capacity", m.Len())
	}
}
