// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/tomtom215/curator/internal/testinfra"
)

func TestRedis_Integration(t *testing.T) {
	ctx := context.Background()
	backend := testinfra.StartCacheBackend(t)

	store, err := NewRedis(ctx, RedisConfig{Addr: backend.Addr, Prefix: testinfra.CacheKeyPrefix(t)})
	if err != nil {
		t.Fatalf("NewRedis: %v", err)
	}
	defer store.Close()

	testStoreContract(t, store)

	t.Run("ttl", func(t *testing.T) {
		if err := store.Set(ctx, "ttl", []byte("x"), time.Second); err != nil {
			t.Fatalf("Set: %v", err)
		}
		time.Sleep(1500 * time.Millisecond)
		if _, ok, _ := store.Get(ctx, "ttl"); ok {
			t.Error("key outlived its TTL")
		}
	})

	t.Run("isolated per test", func(t *testing.T) {
		other, err := NewRedis(ctx, RedisConfig{Addr: backend.Addr, Prefix: testinfra.CacheKeyPrefix(t)})
		if err != nil {
			t.Fatalf("NewRedis: %v", err)
		}
		defer other.Close()

		if err := store.Set(ctx, "recommendations:u9:a", []byte("v"), time.Minute); err != nil {
			t.Fatalf("Set: %v", err)
		}
		if _, ok, _ := other.Get(ctx, "recommendations:u9:a"); ok {
			t.Error("subtest prefix saw the parent test's entry")
		}
	})

	t.Run("glob characters in prefix", func(t *testing.T) {
		_ = store.Set(ctx, "recommendations:u*:a", []byte("v"), time.Minute)
		_ = store.Set(ctx, "recommendations:u1:a", []byte("v"), time.Minute)
		n, err := store.DeletePrefix(ctx, "recommendations:u*:")
		if err != nil || n != 1 {
			t.Errorf("DeletePrefix = %d, %v; want 1", n, err)
		}
	})
}
