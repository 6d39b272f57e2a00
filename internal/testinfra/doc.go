// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

// Package testinfra provides container-backed infrastructure for
// integration tests.
//
// The package is only compiled with the integration build tag:
//
//	go test -tags integration ./internal/cache/...
//
// # Cache Backend
//
// StartCacheBackend starts a disposable Redis server for exercising the
// shared recommendation cache tier, and CacheKeyPrefix keeps each test's
// entries apart:
//
//	func TestRedisStore(t *testing.T) {
//	    backend := testinfra.StartCacheBackend(t)
//	    store, err := cache.NewRedis(ctx, cache.RedisConfig{
//	        Addr:   backend.Addr,
//	        Prefix: testinfra.CacheKeyPrefix(t),
//	    })
//	    // ...
//	}
//
// Tests skip cleanly when Docker is not available.
package testinfra
