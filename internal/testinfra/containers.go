// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

//go:build integration

package testinfra

import (
	"context"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
)

// SkipIfNoDocker skips the test when no Docker daemon answers.
func SkipIfNoDocker(t *testing.T) {
	t.Helper()

	if !IsDockerAvailable() {
		t.Skip("Skipping test: Docker not available")
	}
}

// IsDockerAvailable checks if Docker daemon is running and accessible.
func IsDockerAvailable() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return exec.CommandContext(ctx, "docker", "info").Run() == nil
}

// StartCacheBackend starts the Redis server behind the shared
// recommendation cache tier and terminates it when t finishes. The test
// is skipped without Docker.
func StartCacheBackend(t *testing.T, opts ...RedisOption) *RedisContainer {
	t.Helper()
	SkipIfNoDocker(t)

	ctx := context.Background()
	redis, err := NewRedisContainer(ctx, opts...)
	if err != nil {
		t.Fatalf("start recommendation cache backend: %v", err)
	}
	t.Cleanup(func() { CleanupContainer(t, ctx, redis) })
	return redis
}

var keyReplacer = strings.NewReplacer("/", ":", " ", "_", "*", "_", "?", "_", "[", "_", "]", "_")

// CacheKeyPrefix returns a key prefix owned by t, so tests sharing one
// backend never see each other's cached recommendations. Redis glob
// characters are replaced because prefix invalidation matches on them.
func CacheKeyPrefix(t *testing.T) string {
	return "curator-test:" + keyReplacer.Replace(t.Name()) + ":"
}

// CleanupContainer terminates container, logging rather than failing on
// error so that it can be deferred.
func CleanupContainer(t *testing.T, ctx context.Context, container testcontainers.Container) {
	t.Helper()

	if container == nil {
		return
	}
	if err := container.Terminate(ctx); err != nil {
		t.Logf("Warning: failed to terminate cache backend %s: %v", container.GetContainerID(), err)
	}
}
