// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/curator/internal/logging"
)

// countingService blocks until cancelled. When failFirst is set the
// first run returns an error so the supervisor restarts it.
type countingService struct {
	name      string
	starts    atomic.Int32
	failFirst bool
	started   chan struct{}
}

func newCountingService(name string, failFirst bool) *countingService {
	return &countingService{name: name, failFirst: failFirst, started: make(chan struct{}, 8)}
}

func (s *countingService) Serve(ctx context.Context) error {
	n := s.starts.Add(1)
	s.started <- struct{}{}
	if s.failFirst && n == 1 {
		return errors.New("boom")
	}
	<-ctx.Done()
	return ctx.Err()
}

func (s *countingService) String() string { return s.name }

func waitStarts(t *testing.T, s *countingService, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-s.started:
		case <-time.After(5 * time.Second):
			t.Fatalf("%s started %d times, want %d", s.name, s.starts.Load(), n)
		}
	}
}

func TestTreeRunsEveryLayer(t *testing.T) {
	t.Parallel()

	tree := NewTree(logging.NewSlogLogger("supervisor"), TreeConfig{ShutdownTimeout: time.Second})
	pipeline := newCountingService("trainer", false)
	messaging := newCountingService("consumer", false)
	api := newCountingService("http", false)
	tree.AddPipelineService(pipeline)
	tree.AddMessagingService(messaging)
	tree.AddAPIService(api)

	ctx, cancel := context.WithCancel(t.Context())
	done := tree.ServeBackground(ctx)

	waitStarts(t, pipeline, 1)
	waitStarts(t, messaging, 1)
	waitStarts(t, api, 1)

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("tree did not stop")
	}
	if report, err := tree.UnstoppedServiceReport(); err != nil || len(report) != 0 {
		t.Errorf("UnstoppedServiceReport() = %v, %v", report, err)
	}
}

func TestTreeRestartsFailedService(t *testing.T) {
	t.Parallel()

	tree := NewTree(logging.NewSlogLogger("supervisor"), TreeConfig{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		ShutdownTimeout:  time.Second,
	})
	flaky := newCountingService("consumer", true)
	steady := newCountingService("http", false)
	tree.AddMessagingService(flaky)
	tree.AddAPIService(steady)

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()
	tree.ServeBackground(ctx)

	waitStarts(t, flaky, 2)
	waitStarts(t, steady, 1)
	if got := steady.starts.Load(); got != 1 {
		t.Errorf("steady service started %d times, want 1", got)
	}
}

func TestDefaultTreeConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultTreeConfig()
	if cfg.FailureThreshold != 5 || cfg.FailureDecay != 30 || cfg.FailureBackoff != 15*time.Second || cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("DefaultTreeConfig() = %+v", cfg)
	}
}
