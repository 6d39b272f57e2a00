// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/curator/internal/recommend"
)

type fakeTrainer struct {
	calls   atomic.Int32
	err     error
	trained chan struct{}
	sawDL   atomic.Bool
}

func newFakeTrainer(err error) *fakeTrainer {
	return &fakeTrainer{err: err, trained: make(chan struct{}, 16)}
}

func (f *fakeTrainer) Train(ctx context.Context) (*recommend.Snapshot, error) {
	n := f.calls.Add(1)
	if _, ok := ctx.Deadline(); ok {
		f.sawDL.Store(true)
	}
	select {
	case f.trained <- struct{}{}:
	default:
	}
	if f.err != nil {
		return nil, f.err
	}
	return &recommend.Snapshot{Version: int64(n)}, nil
}

func waitTrained(t *testing.T, f *fakeTrainer, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-f.trained:
		case <-time.After(5 * time.Second):
			t.Fatalf("trained %d times, want %d", f.calls.Load(), n)
		}
	}
}

func TestTrainerServiceSchedule(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
	}{
		{"success", nil},
		{"failure keeps running", errors.New("duckdb locked")},
		{"already running", &recommend.Error{Kind: recommend.ErrTrainingInProgress, Op: "train"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			trainer := newFakeTrainer(tt.err)
			svc := NewTrainerService(trainer, TrainerConfig{
				TrainOnStartup: true,
				Interval:       10 * time.Millisecond,
				Timeout:        time.Second,
			}, zerolog.Nop())

			ctx, cancel := context.WithCancel(t.Context())
			done := make(chan error, 1)
			go func() { done <- svc.Serve(ctx) }()

			// startup run plus at least two ticks
			waitTrained(t, trainer, 3)
			cancel()
			if err := <-done; !errors.Is(err, context.Canceled) {
				t.Errorf("Serve() error = %v, want context.Canceled", err)
			}
			if !trainer.sawDL.Load() {
				t.Error("training ran without a deadline")
			}
		})
	}
}

func TestTrainerServiceNoStartupRun(t *testing.T) {
	t.Parallel()

	trainer := newFakeTrainer(nil)
	svc := NewTrainerService(trainer, TrainerConfig{Interval: time.Hour}, zerolog.Nop())

	ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
	defer cancel()
	_ = svc.Serve(ctx)

	if got := trainer.calls.Load(); got != 0 {
		t.Errorf("Train called %d times, want 0", got)
	}
	if svc.String() != "trainer" {
		t.Errorf("String() = %q", svc.String())
	}
}
