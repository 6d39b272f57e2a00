// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/curator/internal/logging"
	"github.com/tomtom215/curator/internal/metrics"
)

// Snapshot is one complete, immutable set of trained models. Requests load
// it once and use it throughout, so a concurrent swap is never observed
// half-way.
type Snapshot struct {
	Version   int64
	TrainedAt time.Time
	Duration  time.Duration
	Users     int
	Items     int

	Catalog map[string]*ContentFeatureProfile
	Models  map[Method]Model
}

// Model returns the trained model for m, or nil.
func (s *Snapshot) Model(m Method) Model {
	if s == nil {
		return nil
	}
	return s.Models[m]
}

// TrainingStatus describes the trainer for the status endpoint.
type TrainingStatus struct {
	Training      bool      `json:"isTraining"`
	Version       int64     `json:"version"`
	TrainedAt     time.Time `json:"trainedAt,omitempty"`
	DurationMs    int64     `json:"lastTrainingDurationMs"`
	Users         int       `json:"users"`
	Items         int       `json:"items"`
	CatalogSize   int       `json:"catalogSize"`
	LastError     string    `json:"lastError,omitempty"`
	LastAttemptAt time.Time `json:"lastAttemptAt,omitempty"`
}

// Trainer builds snapshots from the gateways and publishes them by atomic
// swap. At most one training run proceeds at a time.
type Trainer struct {
	interactions InteractionGateway
	content      ContentGateway
	engines      []Engine
	window       time.Duration
	workers      int

	current atomic.Pointer[Snapshot]
	version atomic.Int64
	running atomic.Bool
	trainMu sync.Mutex
	lazy    singleflight.Group

	statusMu      sync.RWMutex
	lastError     string
	lastAttemptAt time.Time

	onSwap []func(*Snapshot)
}

// NewTrainer creates a trainer over the given engines.
func NewTrainer(interactions InteractionGateway, content ContentGateway, engines []Engine, cfg *Config) *Trainer {
	return &Trainer{
		interactions: interactions,
		content:      content,
		engines:      engines,
		window:       cfg.HistoryWindow,
		workers:      cfg.Workers,
	}
}

// OnSwap registers a callback run after each published snapshot.
// Callbacks must be registered before the first Train.
func (t *Trainer) OnSwap(fn func(*Snapshot)) {
	t.onSwap = append(t.onSwap, fn)
}

// Current returns the published snapshot, or nil before the first run.
func (t *Trainer) Current() *Snapshot {
	return t.current.Load()
}

// Ensure returns the current snapshot, training one first when none has
// been published. Concurrent callers share a single run.
func (t *Trainer) Ensure(ctx context.Context) (*Snapshot, error) {
	if s := t.current.Load(); s != nil {
		return s, nil
	}

	ch := t.lazy.DoChan("ensure", func() (any, error) {
		if s := t.current.Load(); s != nil {
			return s, nil
		}
		return t.train(context.WithoutCancel(ctx), true)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Snapshot), nil
	}
}

// Train builds and publishes a new snapshot. It returns
// ErrTrainingInProgress when another run holds the lock.
func (t *Trainer) Train(ctx context.Context) (*Snapshot, error) {
	return t.train(ctx, false)
}

func (t *Trainer) train(ctx context.Context, wait bool) (*Snapshot, error) {
	if wait {
		t.trainMu.Lock()
		defer t.trainMu.Unlock()
		// A manual run may have published while we waited.
		if s := t.current.Load(); s != nil {
			return s, nil
		}
	} else {
		if !t.trainMu.TryLock() {
			return nil, newError(ErrTrainingInProgress, "train", nil)
		}
		defer t.trainMu.Unlock()
	}

	t.running.Store(true)
	defer t.running.Store(false)

	start := time.Now()
	logging.Info().Msg("starting similarity training")

	snap, err := t.build(ctx)
	t.recordAttempt(start, err)
	if err != nil {
		metrics.RecordTraining(time.Since(start), 0, err)
		logging.Error().Err(err).Str("error_kind", KindName(err)).Msg("similarity training failed")
		return nil, err
	}

	snap.Version = t.version.Add(1)
	snap.Duration = time.Since(start)
	t.current.Store(snap)
	metrics.RecordTraining(snap.Duration, snap.Version, nil)

	logging.Info().
		Int64("version", snap.Version).
		Int("users", snap.Users).
		Int("items", snap.Items).
		Dur("duration", snap.Duration).
		Msg("similarity training complete")

	for _, fn := range t.onSwap {
		fn(snap)
	}
	return snap, nil
}

// build reads the gateways and trains every engine without publishing.
func (t *Trainer) build(ctx context.Context) (*Snapshot, error) {
	events, err := t.interactions.ListInteractions(ctx, t.window)
	if err != nil {
		return nil, fmt.Errorf("load interactions: %w", err)
	}
	catalog, err := t.content.ListCatalog(ctx, CatalogFilter{})
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return t.BuildSnapshot(ctx, BuildDataset(events, catalog, time.Now()))
}

// BuildSnapshot trains every engine on ds concurrently and returns the
// unpublished snapshot. Evaluation uses it to train on a held-out dataset.
func (t *Trainer) BuildSnapshot(ctx context.Context, ds *Dataset) (*Snapshot, error) {
	models := make([]Model, len(t.engines))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, t.workers))
	for i, eng := range t.engines {
		g.Go(func() error {
			start := time.Now()
			m, err := safeCall("train."+string(eng.Method()), func() (Model, error) {
				return eng.Train(gctx, ds)
			})
			metrics.RecordStage("train_"+string(eng.Method()), time.Since(start), errKind(err))
			if err != nil {
				return fmt.Errorf("train %s: %w", eng.Method(), err)
			}
			models[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		if KindOf(err) == nil {
			err = newError(ErrComputationFailure, "train", err)
		}
		return nil, err
	}

	snap := &Snapshot{
		TrainedAt: ds.BuiltAt,
		Users:     len(ds.Vectors),
		Items:     ds.Items(),
		Catalog:   ds.Catalog,
		Models:    make(map[Method]Model, len(models)),
	}
	for _, m := range models {
		snap.Models[m.Method()] = m
	}
	return snap, nil
}

func (t *Trainer) recordAttempt(at time.Time, err error) {
	t.statusMu.Lock()
	defer t.statusMu.Unlock()
	t.lastAttemptAt = at
	t.lastError = ""
	if err != nil {
		t.lastError = err.Error()
	}
}

// Running reports whether a training run is in progress.
func (t *Trainer) Running() bool {
	return t.running.Load()
}

// Status reports the trainer state.
func (t *Trainer) Status() TrainingStatus {
	t.statusMu.RLock()
	st := TrainingStatus{
		Training:      t.running.Load(),
		LastError:     t.lastError,
		LastAttemptAt: t.lastAttemptAt,
	}
	t.statusMu.RUnlock()

	if s := t.current.Load(); s != nil {
		st.Version = s.Version
		st.TrainedAt = s.TrainedAt
		st.DurationMs = s.Duration.Milliseconds()
		st.Users = s.Users
		st.Items = s.Items
		st.CatalogSize = len(s.Catalog)
	}
	return st
}

// errKind is the metric label for an optional error.
func errKind(err error) string {
	if err == nil {
		return ""
	}
	return KindName(err)
}
