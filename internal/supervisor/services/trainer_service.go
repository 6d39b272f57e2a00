// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/curator/internal/recommend"
)

// Trainer rebuilds the similarity snapshot.
type Trainer interface {
	Train(ctx context.Context) (*recommend.Snapshot, error)
}

// TrainerConfig schedules training.
type TrainerConfig struct {
	// TrainOnStartup runs a training pass as soon as the service starts.
	TrainOnStartup bool
	// Interval between scheduled runs.
	Interval time.Duration
	// Timeout bounds a single run.
	Timeout time.Duration
}

// TrainerService retrains the similarity snapshot on a schedule. A failed
// run is logged and retried at the next tick; it never fails the service.
type TrainerService struct {
	trainer Trainer
	cfg     TrainerConfig
	logger  zerolog.Logger
}

// NewTrainerService creates the service. Zero durations mean one hour for
// the interval and thirty minutes for the timeout.
//
//nolint:gocritic // zerolog.Logger is passed by value
func NewTrainerService(trainer Trainer, cfg TrainerConfig, logger zerolog.Logger) *TrainerService {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Minute
	}
	return &TrainerService{
		trainer: trainer,
		cfg:     cfg,
		logger:  logger.With().Str("service", "trainer").Logger(),
	}
}

// Serve implements suture.Service.
func (s *TrainerService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("train_on_startup", s.cfg.TrainOnStartup).
		Dur("train_interval", s.cfg.Interval).
		Msg("trainer service starting")

	if s.cfg.TrainOnStartup {
		s.run(ctx, "startup")
	}

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("trainer service shutting down")
			return ctx.Err()
		case <-ticker.C:
			s.run(ctx, "scheduled")
		}
	}
}

func (s *TrainerService) run(ctx context.Context, trigger string) {
	trainCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	start := time.Now()
	snap, err := s.trainer.Train(trainCtx)
	switch {
	case errors.Is(err, recommend.ErrTrainingInProgress):
		s.logger.Debug().Str("trigger", trigger).Msg("training already running, skipped")
	case err != nil:
		if ctx.Err() != nil {
			return
		}
		s.logger.Warn().Err(err).Str("trigger", trigger).Msg("training failed, will retry on schedule")
	default:
		s.logger.Info().
			Str("trigger", trigger).
			Int64("version", snap.Version).
			Dur("duration", time.Since(start)).
			Msg("training complete")
	}
}

func (s *TrainerService) String() string {
	return "trainer"
}
