// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// HTTPServer is the lifecycle subset of *http.Server.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// APIConfig describes the recommendation API listener.
type APIConfig struct {
	// Addr is the listen address, used for logging only.
	Addr string
	// BasePath is the mount point of the recommendation routes.
	BasePath string
	// ShutdownTimeout bounds the drain of in-flight recommendation
	// requests. Zero means 10s.
	ShutdownTimeout time.Duration
	// OnDrained runs after the listener has stopped, before Serve returns.
	OnDrained func()
}

// APIService serves the recommendation API under supervision. Cancelling
// its context drains in-flight requests within ShutdownTimeout.
type APIService struct {
	server HTTPServer
	cfg    APIConfig
	logger zerolog.Logger
}

// NewAPIService wraps server.
//
//nolint:gocritic // zerolog.Logger is passed by value
func NewAPIService(server HTTPServer, cfg APIConfig, logger zerolog.Logger) *APIService {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	return &APIService{
		server: server,
		cfg:    cfg,
		logger: logger.With().Str("service", "recommend-api").Str("addr", cfg.Addr).Logger(),
	}
}

// Serve implements suture.Service.
func (s *APIService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	s.logger.Info().Str("base_path", s.cfg.BasePath).Msg("recommendation API listening")

	select {
	case err := <-errCh:
		if err != nil {
			s.logger.Error().Err(err).Msg("recommendation API stopped")
			return fmt.Errorf("recommendation API failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		return s.drain(ctx, errCh)
	}
}

func (s *APIService) drain(ctx context.Context, errCh <-chan error) error {
	start := time.Now()
	// ctx is already done; shutdown needs its own deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn().Err(err).Dur("timeout", s.cfg.ShutdownTimeout).Msg("in-flight recommendation requests cut off")
		return fmt.Errorf("recommendation API shutdown failed: %w", err)
	}
	<-errCh
	if s.cfg.OnDrained != nil {
		s.cfg.OnDrained()
	}
	s.logger.Info().Dur("drain", time.Since(start)).Msg("recommendation API drained")
	return ctx.Err()
}

func (s *APIService) String() string {
	return "recommend-api"
}
