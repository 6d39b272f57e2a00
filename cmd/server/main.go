// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/curator/internal/api"
	"github.com/tomtom215/curator/internal/auth"
	"github.com/tomtom215/curator/internal/authz"
	"github.com/tomtom215/curator/internal/config"
	"github.com/tomtom215/curator/internal/eventprocessor"
	"github.com/tomtom215/curator/internal/logging"
	"github.com/tomtom215/curator/internal/supervisor"
	"github.com/tomtom215/curator/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("curator exited with error")
	}
}

//nolint:gocyclo // sequential setup steps
func run() error {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Logging.Level
	logCfg.Format = cfg.Logging.Format
	logCfg.Caller = cfg.Logging.Caller
	logCfg.Service = "curator"
	logCfg.Version = version
	logging.Init(logCfg)
	logging.Info().
		Str("database", cfg.Database.Driver).
		Str("cache", cfg.Cache.Backend).
		Str("events", cfg.Events.Backend).
		Str("auth_mode", cfg.Security.AuthMode).
		Msg("starting curator")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	recComps, err := initRecommend(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := recComps.Close(); err != nil {
			logging.Error().Err(err).Msg("error closing storage")
		}
	}()
	orchestrator := recComps.Orchestrator

	bus, err := eventprocessor.NewBus(&cfg.Events, logging.NewWatermillAdapter())
	if err != nil {
		return fmt.Errorf("failed to create event bus: %w", err)
	}
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Error().Err(err).Msg("error closing event bus")
		}
	}()

	authenticator, err := auth.NewAuthenticator(&cfg.Security)
	if err != nil {
		return fmt.Errorf("failed to initialize authentication: %w", err)
	}
	if authenticator.Name() == string(auth.AuthModeNone) {
		logging.Warn().Msg("AUTH_MODE=none: identities are taken from X-User-ID headers; use only behind a trusted gateway")
	}
	enforcer, err := authz.NewEnforcer(authz.EnforcerConfig{AdminRole: cfg.Security.AdminRole})
	if err != nil {
		return fmt.Errorf("failed to initialize authorization: %w", err)
	}
	authzMW := authz.NewMiddleware(enforcer)

	handler := api.NewHandler(orchestrator, recComps.Recorder, bus, authzMW, api.HandlerConfig{
		Version:              version,
		TrainTimeout:         cfg.Recommend.TrainTimeout,
		ManualTrainPerMinute: cfg.Recommend.ManualTrainPerMinute,
	})
	router := api.NewRouter(
		handler,
		api.NewChiMiddleware(api.ChiMiddlewareConfigFromServer(&cfg.Server)),
		auth.NewMiddleware(authenticator),
		authzMW,
	)
	if cfg.Server.RateLimitDisabled {
		logging.Warn().Msg("rate limiting is disabled (DISABLE_RATE_LIMIT=true)")
	}

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	treeCfg := supervisor.DefaultTreeConfig()
	tree := supervisor.NewTree(logging.NewSlogLogger("supervisor"), treeCfg)

	tree.AddPipelineService(services.NewTrainerService(orchestrator, services.TrainerConfig{
		TrainOnStartup: cfg.Recommend.TrainOnStartup,
		Interval:       cfg.Recommend.TrainInterval,
		Timeout:        cfg.Recommend.TrainTimeout,
	}, logging.WithComponent("trainer")))
	tree.AddMessagingService(eventprocessor.NewConsumer(bus, orchestrator))
	tree.AddAPIService(services.NewAPIService(server, services.APIConfig{
		Addr:            server.Addr,
		BasePath:        api.BasePath,
		ShutdownTimeout: treeCfg.ShutdownTimeout,
		OnDrained:       handler.WaitBackground,
	}, logging.WithComponent("api")))
	logging.Info().Msg("services added to supervisor tree")

	errCh := tree.ServeBackground(ctx)
	select {
	case <-ctx.Done():
		logging.Info().Msg("shutdown signal received, waiting for services to stop")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("supervisor tree error")
		}
	}
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("supervisor shutdown error")
		}
	}

	// Normally already waited for by the API service after draining.
	handler.WaitBackground()

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("service failed to stop within timeout")
		}
	}

	logging.Info().Msg("curator stopped")
	return nil
}
