// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/curator/internal/auth"
	"github.com/tomtom215/curator/internal/eventprocessor"
	"github.com/tomtom215/curator/internal/models"
	"github.com/tomtom215/curator/internal/recommend"
)

// Recommender is the orchestrator surface used by the handlers.
type Recommender interface {
	GetRecommendations(ctx context.Context, userID string, opts recommend.Options) (*recommend.Result, error)
	EngineRecommendations(ctx context.Context, userID string, m recommend.Method, opts recommend.Options) (*recommend.Result, error)
	ABRecommendations(ctx context.Context, userID string, opts recommend.Options) (*recommend.Result, recommend.Assignment, error)
	Fallback(ctx context.Context, userID string, opts recommend.Options) (*recommend.Result, error)
	SimilarContent(ctx context.Context, contentID string, limit int) (*recommend.Result, error)
	SimilarByFeatures(ctx context.Context, contentID string, limit int) (*recommend.Result, error)
	SimilarUsers(ctx context.Context, userID string, limit int) ([]recommend.SimilarityScore, recommend.Source, error)
	Assign(userID string) recommend.Assignment
	InvalidateUser(ctx context.Context, userID string) (int, error)
	FlushCache(ctx context.Context) error
	Performance() recommend.PerformanceReport
	TrainingStatus() recommend.TrainingStatus
	Train(ctx context.Context) (*recommend.Snapshot, error)
	Evaluate(ctx context.Context, testSetSize int) (*recommend.Evaluation, error)
}

var _ Recommender = (*recommend.Orchestrator)(nil)

// Permissions answers authorization questions a handler asks itself.
type Permissions interface {
	Allowed(r *http.Request, object, action string) bool
}

// HandlerConfig holds the handler settings.
type HandlerConfig struct {
	Version string
	// TrainTimeout bounds a manually triggered training run.
	TrainTimeout time.Duration
	// ManualTrainPerMinute throttles POST /train.
	ManualTrainPerMinute int
	// DefaultTestSetSize is used when POST /evaluate has no body.
	DefaultTestSetSize int
}

// Handler serves the recommendation endpoints.
type Handler struct {
	rec         Recommender
	recorder    recommend.InteractionRecorder
	publisher   eventprocessor.Publisher
	permissions Permissions
	cfg         HandlerConfig

	trainLimiter *rate.Limiter
	startTime    time.Time
	now          func() time.Time
	background   sync.WaitGroup
}

// NewHandler creates a handler. publisher may be nil, in which case
// tracked interactions invalidate the cache inline.
func NewHandler(rec Recommender, recorder recommend.InteractionRecorder, publisher eventprocessor.Publisher, permissions Permissions, cfg HandlerConfig) *Handler {
	if cfg.ManualTrainPerMinute < 1 {
		cfg.ManualTrainPerMinute = 1
	}
	if cfg.TrainTimeout <= 0 {
		cfg.TrainTimeout = 30 * time.Minute
	}
	if cfg.DefaultTestSetSize < 1 {
		cfg.DefaultTestSetSize = 100
	}
	return &Handler{
		rec:          rec,
		recorder:     recorder,
		publisher:    publisher,
		permissions:  permissions,
		cfg:          cfg,
		trainLimiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.ManualTrainPerMinute)), cfg.ManualTrainPerMinute),
		startTime:    time.Now(),
		now:          time.Now,
	}
}

// WaitBackground blocks until background work started by handlers, such
// as manual training, has finished.
func (h *Handler) WaitBackground() {
	h.background.Wait()
}

// principal returns the authenticated caller. The auth middleware
// guarantees one on every protected route.
func principal(w http.ResponseWriter, r *http.Request) (*auth.Principal, bool) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		models.WriteError(w, r, http.StatusUnauthorized, models.CodeUnauthorized, "authentication required")
	}
	return p, ok
}
