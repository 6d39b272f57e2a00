// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/curator/internal/auth"
	"github.com/tomtom215/curator/internal/authz"
	"github.com/tomtom215/curator/internal/middleware"
	"github.com/tomtom215/curator/internal/recommend"
)

// BasePath is the mount point of the recommendation API.
const BasePath = "/api/v1/recommendations"

// Router wires the handlers to their routes and middleware.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	authn         *auth.Middleware
	authz         *authz.Middleware
}

// NewRouter creates a router.
func NewRouter(handler *Handler, chiMW *ChiMiddleware, authn *auth.Middleware, authzMW *authz.Middleware) *Router {
	return &Router{
		handler:       handler,
		chiMiddleware: chiMW,
		authn:         authn,
		authz:         authzMW,
	}
}

// SetupChi builds the HTTP handler.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to every route in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // must be global to answer OPTIONS preflight
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.AccessLog)

	r.Get("/health", router.handler.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route(BasePath, func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(chimiddleware.Compress(5, "application/json"))
		r.Use(APISecurityHeaders())

		// Item-to-item lookups need no caller identity.
		r.Get("/similar-content/{id}", router.handler.SimilarContent)
		r.Get("/similar-content-features/{id}", router.handler.SimilarContentFeatures)

		r.Group(func(r chi.Router) {
			r.Use(router.authn.Authenticate)

			r.Group(func(r chi.Router) {
				r.Use(router.authz.Require(authz.ObjectRecommendations, authz.ActionRead))
				r.Get("/", router.handler.Recommendations)
				r.Get("/fallback", router.handler.FallbackRecommendations)
				r.Get("/user-based", router.handler.EngineRecommendations(recommend.MethodUserBased))
				r.Get("/item-based", router.handler.EngineRecommendations(recommend.MethodItemBased))
				r.Get("/content-based", router.handler.EngineRecommendations(recommend.MethodContentBased))
				r.Get("/similar-users", router.handler.SimilarUsers)
				r.Get("/ab-test", router.handler.ABTest)
			})

			r.With(router.authz.Require(authz.ObjectInteractions, authz.ActionWrite)).
				Post("/track-interaction", router.handler.TrackInteraction)
			r.With(router.authz.Require(authz.ObjectCache, authz.ActionClearOwn)).
				Delete("/cache", router.handler.ClearCache)

			// Operator endpoints.
			r.With(router.authz.Require(authz.ObjectPerformance, authz.ActionRead)).
				Get("/performance", router.handler.Performance)
			r.With(router.authz.Require(authz.ObjectTraining, authz.ActionRead)).
				Get("/status", router.handler.Status)
			r.With(router.authz.Require(authz.ObjectTraining, authz.ActionWrite)).
				Post("/train", router.handler.Train)
			r.With(router.authz.Require(authz.ObjectEvaluation, authz.ActionWrite)).
				Post("/evaluate", router.handler.Evaluate)
		})
	})

	return r
}
