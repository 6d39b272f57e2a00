// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package auth

import (
	"errors"
	"net/http"

	"github.com/tomtom215/curator/internal/logging"
	"github.com/tomtom215/curator/internal/metrics"
	"github.com/tomtom215/curator/internal/models"
)

// Middleware authenticates requests before they reach a handler.
type Middleware struct {
	authenticator Authenticator
}

// NewMiddleware creates the middleware.
func NewMiddleware(a Authenticator) *Middleware {
	return &Middleware{authenticator: a}
}

// Authenticate rejects unauthenticated requests with 401 and stores the
// principal in the request context otherwise.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, err := m.authenticator.Authenticate(r)
		if err != nil {
			metrics.RecordAuthFailure(m.authenticator.Name(), failureReason(err))
			logging.Ctx(r.Context()).Debug().Err(err).Str("mode", m.authenticator.Name()).Msg("authentication failed")
			models.WriteError(w, r, http.StatusUnauthorized, models.CodeUnauthorized, "authentication required")
			return
		}

		ctx := WithPrincipal(r.Context(), principal)
		ctx = logging.ContextWithUserID(ctx, principal.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrNoCredentials):
		return "missing"
	case errors.Is(err, ErrExpiredCredentials):
		return "expired"
	default:
		return "invalid"
	}
}
