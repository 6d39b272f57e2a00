// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package authz

import (
	"net/http"

	"github.com/tomtom215/curator/internal/auth"
	"github.com/tomtom215/curator/internal/logging"
	"github.com/tomtom215/curator/internal/metrics"
	"github.com/tomtom215/curator/internal/models"
)

// Middleware guards handlers with the enforcer.
type Middleware struct {
	enforcer *Enforcer
}

// NewMiddleware creates the middleware.
func NewMiddleware(enforcer *Enforcer) *Middleware {
	return &Middleware{enforcer: enforcer}
}

// Require allows the request through only when the principal's role may
// perform action on object. It must run after auth.Middleware.
func (m *Middleware) Require(object, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := auth.PrincipalFromContext(r.Context())
			if !ok {
				models.WriteError(w, r, http.StatusUnauthorized, models.CodeUnauthorized, "authentication required")
				return
			}

			allowed, err := m.enforcer.Enforce(principal.Role, object, action)
			if err != nil {
				logging.Ctx(r.Context()).Error().Err(err).Str("object", object).Str("action", action).Msg("authorization error")
				models.WriteError(w, r, http.StatusInternalServerError, models.CodeInternal, "authorization failed")
				return
			}
			metrics.RecordAuthzDecision(object, action, allowed)
			if !allowed {
				models.WriteError(w, r, http.StatusForbidden, models.CodeForbidden, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Allowed reports whether the principal in the request may perform
// action on object. Errors deny.
func (m *Middleware) Allowed(r *http.Request, object, action string) bool {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		return false
	}
	allowed, err := m.enforcer.Enforce(principal.Role, object, action)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("authorization error")
		return false
	}
	return allowed
}
