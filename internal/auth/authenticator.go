// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/tomtom215/curator/internal/config"
	"github.com/tomtom215/curator/internal/validation"
)

// Header names read in AuthModeNone.
const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"
)

// TokenCookieName is the cookie checked when no bearer token is present.
const TokenCookieName = "token"

// Authenticator resolves the principal of a request.
type Authenticator interface {
	Authenticate(r *http.Request) (*Principal, error)
	Name() string
}

// JWTAuthenticator accepts HS256 bearer tokens.
type JWTAuthenticator struct {
	manager *JWTManager
}

// NewJWTAuthenticator wraps manager.
func NewJWTAuthenticator(manager *JWTManager) *JWTAuthenticator {
	return &JWTAuthenticator{manager: manager}
}

// Name implements Authenticator.
func (a *JWTAuthenticator) Name() string { return string(AuthModeJWT) }

// Authenticate implements Authenticator.
func (a *JWTAuthenticator) Authenticate(r *http.Request) (*Principal, error) {
	token := extractJWTToken(r)
	if token == "" {
		return nil, ErrNoCredentials
	}
	claims, err := a.manager.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	role := claims.Role
	if role == "" {
		role = DefaultRole
	}
	return &Principal{UserID: claims.Subject, Username: claims.Username, Role: role}, nil
}

// extractJWTToken reads a bearer token from the Authorization header,
// falling back to the token cookie.
func extractJWTToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if c, err := r.Cookie(TokenCookieName); err == nil {
		return c.Value
	}
	return ""
}

// HeaderAuthenticator trusts the X-User-ID and X-User-Role headers. It is
// only meant for development and tests.
type HeaderAuthenticator struct{}

// Name implements Authenticator.
func (HeaderAuthenticator) Name() string { return string(AuthModeNone) }

// Authenticate implements Authenticator.
func (HeaderAuthenticator) Authenticate(r *http.Request) (*Principal, error) {
	userID := strings.TrimSpace(r.Header.Get(HeaderUserID))
	if userID == "" {
		return nil, ErrNoCredentials
	}
	if !validation.IsIdentifier(userID) {
		return nil, fmt.Errorf("%w: malformed %s", ErrInvalidCredentials, HeaderUserID)
	}
	role := strings.TrimSpace(r.Header.Get(HeaderUserRole))
	if role == "" {
		role = DefaultRole
	}
	return &Principal{UserID: userID, Username: userID, Role: role}, nil
}

// NewAuthenticator builds the authenticator for the configured mode.
func NewAuthenticator(cfg *config.SecurityConfig) (Authenticator, error) {
	mode, err := ParseAuthMode(cfg.AuthMode)
	if err != nil {
		return nil, err
	}
	if mode == AuthModeNone {
		return HeaderAuthenticator{}, nil
	}
	manager, err := NewJWTManager(cfg)
	if err != nil {
		return nil, err
	}
	return NewJWTAuthenticator(manager), nil
}
