// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// AuthMode selects how callers are authenticated.
type AuthMode string

const (
	AuthModeJWT  AuthMode = "jwt"
	AuthModeNone AuthMode = "none"
)

// ParseAuthMode parses a configured mode name.
func ParseAuthMode(s string) (AuthMode, error) {
	switch m := AuthMode(strings.ToLower(strings.TrimSpace(s))); m {
	case AuthModeJWT, AuthModeNone:
		return m, nil
	default:
		return "", fmt.Errorf("unknown auth mode %q", s)
	}
}

// Authentication errors.
var (
	ErrNoCredentials      = errors.New("no credentials provided")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrExpiredCredentials = errors.New("credentials expired")
)

// DefaultRole is assigned when a credential carries no role.
const DefaultRole = "user"

// Principal is an authenticated caller.
type Principal struct {
	UserID   string `json:"user_id"`
	Username string `json:"username,omitempty"`
	Role     string `json:"role"`
}

// IsAdmin reports whether the principal holds adminRole.
func (p *Principal) IsAdmin(adminRole string) bool {
	return p != nil && p.Role == adminRole
}

type principalKey struct{}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal stored by the middleware.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}
