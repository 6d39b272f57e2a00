// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

// Package cache provides the key-value cache port used in front of every
// expensive recommendation computation, with an in-process LRU tier, a Redis
// tier, a Badger tier and a two-tier composite.
package cache

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("cache: store closed")

// Store is the cache port. Values are opaque bytes; a Set is visible to
// readers either completely or not at all.
type Store interface {
	// Get returns the value stored under key. A missing or expired key
	// reports found=false with a nil error.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Set stores value under key for ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes the given keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	// DeletePrefix removes every key starting with prefix and reports how
	// many were removed.
	DeletePrefix(ctx context.Context, prefix string) (int, error)

	// Clear removes every key owned by the store.
	Clear(ctx context.Context) error

	// Close releases the store's resources.
	Close() error
}

// Namespace partitions the key space by operation.
type Namespace string

// Cache namespaces.
const (
	NamespaceRecommendations         Namespace = "recommendations"
	NamespaceSimilarUsers            Namespace = "similar_users"
	NamespaceSimilarContent          Namespace = "similar_content"
	NamespaceSimilarContentFeatures  Namespace = "similar_content_features"
	NamespaceFallbackRecommendations Namespace = "fallback_recommendations"
)

// Namespaces lists every namespace.
var Namespaces = []Namespace{
	NamespaceRecommendations,
	NamespaceSimilarUsers,
	NamespaceSimilarContent,
	NamespaceSimilarContentFeatures,
	NamespaceFallbackRecommendations,
}

// userNamespaces are the namespaces whose subject is a user ID.
var userNamespaces = []Namespace{
	NamespaceRecommendations,
	NamespaceSimilarUsers,
	NamespaceFallbackRecommendations,
}

// Key builds "{namespace}:{subject}:{options}". The subject is escaped so
// that one subject's keys never share a prefix with another's.
func Key(ns Namespace, subject, options string) string {
	var b strings.Builder
	b.Grow(len(ns) + len(subject) + len(options) + 2)
	b.WriteString(string(ns))
	b.WriteByte(':')
	b.WriteString(url.QueryEscape(subject))
	b.WriteByte(':')
	b.WriteString(options)
	return b.String()
}

// SubjectPrefix is the prefix shared by every key of subject in ns.
func SubjectPrefix(ns Namespace, subject string) string {
	return string(ns) + ":" + url.QueryEscape(subject) + ":"
}

// InvalidateUser removes every user-scoped entry of userID and reports the
// number of removed keys.
func InvalidateUser(ctx context.Context, s Store, userID string) (int, error) {
	var total int
	var errs []error
	for _, ns := range userNamespaces {
		n, err := s.DeletePrefix(ctx, SubjectPrefix(ns, userID))
		total += n
		if err != nil {
			errs = append(errs, err)
		}
	}
	return total, errors.Join(errs...)
}
