// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package recommend

import (
	"errors"
	"fmt"
)

// Error kinds. Match with errors.Is.
var (
	// ErrInsufficientHistory means the user has no usable interactions.
	ErrInsufficientHistory = errors.New("insufficient interaction history")

	// ErrUpstreamUnavailable means a gateway or cache call failed or timed out.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrComputationFailure means an engine or stage failed unexpectedly.
	ErrComputationFailure = errors.New("computation failure")

	// ErrInvalidParameter means caller-supplied options are malformed.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrCatalogEmpty means the catalog has nothing to recommend.
	ErrCatalogEmpty = errors.New("catalog empty")

	// ErrContentNotFound means a content ID is unknown to the catalog.
	ErrContentNotFound = errors.New("content not found")

	// ErrTrainingInProgress means another training run holds the lock.
	ErrTrainingInProgress = errors.New("training already in progress")
)

// Error carries an error kind together with the operation that failed.
type Error struct {
	Kind error
	Op   string
	Err  error

	// Stack is set for recovered panics.
	Stack string
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// newError wraps err with a kind for op.
func newError(kind error, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// InvalidParameter returns an ErrInvalidParameter error for a named field.
func InvalidParameter(field, format string, args ...any) error {
	return newError(ErrInvalidParameter, field, fmt.Errorf(format, args...))
}

// KindOf returns the kind of err, or nil when err carries none.
func KindOf(err error) error {
	for _, kind := range []error{
		ErrInvalidParameter,
		ErrContentNotFound,
		ErrTrainingInProgress,
		ErrInsufficientHistory,
		ErrCatalogEmpty,
		ErrUpstreamUnavailable,
		ErrComputationFailure,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// KindName returns a short machine-readable name for the kind of err.
func KindName(err error) string {
	switch KindOf(err) {
	case ErrInvalidParameter:
		return "invalid_parameter"
	case ErrContentNotFound:
		return "content_not_found"
	case ErrTrainingInProgress:
		return "training_in_progress"
	case ErrInsufficientHistory:
		return "insufficient_history"
	case ErrCatalogEmpty:
		return "catalog_empty"
	case ErrUpstreamUnavailable:
		return "upstream_unavailable"
	case ErrComputationFailure:
		return "computation_failure"
	default:
		return "unknown"
	}
}

// triggersFallback reports whether err should be answered by the fallback
// provider instead of being surfaced.
func triggersFallback(err error) bool {
	switch KindOf(err) {
	case ErrInvalidParameter, ErrContentNotFound:
		return false
	default:
		return true
	}
}
