package domain

import (
	"errors"
	"fmt"
)

// FailureKind classifies an expected data-layer failure.
type FailureKind int

const (
	FailureUnknown FailureKind = iota
	FailureRateLimited             // HTTP 429 after the cooldown budget is spent
	FailureServerError             // HTTP 5xx
	FailureNotFound                // HTTP 404
	FailureHTTP                    // any other non-2xx status
	FailureTimeout                 // request deadline exceeded
	FailureConnectivity            // DNS/dial/connection reset, or offline
	FailureNoData                  // no network result and no cached record of any age
)

func (k FailureKind) String() string {
	switch k {
	case FailureRateLimited:
		return "RATE_LIMITED"
	case FailureServerError:
		return "SERVER_ERROR"
	case FailureNotFound:
		return "NOT_FOUND"
	case FailureHTTP:
		return "HTTP_ERROR"
	case FailureTimeout:
		return "TIMEOUT"
	case FailureConnectivity:
		return "CONNECTIVITY"
	case FailureNoData:
		return "NO_DATA"
	default:
		return "UNKNOWN"
	}
}

// Retryable reports whether a failure of this kind is transient enough to
// be worth another attempt. Client errors and NO_DATA never are.
func (k FailureKind) Retryable() bool {
	switch k {
	case FailureRateLimited, FailureServerError, FailureTimeout, FailureConnectivity:
		return true
	default:
		return false
	}
}

// Failure is the single error type that crosses the data-layer boundary.
// Programming errors (bad arguments) are ordinary errors, never a Failure.
type Failure struct {
	Kind       FailureKind
	Message    string
	StatusCode int // 0 when the failure is not an HTTP status
	Cause      error
}

func (f *Failure) Error() string {
	if f.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", f.Kind, f.Message, f.Cause)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

func (f *Failure) Unwrap() error {
	return f.Cause
}

// NewFailure builds a Failure with an optional cause.
func NewFailure(kind FailureKind, message string, cause error) *Failure {
	return &Failure{Kind: kind, Message: message, Cause: cause}
}

// NewHTTPFailure builds a Failure for a concrete upstream status code.
func NewHTTPFailure(kind FailureKind, status int, message string) *Failure {
	return &Failure{Kind: kind, Message: message, StatusCode: status}
}

// KindOf extracts the FailureKind from an error chain.
// Errors that are not a Failure report FailureUnknown.
func KindOf(err error) FailureKind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return FailureUnknown
}

// IsNoData reports whether the error chain ends in a cache-exhausted state,
// so callers can render an empty/offline view instead of a raw error.
func IsNoData(err error) bool {
	return KindOf(err) == FailureNoData
}
