// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Common application errors.
var (
	// Storage errors.
	ErrNotFound = errors.New("not found")

	// Classification errors.
	ErrNoModel              = errors.New("no model available")
	ErrClassificationFailed = errors.New("classification failed")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ErrorKind classifies a collaborator failure. Callers branch on the kind
// instead of matching error message substrings.
type ErrorKind string

// Error kinds for external collaborator calls.
const (
	KindTimeout       ErrorKind = "timeout"
	KindAuthExpired   ErrorKind = "auth_expired"
	KindQuotaExceeded ErrorKind = "quota_exceeded"
	KindMalformed     ErrorKind = "malformed"
	KindUnavailable   ErrorKind = "unavailable"
)

// ExternalError is a failed call to an external collaborator, tagged with
// the stage that failed so partial success can be reported precisely.
type ExternalError struct {
	Err   error
	Stage string
	Kind  ErrorKind
}

func (e *ExternalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Stage, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Stage, e.Kind)
}

func (e *ExternalError) Unwrap() error {
	return e.Err
}

// NewExternalError creates a stage-tagged external collaborator error.
func NewExternalError(stage string, kind ErrorKind, err error) error {
	return &ExternalError{Stage: stage, Kind: kind, Err: err}
}

// KindOf extracts the error kind from err, classifying plain transport
// errors when no ExternalError is present.
func KindOf(err error) ErrorKind {
	var extErr *ExternalError
	if errors.As(err, &extErr) {
		return extErr.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	return KindUnavailable
}

// StageOf returns the failing stage name, or the fallback when err carries
// no stage tag.
func StageOf(err error, fallback string) string {
	var extErr *ExternalError
	if errors.As(err, &extErr) && extErr.Stage != "" {
		return extErr.Stage
	}
	return fallback
}

// ValidationError marks a structurally invalid webhook payload. It is the
// only error class surfaced to the HTTP caller as a 400.
type ValidationError struct {
	Detail string
}

func (e *ValidationError) Error() string {
	return e.Detail
}

// NewValidationError creates a payload validation error.
func NewValidationError(format string, args ...any) error {
	return &ValidationError{Detail: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a payload validation error.
func IsValidation(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}

// IsRetryable determines if an error should trigger a retry.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrRateLimit) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return false
}
