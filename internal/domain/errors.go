package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned when a request cannot be screened at all
	ErrInvalidInput = errors.New("invalid input")

	// ErrProviderDegraded marks a screening that completed without semantic matching
	ErrProviderDegraded = errors.New("similarity provider degraded")

	// ErrProviderUnavailable is returned by embedding providers that cannot serve requests
	ErrProviderUnavailable = errors.New("similarity provider unavailable")
)

// AuditError reports a failure to persist or publish a screening result.
// The decision it relates to is still returned to the caller.
type AuditError struct {
	Sink string
	Err  error
}

func (e *AuditError) Error() string {
	return fmt.Sprintf("audit sink %s: %v", e.Sink, e.Err)
}

func (e *AuditError) Unwrap() error {
	return e.Err
}
