package llm

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind classifies a provider failure. The gateway never retries on its
// own; callers branch on the kind to decide between retry and fallback.
type ErrorKind string

const (
	KindAuth            ErrorKind = "auth"
	KindQuotaExceeded   ErrorKind = "quota_exceeded"
	KindRateLimited     ErrorKind = "rate_limited"
	KindTransient       ErrorKind = "transient_network"
	KindInvalidResponse ErrorKind = "invalid_response"
)

// Error is the tagged failure returned by every provider implementation
type Error struct {
	Kind     ErrorKind
	Provider string
	Err      error
}

// Error implements error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Kind)
}

// Unwrap exposes the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf extracts the error kind from a provider error chain
func KindOf(err error) (ErrorKind, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind, true
	}
	return "", false
}

// GenerateParams are the per-call generation knobs
type GenerateParams struct {
	SystemInstruction string
	Temperature       float64
	MaxOutputTokens   int
}

// Provider is a uniform interface to interchangeable text-generation backends
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string, params GenerateParams) (string, error)
}
