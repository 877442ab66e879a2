// Package errors provides domain-specific errors for the tokker application.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common domain error conditions.
var (
	// ErrCacheInvalid marks a discovery cache that is missing, malformed, or
	// fingerprint-stale. It is internal: callers rebuild via discovery and
	// never surface it to the user.
	ErrCacheInvalid = errors.New("discovery cache invalid")

	// ErrProviderUnavailable marks a provider whose optional backing
	// dependency is not usable on this host. Discovery swallows it and omits
	// the provider from the snapshot.
	ErrProviderUnavailable = errors.New("provider unavailable")

	ErrTextRequired    = errors.New("text required")
	ErrModelRequired   = errors.New("model name required")
	ErrHistoryDisabled = errors.New("history disabled")
)

// ErrorCode categorizes errors for handling and reporting.
type ErrorCode string

const (
	CodeValidation    ErrorCode = "VALIDATION"
	CodeNotFound      ErrorCode = "NOT_FOUND"
	CodeProvider      ErrorCode = "PROVIDER"
	CodeCache         ErrorCode = "CACHE"
	CodeConfiguration ErrorCode = "CONFIG"
)

// TokkerError wraps errors with additional context for debugging and handling.
type TokkerError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error returns a formatted error string including the code, message, and cause if present.
func (e *TokkerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error for use with errors.Is and errors.As.
func (e *TokkerError) Unwrap() error {
	return e.Cause
}

// NewError creates a new TokkerError with the given code, message, and optional cause.
func NewError(code ErrorCode, message string, cause error) *TokkerError {
	return &TokkerError{
		Code:    code,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// WithContext adds a key-value pair to the error's context and returns the error.
// This allows for method chaining when adding multiple context values.
func WithContext(err *TokkerError, key string, value interface{}) *TokkerError {
	if err.Context == nil {
		err.Context = make(map[string]interface{})
	}
	err.Context[key] = value
	return err
}

// ModelNotFoundError reports that a model name resolved to no provider,
// statically or dynamically. It carries the queried name and the installed
// provider names so the presentation layer can render guidance.
type ModelNotFoundError struct {
	Model     string
	Providers []string
}

// Error returns the canonical not-found message.
func (e *ModelNotFoundError) Error() string {
	if len(e.Providers) == 0 {
		return fmt.Sprintf("model '%s' not found: no providers installed", e.Model)
	}
	return fmt.Sprintf("model '%s' not found with installed providers: %s",
		e.Model, strings.Join(e.Providers, ", "))
}

// NewModelNotFound creates a ModelNotFoundError for the given model and
// installed provider names.
func NewModelNotFound(model string, providers []string) *ModelNotFoundError {
	return &ModelNotFoundError{Model: model, Providers: providers}
}

// ProviderRuntimeError reports a failure inside a resolved provider during
// tokenization or probing. The registry never interprets or retries it; the
// cause propagates opaque to the caller.
type ProviderRuntimeError struct {
	Provider string
	Err      error
}

// Error returns a formatted error string naming the failing provider.
func (e *ProviderRuntimeError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

// Unwrap returns the underlying provider error.
func (e *ProviderRuntimeError) Unwrap() error {
	return e.Err
}

// NewProviderRuntime wraps a provider failure with the provider's name.
func NewProviderRuntime(provider string, err error) *ProviderRuntimeError {
	return &ProviderRuntimeError{Provider: provider, Err: err}
}

// Is reports whether err matches target using errors.Is semantics.
// This is a convenience wrapper around the standard library's errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target and sets target to that error value.
// This is a convenience wrapper around the standard library's errors.As.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
