package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ValidationError indicates a request that can never succeed: malformed
// input or a capability no registered model supports. No provider call is
// attempted.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
	}
	return "validation failed: " + e.Message
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ProviderError represents a single failed provider call. Fallback and
// ensemble strategies absorb it into their exhausted errors; single and
// load-balance runs return it unmodified.
type ProviderError struct {
	Provider    string
	Model       string
	Message     string
	Timeout     bool
	Retryable   bool
	PartialCost float64
	Cause       error
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("provider %s/%s: %s", e.Provider, e.Model, e.Message)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

func NewProviderError(provider, model, message string, cause error) *ProviderError {
	return &ProviderError{
		Provider:  provider,
		Model:     model,
		Message:   message,
		Retryable: true,
		Cause:     cause,
	}
}

// NewTimeoutError builds the timeout flavor of ProviderError, produced when
// a call's context deadline expires.
func NewTimeoutError(provider, model string, timeout time.Duration) *ProviderError {
	return &ProviderError{
		Provider:  provider,
		Model:     model,
		Message:   fmt.Sprintf("call timed out after %s", timeout),
		Timeout:   true,
		Retryable: true,
	}
}

// FallbackExhaustedError is returned when every candidate in a fallback
// chain failed. Attempts holds the underlying errors in attempt order.
type FallbackExhaustedError struct {
	Attempts []*ProviderError
}

func (e *FallbackExhaustedError) Error() string {
	msgs := make([]string, len(e.Attempts))
	for i, attempt := range e.Attempts {
		msgs[i] = attempt.Error()
	}
	return "all fallback candidates failed: " + strings.Join(msgs, "; ")
}

// EnsembleExhaustedError is returned when no ensemble member succeeded.
type EnsembleExhaustedError struct {
	Members []*ProviderError
}

func (e *EnsembleExhaustedError) Error() string {
	msgs := make([]string, len(e.Members))
	for i, member := range e.Members {
		msgs[i] = member.Error()
	}
	return "all ensemble members failed: " + strings.Join(msgs, "; ")
}

// CombineError indicates incompatible result shapes in an ensemble. Fatal,
// not retryable.
type CombineError struct {
	Task    TaskType
	Message string
}

func (e *CombineError) Error() string {
	return fmt.Sprintf("failed to combine %s results: %s", e.Task, e.Message)
}

// IsTimeout reports whether err is (or wraps) a timed-out provider call.
func IsTimeout(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Timeout
}

// IsRetryable reports whether err is worth retrying on another candidate.
func IsRetryable(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Retryable
}
