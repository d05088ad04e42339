package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Common application errors with proper types for error handling

var (
	// ErrNotFound indicates a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates missing or invalid authentication
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the user's role doesn't grant access
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidInput indicates invalid input data
	ErrInvalidInput = errors.New("invalid input")

	// ErrTimeout indicates an upstream call exceeded its deadline
	ErrTimeout = errors.New("request timed out")

	// ErrUnavailable indicates the upstream backend could not be reached
	ErrUnavailable = errors.New("upstream unavailable")

	// ErrInternal indicates an internal server error
	ErrInternal = errors.New("internal error")
)

// FallbackUserMessage is shown when the backend supplied nothing usable.
const FallbackUserMessage = "Terjadi kesalahan, silakan coba lagi"

// TimeoutUserMessage is shown for deadline-exceeded upstream calls.
const TimeoutUserMessage = "Permintaan melebihi batas waktu, silakan coba lagi"

// UpstreamError carries the structured error body returned by the
// TunasKarier backend: an HTTP status, an optional top-level message and an
// optional list of field-level errors.
type UpstreamError struct {
	StatusCode int
	Message    string
	Errors     []string
}

func (e *UpstreamError) Error() string {
	if len(e.Errors) > 0 {
		return fmt.Sprintf("upstream error (status %d): %s", e.StatusCode, strings.Join(e.Errors, "; "))
	}
	if e.Message != "" {
		return fmt.Sprintf("upstream error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("upstream error (status %d)", e.StatusCode)
}

// Unwrap maps the upstream status onto the sentinel taxonomy so callers can
// branch with errors.Is instead of inspecting status codes.
func (e *UpstreamError) Unwrap() error {
	switch e.StatusCode {
	case 401:
		return ErrUnauthorized
	case 403:
		return ErrForbidden
	case 404:
		return ErrNotFound
	}
	if e.StatusCode >= 400 && e.StatusCode < 500 {
		return ErrInvalidInput
	}
	return ErrInternal
}

// UserMessage returns the most specific human-readable string available:
// field-level errors first, then the top-level message, then the fallback.
func (e *UpstreamError) UserMessage() string {
	if len(e.Errors) > 0 {
		return strings.Join(e.Errors, ", ")
	}
	if e.Message != "" {
		return e.Message
	}
	return FallbackUserMessage
}

// UserMessage extracts a user-facing message for any error produced by the
// upstream layer, applying the same priority rule.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.UserMessage()
	}
	if errors.Is(err, ErrTimeout) {
		return TimeoutUserMessage
	}
	return FallbackUserMessage
}

// NotFoundError creates a not found error with context
func NotFoundError(resource string) error {
	return fmt.Errorf("%s %w", resource, ErrNotFound)
}

// InvalidInputError creates an invalid input error with context
func InvalidInputError(field, reason string) error {
	return fmt.Errorf("%s: %s: %w", field, reason, ErrInvalidInput)
}

// InternalError creates an internal error with context
func InternalError(msg string) error {
	return fmt.Errorf("%s: %w", msg, ErrInternal)
}

// Is checks if an error matches a target error (works with wrapped errors)
func Is(err, target error) bool {
	return errors.Is(err, target)
}
