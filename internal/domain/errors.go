package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
// Implementing this interface enables extensible error handling (OCP compliance).
type HTTPError interface {
	error
	StatusCode() int
}

// Domain error types implementing HTTPError interface
type (
	// NotFoundError indicates a resource was not found
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input
	ValidationError struct {
		Message string
	}

	// UnauthorizedError indicates authentication failure
	UnauthorizedError struct {
		Message string
	}

	// ForbiddenError indicates authorization failure
	ForbiddenError struct {
		Message string
	}
)

// Error implementations
func (e *NotFoundError) Error() string     { return e.Message }
func (e *ValidationError) Error() string   { return e.Message }
func (e *UnauthorizedError) Error() string { return e.Message }
func (e *ForbiddenError) Error() string    { return e.Message }

// StatusCode implementations (HTTPError interface)
func (e *NotFoundError) StatusCode() int     { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int   { return http.StatusBadRequest }
func (e *UnauthorizedError) StatusCode() int { return http.StatusUnauthorized }
func (e *ForbiddenError) StatusCode() int    { return http.StatusForbidden }

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrValidation     = errors.New("validation failed")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrUsageLimit     = errors.New("usage limit reached")
	ErrStateCorrupted = errors.New("conversation state corrupted")
)

// UsageLimitError indicates a per-conversation usage cap was hit.
// Carries which limit was exceeded so clients can show a precise message.
type UsageLimitError struct {
	Action string // "generate", "verify", "regenerate"
	Limit  int
}

func (e *UsageLimitError) Error() string {
	return fmt.Sprintf("usage limit reached for %s (max %d per conversation)", e.Action, e.Limit)
}

func (e *UsageLimitError) StatusCode() int { return http.StatusTooManyRequests }

// Is allows errors.Is() to match against ErrUsageLimit
func (e *UsageLimitError) Is(target error) bool {
	return target == ErrUsageLimit
}

// StateCorruptedError indicates a conversation references a section that is not
// part of the question catalog. Fatal for that conversation; must never be
// reported as normal interview completion.
type StateCorruptedError struct {
	ConversationID string
	Section        string
}

func (e *StateCorruptedError) Error() string {
	return fmt.Sprintf("conversation %s references unknown section %q", e.ConversationID, e.Section)
}

func (e *StateCorruptedError) StatusCode() int { return http.StatusInternalServerError }

// Is allows errors.Is() to match against ErrStateCorrupted
func (e *StateCorruptedError) Is(target error) bool {
	return target == ErrStateCorrupted
}

// ConflictError represents a lost-update conflict on a conversation, e.g. two
// answer submissions racing on the same question index.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func (e *ConflictError) StatusCode() int { return http.StatusConflict }

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}
