// Package apperr defines the error taxonomy shared by the services and the
// HTTP layer. Every service error wraps one of the sentinels below so callers
// can classify it with errors.Is and map it to a stable code.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrForbidden              = errors.New("forbidden")
	ErrNotFound               = errors.New("not found")
	ErrInvalidState           = errors.New("invalid state")
	ErrValidation             = errors.New("validation error")
	ErrConflict               = errors.New("conflict")

	// ErrNotParticipant is returned when a user acts on a chat room they do
	// not belong to.
	ErrNotParticipant = fmt.Errorf("%w: user is not a participant in this chat room", ErrForbidden)
	// ErrAccessDenied is the websocket flavour of ErrNotParticipant; the
	// connection is closed with CloseAccessDenied.
	ErrAccessDenied = fmt.Errorf("%w: access denied", ErrForbidden)
)

// Stable codes returned to API clients.
const (
	CodeAuthenticationRequired = "AUTHENTICATION_REQUIRED"
	CodeForbidden              = "FORBIDDEN"
	CodeNotParticipant         = "NOT_PARTICIPANT"
	CodeAccessDenied           = "ACCESS_DENIED"
	CodeNotFound               = "NOT_FOUND"
	CodeInvalidState           = "INVALID_STATE"
	CodeValidation             = "VALIDATION_ERROR"
	CodeConflict               = "CONFLICT"
	CodeRateLimited            = "RATE_LIMITED"
	CodeInternal               = "INTERNAL"
)

// Websocket close codes (private range 4000-4999).
const (
	CloseAccessDenied = 4403
	CloseNotFound     = 4404
	CloseInternal     = 4500
)

func NotFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func Forbidden(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrForbidden, fmt.Sprintf(format, args...))
}

func InvalidState(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidState, fmt.Sprintf(format, args...))
}

func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func Conflict(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// Code classifies err. The more specific forbidden variants are checked
// before ErrForbidden itself.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAuthenticationRequired):
		return CodeAuthenticationRequired
	case errors.Is(err, ErrNotParticipant):
		return CodeNotParticipant
	case errors.Is(err, ErrAccessDenied):
		return CodeAccessDenied
	case errors.Is(err, ErrForbidden):
		return CodeForbidden
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrInvalidState):
		return CodeInvalidState
	case errors.Is(err, ErrValidation):
		return CodeValidation
	case errors.Is(err, ErrConflict):
		return CodeConflict
	default:
		return CodeInternal
	}
}

// CloseCode maps a connect failure to a websocket close code and reason.
func CloseCode(err error) (int, string) {
	switch {
	case errors.Is(err, ErrForbidden):
		return CloseAccessDenied, CodeAccessDenied
	case errors.Is(err, ErrNotFound):
		return CloseNotFound, CodeNotFound
	default:
		return CloseInternal, CodeInternal
	}
}
