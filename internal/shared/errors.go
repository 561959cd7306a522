package shared

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation indicates missing or malformed input.
	ErrValidation = errors.New("validation failed")
	// ErrConflict indicates a uniqueness violation such as a taken username.
	ErrConflict = errors.New("conflict")
	// ErrAuthentication indicates bad credentials or an unusable token.
	ErrAuthentication = errors.New("authentication failed")
	// ErrPermission indicates a role or ownership violation.
	ErrPermission = errors.New("permission denied")
	// ErrNotFound indicates a missing record, or one hidden by ownership scoping.
	ErrNotFound = errors.New("not found")
)

// Error carries a client-facing message for one of the sentinel kinds above.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.Error()
	}
	return e.Message
}

// Unwrap exposes the kind to errors.Is.
func (e *Error) Unwrap() error {
	return e.Kind
}

// Validation builds a validation error with the given message.
func Validation(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

// Conflict builds a conflict error with the given message.
func Conflict(message string) error {
	return &Error{Kind: ErrConflict, Message: message}
}

// Unauthenticated builds an authentication error with the given message.
func Unauthenticated(message string) error {
	return &Error{Kind: ErrAuthentication, Message: message}
}

// Forbidden builds a permission error with the given message.
func Forbidden(message string) error {
	return &Error{Kind: ErrPermission, Message: message}
}

// NotFound builds a not-found error with the given message.
func NotFound(message string) error {
	return &Error{Kind: ErrNotFound, Message: message}
}

// UserSafeMessage returns the message that may be shown to API clients.
func UserSafeMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Error()
	}
	for _, kind := range []error{ErrValidation, ErrConflict, ErrAuthentication, ErrPermission, ErrNotFound} {
		if errors.Is(err, kind) {
			return kind.Error()
		}
	}
	return "Internal server error"
}
