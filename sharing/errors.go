package sharing

import (
	"errors"
	"fmt"
)

// ErrorType classifies a sharing error.
type ErrorType string

const (
	ErrTypeUnknownPrincipal ErrorType = "unknown_principal"
	ErrTypeStoreUnavailable ErrorType = "store_unavailable"
	ErrTypeNotFound         ErrorType = "not_found"
	ErrTypeInvalidInput     ErrorType = "invalid_input"
	ErrTypeConflict         ErrorType = "conflict"
)

// Error represents a sharing-related error
type Error struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same Type, so errors.Is(err, ErrNotFound)
// works regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Type == e.Type
}

// Sentinels for errors.Is.
var (
	ErrUnknownPrincipal = &Error{Type: ErrTypeUnknownPrincipal, Message: "unknown principal"}
	ErrStoreUnavailable = &Error{Type: ErrTypeStoreUnavailable, Message: "store unavailable"}
	ErrNotFound         = &Error{Type: ErrTypeNotFound, Message: "not found"}
	ErrInvalidInput     = &Error{Type: ErrTypeInvalidInput, Message: "invalid input"}
	ErrConflict         = &Error{Type: ErrTypeConflict, Message: "conflict"}
)

// IsType reports whether err is, or wraps, an *Error of type t.
func IsType(err error, t ErrorType) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Type == t
	}
	return false
}

// UnknownPrincipal builds the error returned when an address or path has no principal.
func UnknownPrincipal(what string) error {
	return &Error{Type: ErrTypeUnknownPrincipal, Message: "unknown principal " + what}
}

// StoreUnavailable wraps a persistence failure, naming the operation.
func StoreUnavailable(op string, err error) error {
	return &Error{Type: ErrTypeStoreUnavailable, Message: op, Err: err}
}

// NotFound builds a not_found error.
func NotFound(format string, args ...any) error {
	return &Error{Type: ErrTypeNotFound, Message: fmt.Sprintf(format, args...)}
}

// InvalidInput builds an invalid_input error.
func InvalidInput(format string, args ...any) error {
	return &Error{Type: ErrTypeInvalidInput, Message: fmt.Sprintf(format, args...)}
}

// Conflict builds a conflict error.
func Conflict(format string, args ...any) error {
	return &Error{Type: ErrTypeConflict, Message: fmt.Sprintf(format, args...)}
}
