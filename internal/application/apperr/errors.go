// Package apperr carries the error taxonomy shared by orchestrators,
// projections and the HTTP adapter.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for callers.
type Kind int

const (
	// KindStore is an opaque persistence failure. Unclassified errors are treated as this kind.
	KindStore Kind = iota
	// KindValidation is malformed or missing input, reported before any store access.
	KindValidation
	// KindNotFound is a reference that does not resolve.
	KindNotFound
	// KindConflict is a duplicate value for a unique field.
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "store"
	}
}

// Error is a classified, human-readable error.
type Error struct {
	Kind    Kind
	Field   string // set for conflicts and field-level validation
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Validation builds a KindValidation error.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// InvalidField builds a KindValidation error for one field, wrapping the rule violation.
func InvalidField(field string, err error) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: err.Error(), Err: err}
}

// NotFound builds a KindNotFound error.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Conflict builds a KindConflict error naming the conflicting field.
func Conflict(field, message string) *Error {
	return &Error{Kind: KindConflict, Field: field, Message: message}
}

// Store wraps a persistence failure behind an opaque message.
func Store(message string, err error) *Error {
	return &Error{Kind: KindStore, Message: message, Err: err}
}

// KindOf classifies err. Errors outside the taxonomy are KindStore.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStore
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// MessageOf returns the human-readable message without the wrapped cause.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}

// FieldOf returns the field a classified error refers to, if any.
func FieldOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Field
	}
	return ""
}
