// Package apperrors defines the error taxonomy shared by services and
// handlers: NotFound, InvalidState, IOFailure and Conflict. Services wrap
// causes with a kind; handlers map kinds to HTTP status codes.
package apperrors

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindNotFound     Kind = "not_found"
	KindInvalidState Kind = "invalid_state"
	KindIOFailure    Kind = "io_failure"
	KindConflict     Kind = "conflict"
)

// Error carries a kind, an operator-facing message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NotFound(format string, args ...interface{}) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func InvalidState(format string, args ...interface{}) error {
	return &Error{Kind: KindInvalidState, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...interface{}) error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// IOFailure wraps a filesystem/compression/database cause so the operator
// gets enough detail to retry manually.
func IOFailure(err error, format string, args ...interface{}) error {
	return &Error{Kind: KindIOFailure, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of err, or KindIOFailure for plain errors that
// reached the boundary unwrapped.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindIOFailure
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
