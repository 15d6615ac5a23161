// Package apperr defines the stable error vocabulary shared by every layer
// of the service. Lower layers raise the most specific kind they can
// determine; the HTTP layer maps kinds to status codes without inspecting
// the wrapped detail.
package apperr

import (
	"errors"
	"fmt"
)

// Sentinel kinds, stable for errors.Is and for mapping to API status codes.
var (
	ErrNotFound     = errors.New("not_found")
	ErrValidation   = errors.New("validation_failed")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrInternal     = errors.New("internal")
)

// Error carries a kind, a safe human-readable message, and an optional
// wrapped cause. The message is rendered verbatim to callers for every kind
// except ErrInternal; the cause is for server-side logs only.
type Error struct {
	Kind error
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Msg != "":
		return fmt.Sprintf("%v: %s: %v", e.Kind, e.Msg, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%v: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("%v: %s", e.Kind, e.Msg)
	}
}

// Unwrap exposes the kind so errors.Is(err, apperr.ErrConflict) works
// regardless of how deep the error travelled.
func (e *Error) Unwrap() error { return e.Kind }

// Cause returns the wrapped internal error, if any.
func (e *Error) Cause() error { return e.Err }

// NotFound reports a missing resource.
func NotFound(msg string) error { return &Error{Kind: ErrNotFound, Msg: msg} }

// Validation reports rejected input.
func Validation(msg string) error { return &Error{Kind: ErrValidation, Msg: msg} }

// Conflict reports a uniqueness or state conflict.
func Conflict(msg string) error { return &Error{Kind: ErrConflict, Msg: msg} }

// Unauthorized reports a failed or missing credential.
func Unauthorized(msg string) error { return &Error{Kind: ErrUnauthorized, Msg: msg} }

// Forbidden reports an authenticated principal lacking a required role.
func Forbidden(msg string) error { return &Error{Kind: ErrForbidden, Msg: msg} }

// Internal wraps an unexpected failure. The cause never reaches clients.
func Internal(msg string, err error) error { return &Error{Kind: ErrInternal, Msg: msg, Err: err} }

// Message returns the safe message for err when it is an *Error, falling
// back to the plain error text otherwise.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Msg != "" {
		return e.Msg
	}
	return err.Error()
}
