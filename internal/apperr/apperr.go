// Package apperr defines the error taxonomy shared across the service.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error so the boundary layer can pick a response
// code without inspecting error text.
type Kind int

const (
	// Validation covers malformed or missing input.
	Validation Kind = iota
	// NotFound covers unresolved booking/service/user ids.
	NotFound
	// Conflict covers overlaps, duplicate work and illegal state.
	Conflict
	// Unauthorized covers failed role or ownership guards.
	Unauthorized
	// Transient covers store-level failures that are safe to retry.
	Transient
)

// Error is a classified error. Sentinel values compare by identity
// with errors.Is, so guard failures stay distinguishable.
type Error struct {
	kind Kind
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.err }

// Kind returns the error classification.
func (e *Error) Kind() Kind { return e.kind }

// New creates a classified sentinel error.
func New(kind Kind, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

// Wrap classifies an underlying error with a message.
func Wrap(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...), err: err}
}

// KindOf extracts the kind of err. Unclassified errors report Transient,
// so unexpected store failures never masquerade as caller mistakes.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return Transient
}
