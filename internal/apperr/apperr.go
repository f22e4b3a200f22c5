// Package apperr defines the structured error type shared by the
// orchestration core. Every failure surfaced to a caller carries a kind,
// a human-readable message, and a machine-readable detail payload naming
// the offending identifiers or paths.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for programmatic handling.
type Kind string

const (
	// KindConfiguration covers malformed project/module configuration and
	// structural violations found during discovery (duplicate names).
	KindConfiguration Kind = "configuration"
	// KindParameter covers bad caller input: unknown environment selectors
	// and capability requests no eligible plugin can serve.
	KindParameter Kind = "parameter"
	// KindPlugin covers plugin registration faults and reading the active
	// environment before it has been set.
	KindPlugin Kind = "plugin"
)

// Error is the structured error type used throughout the core.
type Error struct {
	Kind   Kind
	Msg    string
	Detail map[string]any
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New constructs an Error of the given kind.
func New(kind Kind, msg string, detail map[string]any) *Error {
	return &Error{Kind: kind, Msg: msg, Detail: detail}
}

// Configuration constructs a configuration error.
func Configuration(msg string, detail map[string]any) *Error {
	return New(KindConfiguration, msg, detail)
}

// Parameter constructs a parameter error.
func Parameter(msg string, detail map[string]any) *Error {
	return New(KindParameter, msg, detail)
}

// Plugin constructs a plugin error.
func Plugin(msg string, detail map[string]any) *Error {
	return New(KindPlugin, msg, detail)
}

// Wrap attaches an underlying cause to an Error built by one of the
// constructors above.
func Wrap(err error, kind Kind, msg string, detail map[string]any) *Error {
	return &Error{Kind: kind, Msg: msg, Detail: detail, Err: err}
}

// IsKind reports whether err (or any error it wraps) is an *Error of the
// given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
