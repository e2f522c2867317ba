// Package mpserr defines the error taxonomy shared by the tensor, svdkernel
// and mps packages. Every error raised by the engine carries one of a fixed
// set of Kind values so callers can branch on failure category without
// string matching or type assertions.
package mpserr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind identifies the category of a simulation error.
type Kind string

const (
	KindInvalidShape       Kind = "invalid_shape"
	KindInvalidGateShape   Kind = "invalid_gate_shape"
	KindIndexOutOfRange    Kind = "index_out_of_range"
	KindInvalidIndexOrder  Kind = "invalid_index_order"
	KindNonAdjacentSites   Kind = "non_adjacent_sites"
	KindConflictingOptions Kind = "conflicting_options"
	KindInvalidOption      Kind = "invalid_option"
	KindInvalidChain       Kind = "invalid_chain"
	KindNumericError       Kind = "numeric_error"
	KindUnsupportedArity   Kind = "unsupported_arity"
)

// Error is the concrete error type raised by this module's packages.
type Error struct {
	Kind Kind
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.msg, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.msg)
}

// Unwrap allows errors.Is/errors.As to reach the wrapped cause.
func (e *Error) Unwrap() error {
	return e.err
}

// New builds an *Error of the given kind with the given message and a
// stack trace captured via pkg/errors.
func New(kind Kind, msg string) error {
	return errors.WithStack(&Error{Kind: kind, msg: msg})
}

// Newf is New with fmt-style formatting.
func Newf(kind Kind, format string, args ...interface{}) error {
	return errors.WithStack(&Error{Kind: kind, msg: fmt.Sprintf(format, args...)})
}

// Wrap attaches a kind and message to an existing cause, preserving it for
// errors.Is/errors.As and capturing a stack trace at the wrap site.
func Wrap(kind Kind, cause error, msg string) error {
	if cause == nil {
		return New(kind, msg)
	}
	return errors.WithStack(&Error{Kind: kind, msg: msg, err: cause})
}

// Wrapf is Wrap with fmt-style formatting.
func Wrapf(kind Kind, cause error, format string, args ...interface{}) error {
	return Wrap(kind, cause, fmt.Sprintf(format, args...))
}

// Is reports whether err (or any error it wraps) carries the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	for err != nil {
		if errors.As(err, &e) {
			return e.Kind == kind
		}
		return false
	}
	return false
}

// KindOf extracts the Kind of err, if any, and whether one was found.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}
