// Package apperr provides the engine's error taxonomy: every error that
// crosses a component boundary is categorized into one of a small set of
// kinds so reactors and RPC handlers can decide whether to retry, surface,
// or log-and-skip without string-matching messages.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error by the handling policy it implies.
type Kind string

const (
	InvalidRequest Kind = "invalid_request"
	NotFound       Kind = "not_found"
	Unsupported    Kind = "unsupported"
	Transient      Kind = "transient"
	Permanent      Kind = "permanent"
)

// Error wraps a cause with the operation that produced it and the kind that
// governs how callers should react.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on kind so errors.Is(err, apperr.NotFound.Sentinel()) style
// checks aren't needed; callers use KindOf instead (see below).
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

// New constructs an *Error for op/kind, wrapping err (which may be nil).
func New(op string, kind Kind, err error) *Error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// KindOf returns the Kind carried by err, or Permanent if err does not
// (transitively) wrap an *Error — an uncategorized error is treated as the
// least recoverable kind by default.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Permanent
}

// Builder constructs *Error values scoped to one component, in the manner
// of the teacher's pkg/utils.ErrorBuilder.
type Builder struct {
	component string
}

// NewBuilder returns a Builder that prefixes every error's Op with component.
func NewBuilder(component string) *Builder {
	return &Builder{component: component}
}

func (b *Builder) op(op string) string {
	if op == "" {
		return b.component
	}
	return b.component + "." + op
}

func (b *Builder) InvalidRequest(op string, err error) *Error {
	return New(b.op(op), InvalidRequest, err)
}

func (b *Builder) NotFound(op string, err error) *Error {
	return New(b.op(op), NotFound, err)
}

func (b *Builder) Unsupported(op string, err error) *Error {
	return New(b.op(op), Unsupported, err)
}

func (b *Builder) Transient(op string, err error) *Error {
	return New(b.op(op), Transient, err)
}

func (b *Builder) Permanent(op string, err error) *Error {
	return New(b.op(op), Permanent, err)
}
