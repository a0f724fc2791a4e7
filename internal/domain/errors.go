package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a domain failure so transport layers can map it to a
// status without string matching.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindConflict   ErrorKind = "conflict"
	KindState      ErrorKind = "state"
	KindNotFound   ErrorKind = "not_found"
	KindDependency ErrorKind = "dependency"
)

// Error is a classified domain failure. It wraps the underlying cause, if
// any, so errors.Is still reaches repository sentinels.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds a classified error without an underlying cause.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WrapError classifies an underlying failure.
func WrapError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// IsKind reports whether err is (or wraps) a domain error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind == kind
	}
	return false
}
