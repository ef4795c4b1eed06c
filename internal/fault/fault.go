// Package fault carries the error taxonomy shared by the TTS workflow.
// Every failure is recoverable: callers classify with IsKind and surface
// the message, they never crash the session.
package fault

import (
	"errors"
	"fmt"
)

// Kind classifies a workflow failure.
type Kind string

const (
	KindUnknownProvider    Kind = "unknown_provider"
	KindActivationRejected Kind = "activation_rejected"
	KindTransport          Kind = "transport"
	KindValidation         Kind = "validation"
	KindGeneration         Kind = "generation"
	KindCatalogFetch       Kind = "catalog_fetch"
	KindCreditsFetch       Kind = "credits_fetch"
	KindUnknown            Kind = "unknown"
)

// Error is a kind-tagged error with the operation that produced it.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Kind, e.Op, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Kind, e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a classified error without an underlying cause.
func New(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// Newf creates a classified error with a formatted message.
func Newf(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches kind and operation to an underlying error. An error that is
// already classified keeps its original kind. Returns nil for a nil cause.
func Wrap(kind Kind, op, message string, err error) *Error {
	if err == nil {
		return nil
	}

	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}

	return &Error{Kind: kind, Op: op, Message: message, Cause: err}
}

// IsKind reports whether err (or anything it wraps) carries the given kind.
func IsKind(err error, kind Kind) bool {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Kind == kind
	}
	return false
}

// KindOf returns the kind of err, or KindUnknown for unclassified errors.
func KindOf(err error) Kind {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Kind
	}
	return KindUnknown
}

// UserMessage returns the message meant for display, falling back to the
// full error text for unclassified errors.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var typed *Error
	if errors.As(err, &typed) {
		if typed.Message != "" {
			return typed.Message
		}
	}
	return err.Error()
}
