package errors

import (
	"errors"
	"fmt"
)

type Kind string

const (
	// KindTransport covers failures where no HTTP response was received.
	KindTransport Kind = "transport"
	// KindHTTP covers non-2xx, non-401 HTTP responses.
	KindHTTP Kind = "http"
	// KindAuth covers 401 responses; always paired with forced session invalidation.
	KindAuth Kind = "auth"
	// KindBusiness covers 2xx responses whose body carries a failed business code.
	KindBusiness Kind = "business"
	// KindPlatform covers runtime platforms with no matching login strategy.
	KindPlatform  Kind = "platform"
	KindConfig    Kind = "config"
	KindStorage   Kind = "storage"
	KindBootstrap Kind = "bootstrap"
	KindUnknown   Kind = "unknown"
)

type Error struct {
	Kind    Kind
	Op      string
	Message string
	Status  int
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Kind, e.Op, e.Message, e.Cause)
	}
	if e.Status != 0 {
		return fmt.Sprintf("[%s:%s] %s (status %d)", e.Kind, e.Op, e.Message, e.Status)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Kind, e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func Wrap(kind Kind, op, message string, err error) *Error {
	if err == nil {
		return nil
	}

	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}

	return &Error{
		Kind:    kind,
		Op:      op,
		Message: message,
		Cause:   err,
	}
}

func New(kind Kind, op, message string) *Error {
	return &Error{
		Kind:    kind,
		Op:      op,
		Message: message,
	}
}

// WithStatus builds an error that records the HTTP status which produced it.
func WithStatus(kind Kind, op, message string, status int) *Error {
	return &Error{
		Kind:    kind,
		Op:      op,
		Message: message,
		Status:  status,
	}
}

// IsKind checks whether any error in the chain matches the provided kind.
func IsKind(err error, kind Kind) bool {
	var target *Error
	for err != nil {
		if errors.As(err, &target) {
			return target.Kind == kind
		}
		err = errors.Unwrap(err)
	}
	return false
}

// StatusOf returns the HTTP status recorded on the error chain, or 0.
func StatusOf(err error) int {
	var target *Error
	if errors.As(err, &target) {
		return target.Status
	}
	return 0
}
