// Package yerr defines the domain-level error kinds shared across yfass's
// core packages and the mapping the management API uses to turn them into
// HTTP status codes.
package yerr

import (
	"errors"
	"fmt"
)

// Kind classifies a domain error independently of its message.
type Kind int

const (
	// Internal is the zero value so a bare wrapped error without a Kind
	// still maps to 500 instead of panicking the status mapper.
	Internal Kind = iota
	NotFound
	AlreadyExists
	PermissionDenied
	Unauthenticated
	BadRequest
	Conflict
	SandboxSpawn
	Upstream
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case AlreadyExists:
		return "already_exists"
	case PermissionDenied:
		return "permission_denied"
	case Unauthenticated:
		return "unauthenticated"
	case BadRequest:
		return "bad_request"
	case Conflict:
		return "conflict"
	case SandboxSpawn:
		return "sandbox_spawn_error"
	case Upstream:
		return "upstream_error"
	default:
		return "internal"
	}
}

// Error is a domain error carrying a Kind for boundary translation plus an
// optional cause for %w-style wrapping and logging.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an *Error with the given kind and message.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap builds an *Error with the given kind, message, and cause.
func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// KindOf extracts the Kind from err, defaulting to Internal if err isn't
// (or doesn't wrap) a *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

func NotFoundf(format string, args ...any) *Error {
	return New(NotFound, fmt.Sprintf(format, args...))
}

func AlreadyExistsf(format string, args ...any) *Error {
	return New(AlreadyExists, fmt.Sprintf(format, args...))
}

func PermissionDeniedf(format string, args ...any) *Error {
	return New(PermissionDenied, fmt.Sprintf(format, args...))
}

func Unauthenticatedf(format string, args ...any) *Error {
	return New(Unauthenticated, fmt.Sprintf(format, args...))
}

func BadRequestf(format string, args ...any) *Error {
	return New(BadRequest, fmt.Sprintf(format, args...))
}

func Conflictf(format string, args ...any) *Error {
	return New(Conflict, fmt.Sprintf(format, args...))
}
