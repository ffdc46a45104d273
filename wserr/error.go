// Package wserr defines the closed set of error kinds used throughout the
// framework, modeled on the same categories a dispatcher needs to report:
// transport failures, decode failures, routing misses, and handler/extractor
// failures, plus a free-form custom escape hatch.
package wserr

import "fmt"

// Kind classifies an Error. The set is closed: callers should not invent new
// kinds outside this package.
type Kind string

const (
	KindTransport        Kind = "transport"
	KindIO               Kind = "io"
	KindJSONDecode        Kind = "json_decode"
	KindSessionNotFound   Kind = "session_not_found"
	KindRouteNotFound     Kind = "route_not_found"
	KindInvalidMessage    Kind = "invalid_message"
	KindHandler           Kind = "handler"
	KindExtractor         Kind = "extractor"
	KindForbidden         Kind = "forbidden"
	KindNotFound          Kind = "not_found"
	KindCustom            Kind = "custom"
)

// Error is the framework's unified error type. It always carries a Kind and
// a human-readable message, and may wrap an underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the wrapped cause, if any, to errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is an *Error with the same Kind, so that
// errors.Is(err, wserr.New(wserr.KindHandler, "")) can be used to test kind
// membership without comparing messages.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New creates an Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error of the given kind that carries an underlying cause.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Custom creates a free-form application error (KindCustom).
func Custom(format string, args ...any) *Error {
	return New(KindCustom, format, args...)
}

// Handler creates a handler-execution error (KindHandler).
func Handler(format string, args ...any) *Error {
	return New(KindHandler, format, args...)
}

// Extractor creates a type-extraction error (KindExtractor).
func Extractor(format string, args ...any) *Error {
	return New(KindExtractor, format, args...)
}

// SessionNotFound creates an error for a targeted send to a missing session.
func SessionNotFound(id string) *Error {
	return New(KindSessionNotFound, "session not found: %s", id)
}

// InvalidMessage creates an error for a frame of the wrong kind or shape.
func InvalidMessage(format string, args ...any) *Error {
	return New(KindInvalidMessage, format, args...)
}

// Transport creates a transport-level error wrapping cause, e.g. a failed
// WebSocket read or write.
func Transport(cause error, format string, args ...any) *Error {
	return Wrap(KindTransport, cause, format, args...)
}

// Forbidden creates an error for a path-safety rejection (KindForbidden).
func Forbidden(format string, args ...any) *Error {
	return New(KindForbidden, format, args...)
}

// NotFound creates an error for a missing resource (KindNotFound).
func NotFound(format string, args ...any) *Error {
	return New(KindNotFound, format, args...)
}
