package gamelink

import (
	"errors"
	"fmt"
)

// Kind classifies a client error. Callers branch on the kind rather than on
// error strings; every error returned by this library carries exactly one.
type Kind int

const (
	// KindTransport is a network-level failure: connection refused, transport
	// timeout, malformed bytes. Always recoverable by retrying the connect or
	// send.
	KindTransport Kind = iota + 1
	// KindDecode means a payload did not match the expected typed shape. The
	// connection itself remains usable.
	KindDecode
	// KindServer is an application-level failure reported by the server,
	// carrying the server's code and message verbatim.
	KindServer
	// KindTimeout means no correlated response arrived within the caller's
	// deadline. The correlation id is freed for later reuse.
	KindTimeout
	// KindNotConnected means a connection-oriented operation was attempted
	// while the socket was not connected.
	KindNotConnected
	// KindInternal signals an internal-consistency defect (for example a
	// correlation id collision). It indicates a programming error, not a
	// runtime condition, but is still returned as a value and never panics.
	KindInternal
)

// String returns the kind's name for logs and error text.
func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindDecode:
		return "decode"
	case KindServer:
		return "server"
	case KindTimeout:
		return "timeout"
	case KindNotConnected:
		return "not connected"
	case KindInternal:
		return "internal"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is the taxonomy shared by the REST client and the realtime socket.
type Error struct {
	// Kind classifies the failure.
	Kind Kind
	// Code is the server-reported status or error code, when Kind is
	// KindServer. Zero otherwise.
	Code int
	// Message is a human-readable description.
	Message string
	// cause is the wrapped underlying error, if any.
	cause error
}

// NewError builds an Error of the given kind wrapping cause. The cause may be
// nil.
func NewError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// NewServerError builds a KindServer error carrying the server's code and
// message verbatim.
func NewServerError(code int, message string) *Error {
	return &Error{Kind: KindServer, Code: code, Message: message}
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindServer:
		return fmt.Sprintf("gamelink: server error %d: %s", e.Code, e.Message)
	case e.cause != nil:
		return fmt.Sprintf("gamelink: %s: %s: %v", e.Kind, e.Message, e.cause)
	default:
		return fmt.Sprintf("gamelink: %s: %s", e.Kind, e.Message)
	}
}

// Unwrap exposes the underlying cause to errors.Is and errors.As.
func (e *Error) Unwrap() error { return e.cause }

// IsKind reports whether err is (or wraps) a gamelink Error of the given
// kind.
func IsKind(err error, kind Kind) bool {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind == kind
	}
	return false
}

// Retryable reports whether retrying the operation can reasonably succeed:
// transport failures and server-side (5xx) errors qualify.
func Retryable(err error) bool {
	var ge *Error
	if !errors.As(err, &ge) {
		return false
	}
	return ge.Kind == KindTransport || (ge.Kind == KindServer && ge.Code >= 500)
}
