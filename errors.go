package fetchq

import "errors"

// The three failure kinds a [Callback] can observe. Every submitted request
// resolves as exactly one of a [Response], a [*TransportError],
// [ErrRequestCancelled], or [ErrRequestTimeout].
var (
	// ErrRequestCancelled is delivered when the request's
	// [RequestCancellation] token fired before the exchange completed.
	ErrRequestCancelled = errors.New("request cancelled")

	// ErrRequestTimeout is delivered when the request's configured (or
	// default) timeout elapsed before the exchange completed.
	ErrRequestTimeout = errors.New("request timed out")
)

// TransportError wraps a failure reported by the [Transport]: DNS, connect,
// TLS, or protocol-level errors. The underlying error is available via
// [errors.Unwrap], so errors.Is and errors.As see through the wrapper.
type TransportError struct {
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return "transport error: " + e.Err.Error()
}

// Unwrap returns the underlying transport failure.
func (e *TransportError) Unwrap() error {
	return e.Err
}
