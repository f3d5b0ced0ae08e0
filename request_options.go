package fetchq

import (
	"errors"
	"net/http"
	"time"
)

// requestConfig holds mutable state during request construction.
type requestConfig struct {
	body    []byte
	headers http.Header
	timeout time.Duration // -1 until WithTimeout is applied
}

// RequestOption is a function that configures a [Request] during construction.
//
// RequestOption implements the functional options pattern, allowing optional
// configuration to be passed to [NewRequest] in a type-safe, extensible way.
// Options return an error if validation fails.
//
// Built-in options: [WithBody], [WithHeader], [WithHeaders], [WithTimeout].
type RequestOption func(*requestConfig) error

// WithBody sets the request body.
//
// The bytes are copied at construction time, so the caller may reuse or
// mutate the slice afterwards. A nil or empty slice means no body, which is
// the default.
//
// Example:
//
//	req, err := fetchq.NewRequest(fetchq.MethodPut, url,
//	    fetchq.WithBody(payload),
//	)
func WithBody(body []byte) RequestOption {
	return func(cfg *requestConfig) error {
		cfg.body = copyBytes(body)
		return nil
	}
}

// WithHeader adds a single header value to the request.
//
// WithHeader is additive: calling it twice with the same name sends both
// values, preserving the order in which they were added. Use this for
// multi-valued headers such as Accept or custom tracing headers.
//
// Example:
//
//	req, err := fetchq.NewRequest(fetchq.MethodGet, url,
//	    fetchq.WithHeader("Accept", "application/json"),
//	    fetchq.WithHeader("Accept", "text/plain"),
//	)
//
// Returns an error if the header name is empty.
func WithHeader(name, value string) RequestOption {
	return func(cfg *requestConfig) error {
		if name == "" {
			return errors.New("header name cannot be empty")
		}
		cfg.headers.Add(name, value)
		return nil
	}
}

// WithHeaders adds custom HTTP headers from variadic key-value pairs.
//
// Use this for endpoints that require authentication or other fixed headers.
// Pairs are added in order and accumulate with any previously added headers.
//
// Example:
//
//	req, err := fetchq.NewRequest(fetchq.MethodGet, url,
//	    fetchq.WithHeaders("Authorization", "Bearer token123", "Accept", "application/json"),
//	)
//
// Returns an error if an odd number of arguments is provided or a name is empty.
func WithHeaders(keyValues ...string) RequestOption {
	return func(cfg *requestConfig) error {
		if len(keyValues)%2 != 0 {
			return errors.New("WithHeaders requires an even number of arguments (key-value pairs)")
		}
		for i := 0; i < len(keyValues); i += 2 {
			if keyValues[i] == "" {
				return errors.New("header name cannot be empty")
			}
			cfg.headers.Add(keyValues[i], keyValues[i+1])
		}
		return nil
	}
}

// WithTimeout sets the timeout for this request.
//
// The timeout is measured from when the request's task starts executing on
// the worker, not from submission. If the transport has not answered and the
// request has not been cancelled within this duration, the callback receives
// [ErrRequestTimeout].
//
// A zero duration is allowed and expires immediately; the request then always
// times out, which is occasionally useful in tests. If WithTimeout is never
// applied the request is effectively unbounded.
//
// Example:
//
//	req, err := fetchq.NewRequest(fetchq.MethodGet, url,
//	    fetchq.WithTimeout(5*time.Second),
//	)
//
// Returns an error if the duration is negative.
func WithTimeout(d time.Duration) RequestOption {
	return func(cfg *requestConfig) error {
		if d < 0 {
			return errors.New("timeout must not be negative")
		}
		cfg.timeout = d
		return nil
	}
}
