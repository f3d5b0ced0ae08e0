package fetchq

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// noTimeout is the sentinel applied to requests with no configured timeout.
// Large enough to be effectively unbounded while still letting the task's
// timeout race use a single code path.
const noTimeout = 65535 * time.Second

// Method is the HTTP method of a [Request].
//
// Method is a string type holding one of four predefined values:
// [MethodGet], [MethodPost], [MethodPut], or [MethodDelete]. Using a string
// type keeps logging and config parsing human-readable while [NewRequest]
// enforces the closed set.
type Method string

const (
	// MethodGet issues an HTTP GET request.
	MethodGet Method = "GET"

	// MethodPost issues an HTTP POST request.
	MethodPost Method = "POST"

	// MethodPut issues an HTTP PUT request.
	MethodPut Method = "PUT"

	// MethodDelete issues an HTTP DELETE request.
	MethodDelete Method = "DELETE"
)

// String returns the method as the wire-format verb.
// This implements the fmt.Stringer interface.
func (m Method) String() string {
	return string(m)
}

// valid reports whether m is one of the four supported methods.
func (m Method) valid() bool {
	switch m {
	case MethodGet, MethodPost, MethodPut, MethodDelete:
		return true
	}
	return false
}

// Request represents a single HTTP request to be executed by a [Queue].
//
// Request is immutable after creation via [NewRequest]. All fields are
// private with getter methods that return copies of mutable data (headers,
// body), so a request cannot change between submission and delivery of its
// outcome. The same Request value is handed back inside the [Response] so the
// caller can correlate an outcome with what it submitted.
//
// Requests are configured using the functional options pattern with
// [RequestOption] functions such as [WithBody], [WithHeader], [WithHeaders],
// and [WithTimeout].
type Request struct {
	method  Method
	url     *url.URL
	body    []byte
	headers http.Header

	// timeout < 0 means no timeout was configured; the queue substitutes
	// an effectively unbounded duration. A zero timeout is honored as a
	// real zero and always expires before the transport can answer.
	timeout time.Duration
}

// NewRequest creates a [Request] with the given method, URL, and options.
//
// The rawURL parameter must be a valid absolute URL with an http or https
// scheme. Options are applied in order using the functional options pattern.
//
// Example:
//
//	req, err := fetchq.NewRequest(fetchq.MethodPost, "https://api.example.com/v1/items",
//	    fetchq.WithBody([]byte(`{"name":"widget"}`)),
//	    fetchq.WithHeader("Content-Type", "application/json"),
//	    fetchq.WithTimeout(5*time.Second),
//	)
//
// Returns an error if the method is unsupported, the URL is invalid, or an
// option fails validation.
func NewRequest(method Method, rawURL string, opts ...RequestOption) (Request, error) {
	if !method.valid() {
		return Request{}, fmt.Errorf("unsupported method %q (expected GET, POST, PUT, or DELETE)", string(method))
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return Request{}, errors.New("invalid URL: " + err.Error())
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return Request{}, errors.New("URL must have an http:// or https:// scheme")
	}
	if parsedURL.Host == "" {
		return Request{}, errors.New("URL must have a host")
	}

	cfg := &requestConfig{
		headers: make(http.Header),
		timeout: -1,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return Request{}, err
		}
	}

	return Request{
		method:  method,
		url:     parsedURL,
		body:    cfg.body,
		headers: cfg.headers,
		timeout: cfg.timeout,
	}, nil
}

// Method returns the request's HTTP method.
func (r Request) Method() Method {
	return r.method
}

// URL returns the request's target URL as a string.
func (r Request) URL() string {
	if r.url == nil {
		return ""
	}
	return r.url.String()
}

// Body returns a copy of the request body.
// Returns nil if no body was set.
func (r Request) Body() []byte {
	return copyBytes(r.body)
}

// Headers returns a copy of the request's header multimap.
// Multiple values per header name are preserved in order.
// Returns an empty (non-nil) header set if none were configured.
func (r Request) Headers() http.Header {
	if r.headers == nil {
		return make(http.Header)
	}
	return r.headers.Clone()
}

// Timeout returns the configured timeout and whether one was set.
//
// When ok is false the request has no timeout and the queue treats it as
// effectively unbounded. A returned zero duration with ok true is a real
// zero-length timeout: the request always resolves as [ErrRequestTimeout].
func (r Request) Timeout() (d time.Duration, ok bool) {
	if r.timeout < 0 {
		return 0, false
	}
	return r.timeout, true
}

// effectiveTimeout returns the duration the dispatch race should enforce.
func (r Request) effectiveTimeout() time.Duration {
	if r.timeout < 0 {
		return noTimeout
	}
	return r.timeout
}

// copyBytes returns a copy of the byte slice, or nil if input is nil.
func copyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}
