package fetchq

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxResponseBodySize caps how much of a response body is read back.
// Prevents a single misbehaving endpoint from exhausting the host's memory.
const maxResponseBodySize = 16 << 20 // 16MB

// connection pooling limits to prevent resource exhaustion when many
// requests target the same host
const (
	defaultMaxIdleConns    = 100
	defaultIdleConnTimeout = 60 * time.Second // conservative: matches common ALB defaults
)

// Transport performs one HTTP exchange on behalf of the worker.
//
// Implementations are the queue's external collaborator: given a method, URL,
// header multimap, and body, they return the status code and response body,
// or an error if no status was ever produced. A Transport must honor ctx
// cancellation promptly, since the worker uses the context to enforce
// timeouts and to abandon exchanges that lost the cancellation race.
//
// Implementations must be safe for concurrent use; the worker runs many
// exchanges at once, bounded only by the queue's parallelism.
//
// Two implementations are provided: [HTTPTransport] (default) and
// [FastHTTPTransport]. The queue never retries; a transport that wants retry
// or redirect policies applies them internally.
type Transport interface {
	RoundTrip(ctx context.Context, method, url string, headers http.Header, body []byte) (statusCode int, respBody []byte, err error)
}

// HTTPTransport is the default [Transport], backed by net/http.
//
// The underlying client has no global timeout; deadlines arrive per-exchange
// via the context, so different requests can carry different timeouts.
// Response bodies are capped at 16MB.
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport creates the default pooled [Transport].
//
// maxConnsPerHost bounds concurrent and idle connections per target host and
// normally matches the queue's parallelism; values below 1 fall back to 10.
func NewHTTPTransport(maxConnsPerHost int) *HTTPTransport {
	if maxConnsPerHost < 1 {
		maxConnsPerHost = 10
	}
	return &HTTPTransport{
		client: &http.Client{
			// no default timeout - deadlines are per-exchange via context
			Transport: &http.Transport{
				MaxIdleConns:        defaultMaxIdleConns,
				MaxIdleConnsPerHost: maxConnsPerHost,
				MaxConnsPerHost:     maxConnsPerHost,
				IdleConnTimeout:     defaultIdleConnTimeout,
				DisableKeepAlives:   false, // explicitly enable connection reuse
			},
		},
	}
}

// NewHTTPTransportWithClient wraps a caller-supplied *http.Client.
//
// Use this to inject custom TLS configuration, proxies, or an instrumented
// client. The client's own Timeout still applies if set; the worker adds its
// per-request deadline on top via context.
func NewHTTPTransportWithClient(client *http.Client) *HTTPTransport {
	return &HTTPTransport{client: client}
}

// RoundTrip implements [Transport].
func (t *HTTPTransport) RoundTrip(ctx context.Context, method, url string, headers http.Header, body []byte) (int, []byte, error) {
	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}

	for name, values := range headers {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// read body with size limit
	limitedReader := io.LimitReader(resp.Body, maxResponseBodySize)
	respBody, err := io.ReadAll(limitedReader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return resp.StatusCode, respBody, nil
}

// Close closes all idle connections in the transport's connection pool.
//
// Call this when the queue that owns the transport is stopped for good.
// Safe to call multiple times; the transport remains usable afterwards.
func (t *HTTPTransport) Close() {
	if t == nil || t.client == nil {
		return
	}
	if transport, ok := t.client.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
}
