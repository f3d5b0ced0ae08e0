package fetchq

import (
	"context"
	"fmt"
	"net/http"

	"github.com/valyala/fasthttp"
)

// FastHTTPTransport is a [Transport] backed by valyala/fasthttp, for hosts
// that already run on that stack and want to share its allocation behavior.
//
// fasthttp has no native context plumbing, so deadlines are enforced with
// DoDeadline from the context's deadline. An exchange that loses the
// cancellation race is not aborted mid-flight; it runs to its deadline and
// the result is discarded, which the queue's best-effort cancellation
// contract allows.
type FastHTTPTransport struct {
	client *fasthttp.Client
}

// NewFastHTTPTransport creates a fasthttp-backed [Transport].
//
// maxConnsPerHost bounds connections per target host and normally matches
// the queue's parallelism; values below 1 fall back to fasthttp's default.
func NewFastHTTPTransport(maxConnsPerHost int) *FastHTTPTransport {
	client := &fasthttp.Client{
		ReadBufferSize:      16 * 1024,
		MaxResponseBodySize: maxResponseBodySize,
		MaxIdleConnDuration: defaultIdleConnTimeout,
	}
	if maxConnsPerHost >= 1 {
		client.MaxConnsPerHost = maxConnsPerHost
	}
	return &FastHTTPTransport{client: client}
}

// RoundTrip implements [Transport].
func (t *FastHTTPTransport) RoundTrip(ctx context.Context, method, url string, headers http.Header, body []byte) (int, []byte, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.Header.SetMethod(method)
	req.SetRequestURI(url)
	if len(body) > 0 {
		req.SetBody(body)
	}
	for name, values := range headers {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}

	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = t.client.DoDeadline(req, resp, deadline)
	} else {
		err = t.client.Do(req, resp)
	}
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}

	// the response buffers are pooled; copy out before release
	respBody := append([]byte(nil), resp.Body()...)
	return resp.StatusCode(), respBody, nil
}

// Close releases idle connections held by the client.
func (t *FastHTTPTransport) Close() {
	if t == nil || t.client == nil {
		return
	}
	t.client.CloseIdleConnections()
}

// compile-time interface checks
var (
	_ Transport = (*HTTPTransport)(nil)
	_ Transport = (*FastHTTPTransport)(nil)
)
