// Package fetchq provides an embeddable asynchronous HTTP request queue for
// hosts that own a single "safe" goroutine and must not block it.
//
// fetchq is designed as an SDK-first library: the host constructs a [Queue],
// submits requests from wherever it likes, and pulls completed outcomes back
// onto its own goroutine by draining. Result callbacks run only inside drain
// calls, never on a background goroutine, which makes the queue safe to
// embed in game loops, TUI event loops, plugin threads, and other
// single-threaded environments.
//
// # Quick Start
//
// Create a queue, submit a request, and drain on your own schedule:
//
//	q, _ := fetchq.New()
//	defer q.Stop()
//
//	req, _ := fetchq.NewRequest(fetchq.MethodGet, "https://api.example.com/items")
//	q.Submit(req, func(resp *fetchq.Response, err error) {
//	    if err != nil {
//	        log.Printf("request failed: %v", err)
//	        return
//	    }
//	    log.Printf("got %d (%d bytes)", resp.StatusCode, len(resp.Body))
//	})
//
//	// in the host's tick loop, with a per-tick budget:
//	q.DrainWithLimit(16, 50*time.Millisecond)
//
// # Configuration
//
// Queues and requests both use the functional options pattern:
//
//	q, err := fetchq.New(
//	    fetchq.WithParallelism(64),
//	    fetchq.WithLogger(logger),
//	    fetchq.WithMetricsRegistry(prometheus.DefaultRegisterer),
//	)
//
//	req, err := fetchq.NewRequest(fetchq.MethodPost, url,
//	    fetchq.WithBody(payload),
//	    fetchq.WithHeader("Content-Type", "application/json"),
//	    fetchq.WithTimeout(5*time.Second),
//	)
//
// # Cancellation and Timeouts
//
// [Queue.Submit] returns a one-shot [RequestCancellation] token. Firing it
// resolves the request as [ErrRequestCancelled] unless the outcome is
// already committed. Each request may carry its own timeout, measured from
// when its task starts on the worker; expiry resolves it as
// [ErrRequestTimeout]. Requests without a timeout are effectively unbounded.
// A callback observes exactly one of: a [Response], a [*TransportError],
// [ErrRequestCancelled], or [ErrRequestTimeout].
//
// # Transports
//
// The HTTP exchange itself is delegated to an injected [Transport]. The
// default is a pooled net/http client; [FastHTTPTransport] is provided for
// hosts already on the fasthttp stack, and custom implementations can wrap
// anything that speaks HTTP.
//
// # Architecture
//
// fetchq consists of several internal packages (under internal/):
//
//   - internal/dispatch: the worker goroutine, command/outcome protocol, and
//     the transport/cancellation/timeout race
//   - internal/metrics: instance-scoped prometheus instruments
//
// The internal packages are not part of the public API and may change
// without notice. The config package and cmd/fetchq CLI offer a YAML-driven
// batch runner on top of the SDK.
package fetchq
