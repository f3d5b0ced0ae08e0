package fetchq

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"go.uber.org/atomic"

	"github.com/jpalmerr/fetchq/internal/dispatch"
	"github.com/jpalmerr/fetchq/internal/metrics"
)

// Callback receives the terminal outcome of one submitted [Request].
//
// Exactly one of resp and err is non-nil. err is one of the three failure
// kinds: a [*TransportError], [ErrRequestCancelled], or [ErrRequestTimeout].
// The callback is invoked exactly once, and only from within a drain call on
// the goroutine that owns the queue, never from a background goroutine.
type Callback func(resp *Response, err error)

// resultEnvelope rides through the worker as the task payload, pairing the
// original request with its callback.
type resultEnvelope struct {
	request  Request
	callback Callback
}

// Queue is an asynchronous HTTP request dispatcher for hosts that own a
// single "safe" goroutine and must not block it.
//
// A Queue owns one dedicated worker goroutine. [Queue.Submit] hands a request
// to the worker and returns immediately; the worker runs each request as an
// independent task racing the transport against cancellation and a timeout,
// and parks the outcome. Callbacks fire only when the owner calls one of the
// drain methods, which is the system's central thread-affinity contract:
// caller-supplied code never runs on a goroutine the caller didn't choose.
//
// The typical lifecycle is:
//
//	q, err := fetchq.New(fetchq.WithParallelism(32))
//	if err != nil {
//	    slog.Error("failed to create queue", "error", err)
//	    os.Exit(1)
//	}
//	defer q.Stop()
//
//	req, _ := fetchq.NewRequest(fetchq.MethodGet, "https://api.example.com/items")
//	cancel := q.Submit(req, func(resp *fetchq.Response, err error) { ... })
//	_ = cancel // keep to abort early
//
//	// inside the host's tick loop:
//	q.DrainWithLimit(16, 50*time.Millisecond)
//
// Submit and [RequestCancellation.Cancel] are safe from any goroutine. The
// drain methods must all be called from the single owning goroutine. Stop is
// required before discarding the queue; Go has no destructor to do it
// implicitly.
type Queue struct {
	transport     Transport
	ownsTransport bool
	worker        *dispatch.Worker
	logger        *slog.Logger
	metrics       *metrics.Metrics

	// pending is atomic because Submit may run on any goroutine, while
	// drains (the only decrementers) stay on the owning goroutine.
	pending atomic.Int64
	stopped atomic.Bool

	// lastLimitedDrain is touched only inside DrainWithLimit on the
	// owning goroutine; no synchronization needed.
	lastLimitedDrain time.Time
}

// New creates a [Queue] and starts its worker goroutine.
//
// All options have defaults: parallelism 16, a pooled [HTTPTransport] sized
// by the parallelism, [slog.Default] for logging, and private metrics.
// See [WithParallelism], [WithTransport], [WithLogger], [WithCommandBuffer],
// and [WithMetricsRegistry].
//
// The returned queue must be released with [Queue.Stop].
func New(opts ...Option) (*Queue, error) {
	cfg := &queueConfig{
		parallelism:   defaultParallelism,
		commandBuffer: defaultCommandBuffer,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	transport := cfg.transport
	ownsTransport := false
	if transport == nil {
		transport = NewHTTPTransport(cfg.parallelism)
		ownsTransport = true
	}

	m := metrics.New(cfg.registry)

	exchange := func(ctx context.Context, t dispatch.Task) (int, []byte, error) {
		return transport.RoundTrip(ctx, t.Method, t.URL, t.Headers, t.Body)
	}

	q := &Queue{
		transport:     transport,
		ownsTransport: ownsTransport,
		worker:        dispatch.NewWorker(exchange, cfg.parallelism, cfg.commandBuffer, logger, m),
		logger:        logger,
		metrics:       m,
	}
	q.worker.Start()

	logger.Debug("queue started", "parallelism", cfg.parallelism)
	return q, nil
}

// Submit enqueues a request for asynchronous execution.
//
// Submit never blocks: the command is forwarded to the worker on a buffered
// channel, spilling to a goroutine under momentary backpressure. The pending
// count is incremented immediately. The returned [RequestCancellation] token
// aborts the request if fired before its outcome is committed.
//
// A nil callback is allowed; the outcome is then counted and discarded at
// drain time. Submitting after [Queue.Stop] logs a warning and does nothing
// beyond returning an inert token.
func (q *Queue) Submit(req Request, cb Callback) *RequestCancellation {
	token := newCancellation()

	if q.stopped.Load() {
		q.logger.Warn("submit ignored: queue is stopped", "url", req.URL())
		return token
	}

	id := uuid.NewString()
	q.pending.Inc()
	q.metrics.Submitted.Inc()
	q.metrics.Pending.Inc()

	q.worker.Submit(dispatch.Task{
		ID:      id,
		Method:  req.method.String(),
		URL:     req.URL(),
		Headers: req.Headers(),
		Body:    req.body,
		Timeout: req.effectiveTimeout(),
		Cancel:  token.signal(),
		Payload: resultEnvelope{request: req, callback: cb},
	})

	q.logger.Debug("request submitted",
		"id", id,
		"method", req.method.String(),
		"url", req.URL(),
	)
	return token
}

// DrainOne delivers at most one completed outcome.
//
// If an outcome is ready its callback is invoked on the calling goroutine
// and the pending count is decremented; DrainOne then returns true. If
// nothing is ready it returns false immediately, without blocking.
func (q *Queue) DrainOne() bool {
	out, ok := q.worker.TryNext()
	if !ok {
		return false
	}

	q.deliver(out)
	q.pending.Dec()
	q.metrics.Pending.Dec()
	return true
}

// DrainWithLimit is a rate-limited batch drain for hosts with a fixed
// per-tick budget, such as a game loop.
//
// If called again before minInterval has elapsed since the previous
// rate-limited call it does nothing and returns 0. Otherwise it records the
// call time and drains up to limit+1 outcomes (or until none are ready),
// returning the number drained.
func (q *Queue) DrainWithLimit(limit int, minInterval time.Duration) int {
	if !q.lastLimitedDrain.IsZero() && time.Since(q.lastLimitedDrain) <= minInterval {
		return 0
	}
	q.lastLimitedDrain = time.Now()

	drained := 0
	for drained <= limit {
		if !q.DrainOne() {
			break
		}
		drained++
	}
	return drained
}

// DrainUntilTimeout drains in a blocking loop until total has elapsed,
// sleeping poll between attempts while nothing is ready.
//
// Intended for synchronous contexts such as tests and short-lived scripts
// rather than a steady-state host loop. Returns the number of outcomes
// drained.
func (q *Queue) DrainUntilTimeout(total, poll time.Duration) int {
	start := time.Now()

	drained := 0
	for time.Since(start) <= total {
		if q.DrainOne() {
			drained++
			continue
		}
		time.Sleep(poll)
	}
	return drained
}

// PendingCount returns the number of submitted requests whose outcome has
// not yet been drained. It never goes negative and reaches zero once every
// submitted request has been drained.
func (q *Queue) PendingCount() int {
	return int(q.pending.Load())
}

// Stop shuts the queue down.
//
// Stop sends the quit command, after which the worker accepts no further
// commands, and blocks until outstanding tasks have published their outcomes
// and the worker goroutine has exited. Outcomes still undrained at that
// point remain available to the drain methods. Stop is idempotent and safe
// to call concurrently with Submit.
func (q *Queue) Stop() {
	if q.stopped.Swap(true) {
		// join semantics for late callers
		q.worker.Stop()
		return
	}

	q.logger.Info("stopping queue", "pending", q.PendingCount())
	q.worker.Stop()

	if q.ownsTransport {
		if c, ok := q.transport.(interface{ Close() }); ok {
			c.Close()
		}
	}
}

// deliver maps one worker outcome onto its callback.
func (q *Queue) deliver(out dispatch.Outcome) {
	env, ok := out.Payload.(resultEnvelope)
	if !ok {
		// unreachable unless the worker is fed tasks the queue didn't build
		q.logger.Error("discarding outcome with unexpected payload type")
		return
	}

	var resp *Response
	var err error
	switch out.Kind {
	case dispatch.KindResponse:
		resp = &Response{
			BaseRequest: env.request,
			Body:        out.Body,
			StatusCode:  out.StatusCode,
		}
	case dispatch.KindTransportError:
		err = &TransportError{Err: out.Err}
	case dispatch.KindCancelled:
		err = ErrRequestCancelled
	case dispatch.KindTimeout:
		err = ErrRequestTimeout
	}

	q.invokeCallbackSafe(env.callback, resp, err)
}

// invokeCallbackSafe calls a result callback with panic recovery.
// Panics are logged with a correlation ID but do not propagate into the
// host's drain loop.
func (q *Queue) invokeCallbackSafe(cb Callback, resp *Response, err error) {
	if cb == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()
			q.logger.Error("result callback panicked",
				"correlation_id", correlationID,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
		}
	}()
	cb(resp, err)
}
