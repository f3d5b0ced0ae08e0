package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/jpalmerr/fetchq/internal/metrics"
)

// Task is a single submitted request as seen by the worker.
//
// This is the dispatch-internal representation of a request, decoupled from
// the main fetchq.Request type to avoid circular dependencies. Payload is
// opaque to the worker and is echoed unchanged into the task's [Outcome];
// the facade uses it to carry the original request and its callback.
type Task struct {
	// ID is the correlation id assigned at submission, used in logs.
	ID string

	// Method is the HTTP method verb.
	Method string

	// URL is the target URL.
	URL string

	// Headers is the header multimap to send.
	Headers http.Header

	// Body is the request body, possibly empty.
	Body []byte

	// Timeout bounds the task from its start on the worker. The facade
	// always sets a positive value for unbounded requests (the sentinel
	// duration); a zero value expires immediately.
	Timeout time.Duration

	// Cancel resolves when the request's cancellation token fires.
	// A nil channel never resolves.
	Cancel <-chan struct{}

	// Payload is echoed into the outcome.
	Payload any
}

// Kind classifies a task's terminal outcome.
type Kind int

const (
	// KindResponse is a completed HTTP exchange with a status code.
	KindResponse Kind = iota

	// KindTransportError is an exchange that failed before producing a status.
	KindTransportError

	// KindCancelled is a task whose cancellation signal won the race.
	KindCancelled

	// KindTimeout is a task whose timeout elapsed first.
	KindTimeout
)

// metricLabel maps the kind to its outcomes-counter label.
func (k Kind) metricLabel() string {
	switch k {
	case KindResponse:
		return metrics.OutcomeResponse
	case KindTransportError:
		return metrics.OutcomeTransportError
	case KindCancelled:
		return metrics.OutcomeCancelled
	default:
		return metrics.OutcomeTimeout
	}
}

// Outcome is the single terminal result of a [Task].
type Outcome struct {
	// Kind classifies the outcome; exactly one is produced per task.
	Kind Kind

	// StatusCode and Body are set when Kind is [KindResponse].
	StatusCode int
	Body       []byte

	// Err is the transport failure when Kind is [KindTransportError].
	Err error

	// Payload is the task's payload, returned unchanged.
	Payload any
}

// Exchange performs one HTTP exchange for a task.
//
// The context carries the task's deadline and is cancelled once the task has
// resolved, so an exchange that lost the race is abandoned promptly.
type Exchange func(ctx context.Context, t Task) (statusCode int, body []byte, err error)

// exchangeResult is the completion message from the exchange goroutine.
type exchangeResult struct {
	statusCode int
	body       []byte
	err        error
}

// command is the input protocol between the facade and the worker loop:
// either one task to run, or quit.
type command struct {
	quit bool
	task Task
}

// Worker owns the dedicated goroutine that executes request tasks.
//
// The worker consumes commands from a channel fed by [Worker.Submit], spawns
// an independent goroutine per task, and collects outcomes into an unbounded
// FIFO drained by [Worker.TryNext]. Concurrent exchanges are bounded by a
// weighted semaphore sized at construction; waiting for a permit counts
// toward the task's own timeout.
//
// Race resolution is deterministic where the underlying select is not:
// a completed exchange wins a same-instant cancellation (the cancel branch
// re-polls completion once before committing), and the timeout branch never
// re-polls, so a zero timeout can never surface a response. A cancellation
// and a timeout that fire at the same instant may resolve either way.
//
// Lifecycle: Start spawns the loop, Stop enqueues quit and joins. After quit
// no further command is processed; outstanding tasks finish and publish
// their outcomes, which remain drainable after Stop returns. Both methods
// are idempotent and Stop before Start is a safe no-op.
type Worker struct {
	exchange Exchange
	sem      *semaphore.Weighted
	logger   *slog.Logger
	metrics  *metrics.Metrics

	in     chan command
	outbox outbox

	wg   sync.WaitGroup // outstanding task goroutines
	done chan struct{}  // closed when the worker goroutine has exited

	mu       sync.Mutex
	started  bool
	stopped  bool
	doneOnce sync.Once
}

// NewWorker creates a worker with the given exchange function.
//
// parallelism bounds concurrent exchanges (minimum 1). buffer sizes the
// command channel; submissions beyond it spill to a goroutine so the caller
// never blocks. m must not be nil.
func NewWorker(exchange Exchange, parallelism, buffer int, logger *slog.Logger, m *metrics.Metrics) *Worker {
	if parallelism < 1 {
		parallelism = 1
	}
	if buffer < 1 {
		buffer = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Worker{
		exchange: exchange,
		sem:      semaphore.NewWeighted(int64(parallelism)),
		logger:   logger,
		metrics:  m,
		in:       make(chan command, buffer),
		done:     make(chan struct{}),
	}
}

// Start spawns the worker goroutine.
// Start is idempotent; subsequent calls after the first are no-ops.
// If Stop was called before Start, Start is a no-op.
func (w *Worker) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started || w.stopped {
		return
	}
	w.started = true

	go w.run()
}

// Submit enqueues one task without ever blocking the caller.
//
// The fast path is a non-blocking channel send; under momentary backpressure
// the send is handed to a goroutine, mirroring the facade's fire-and-forget
// contract. A spilled task that arrives after shutdown is dropped with a
// warning; submitting while stopping is a usage violation, not a supported
// path.
func (w *Worker) Submit(t Task) {
	cmd := command{task: t}

	select {
	case w.in <- cmd:
	default:
		go func() {
			select {
			case w.in <- cmd:
			case <-w.done:
				w.logger.Warn("dropping request submitted during shutdown",
					"id", t.ID,
					"url", t.URL,
				)
			}
		}()
	}
}

// TryNext pops the oldest undrained outcome.
// Returns false immediately when none is ready.
func (w *Worker) TryNext() (Outcome, bool) {
	return w.outbox.tryPop()
}

// Backlog returns the number of undrained outcomes.
func (w *Worker) Backlog() int {
	return w.outbox.size()
}

// Stop asks the worker to quit and blocks until it has exited.
//
// The quit command takes effect after commands already enqueued; from then
// on no further command is processed, outstanding tasks run to their
// outcomes, and the worker goroutine exits. Undrained outcomes remain
// available via [Worker.TryNext]. Stop is idempotent and safe to call
// concurrently with Submit.
func (w *Worker) Stop() {
	w.mu.Lock()
	alreadyStopped := w.stopped
	started := w.started
	w.stopped = true
	w.mu.Unlock()

	if !started {
		// never ran; just mark the worker dead so spilled submits drop
		w.doneOnce.Do(func() { close(w.done) })
		return
	}
	if alreadyStopped {
		<-w.done
		return
	}

	select {
	case w.in <- command{quit: true}:
	case <-w.done:
	}
	<-w.done
}

// run is the worker loop: Running until quit, then Draining until
// outstanding tasks have published, then exit.
func (w *Worker) run() {
	defer w.doneOnce.Do(func() { close(w.done) })

	for cmd := range w.in {
		if cmd.quit {
			w.logger.Info("quit received, no further commands will be processed")
			break
		}

		w.wg.Add(1)
		go w.execute(cmd.task)
	}

	// commands that raced into the buffer behind quit are discarded unrun
	for {
		select {
		case cmd := <-w.in:
			if !cmd.quit {
				w.logger.Warn("discarding command received after quit",
					"id", cmd.task.ID,
					"url", cmd.task.URL,
				)
			}
		default:
			w.wg.Wait()
			return
		}
	}
}

// execute runs a single task to its one terminal outcome.
func (w *Worker) execute(t Task) {
	defer w.wg.Done()

	w.metrics.InFlight.Inc()
	defer w.metrics.InFlight.Dec()

	w.logger.Debug("task started",
		"id", t.ID,
		"method", t.Method,
		"url", t.URL,
		"timeout", t.Timeout.String(),
	)

	ctx, cancel := context.WithTimeout(context.Background(), t.Timeout)
	defer cancel()

	completed := make(chan exchangeResult, 1)
	go func() {
		if err := w.sem.Acquire(ctx, 1); err != nil {
			completed <- exchangeResult{err: err}
			return
		}
		defer w.sem.Release(1)

		statusCode, body, err := w.exchange(ctx, t)
		completed <- exchangeResult{statusCode: statusCode, body: body, err: err}
	}()

	var out Outcome
	select {
	case r := <-completed:
		out = w.resolve(t, r)
	case <-t.Cancel:
		// a completed exchange wins a same-instant cancellation
		select {
		case r := <-completed:
			out = w.resolve(t, r)
		default:
			out = Outcome{Kind: KindCancelled, Payload: t.Payload}
		}
	case <-ctx.Done():
		out = Outcome{Kind: KindTimeout, Payload: t.Payload}
	}

	w.outbox.push(out)
	w.metrics.Outcomes.WithLabelValues(out.Kind.metricLabel()).Inc()

	w.logger.Debug("task finished",
		"id", t.ID,
		"kind", out.Kind.metricLabel(),
	)
}

// resolve maps an exchange completion to its outcome.
//
// An exchange error caused by the task's own deadline is classified as a
// timeout, not a transport failure: the select may see the completion and
// the expired context as ready simultaneously, and both must agree.
func (w *Worker) resolve(t Task, r exchangeResult) Outcome {
	if r.err != nil {
		if errors.Is(r.err, context.DeadlineExceeded) {
			return Outcome{Kind: KindTimeout, Payload: t.Payload}
		}
		return Outcome{Kind: KindTransportError, Err: r.err, Payload: t.Payload}
	}

	return Outcome{
		Kind:       KindResponse,
		StatusCode: r.statusCode,
		Body:       r.body,
		Payload:    t.Payload,
	}
}
