package fetchq

import (
	"errors"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	defaultParallelism   = 16
	defaultCommandBuffer = 256
)

// queueConfig holds mutable state during queue construction.
type queueConfig struct {
	parallelism   int
	commandBuffer int
	transport     Transport
	logger        *slog.Logger
	registry      prometheus.Registerer
}

// Option is a function that configures a [Queue] instance during construction.
//
// Option implements the functional options pattern, allowing optional
// configuration to be passed to [New] in a type-safe, extensible way.
// Options return an error if validation fails.
//
// Built-in options: [WithParallelism], [WithTransport], [WithLogger],
// [WithCommandBuffer], [WithMetricsRegistry].
type Option func(*queueConfig) error

// WithParallelism bounds how many HTTP exchanges run concurrently.
//
// Tasks beyond the bound still start immediately; they wait for a permit,
// and that wait counts toward their own timeout. The bound also sizes the
// default transport's per-host connection pool. Defaults to 16.
//
// Example:
//
//	q, err := fetchq.New(fetchq.WithParallelism(64))
//
// Returns an error if the value is zero or negative.
func WithParallelism(n int) Option {
	return func(cfg *queueConfig) error {
		if n <= 0 {
			return errors.New("parallelism must be positive")
		}
		cfg.parallelism = n
		return nil
	}
}

// WithTransport injects a custom [Transport].
//
// Use this to supply TLS configuration, proxies, an instrumented client, or
// the fasthttp-backed [FastHTTPTransport]. If not specified, a pooled
// [HTTPTransport] sized by the queue's parallelism is used.
//
// Example:
//
//	q, err := fetchq.New(
//	    fetchq.WithTransport(fetchq.NewFastHTTPTransport(64)),
//	    fetchq.WithParallelism(64),
//	)
//
// Returns an error if the transport is nil.
func WithTransport(t Transport) Option {
	return func(cfg *queueConfig) error {
		if t == nil {
			return errors.New("transport cannot be nil")
		}
		cfg.transport = t
		return nil
	}
}

// WithLogger sets a custom [slog.Logger] for the queue.
//
// This allows SDK consumers to control where logs are written and in what
// format. If not specified, [slog.Default] is used.
//
// Example:
//
//	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
//	q, err := fetchq.New(fetchq.WithLogger(logger))
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *queueConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithCommandBuffer sizes the submission channel between the caller and the
// worker.
//
// Submit never blocks regardless of this value; the buffer only controls how
// many submissions the fast path absorbs before spilling to a goroutine.
// Defaults to 256.
//
// Returns an error if the value is zero or negative.
func WithCommandBuffer(n int) Option {
	return func(cfg *queueConfig) error {
		if n <= 0 {
			return errors.New("command buffer must be positive")
		}
		cfg.commandBuffer = n
		return nil
	}
}

// WithMetricsRegistry registers the queue's prometheus instruments
// (submitted/outcome counters, pending and in-flight gauges) against the
// given registerer.
//
// If not specified, the instruments live on a private registry: they keep
// working internally but are not exported anywhere.
//
// Example:
//
//	q, err := fetchq.New(fetchq.WithMetricsRegistry(prometheus.DefaultRegisterer))
//
// Returns an error if the registerer is nil.
func WithMetricsRegistry(reg prometheus.Registerer) Option {
	return func(cfg *queueConfig) error {
		if reg == nil {
			return errors.New("metrics registerer cannot be nil")
		}
		cfg.registry = reg
		return nil
	}
}
