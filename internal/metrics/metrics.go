// Package metrics provides prometheus instrumentation for fetchq queues.
//
// Instruments are instance-scoped rather than package-level globals so that
// several queues can coexist in one process, each against its own registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values for the outcomes counter.
const (
	OutcomeResponse       = "response"
	OutcomeTransportError = "transport_error"
	OutcomeCancelled      = "cancelled"
	OutcomeTimeout        = "timeout"
)

// Metrics holds the per-queue prometheus instruments.
type Metrics struct {
	// Submitted counts requests accepted by Submit.
	Submitted prometheus.Counter

	// Outcomes counts terminal outcomes, labeled by kind.
	Outcomes *prometheus.CounterVec

	// Pending tracks submitted-but-not-yet-drained requests.
	Pending prometheus.Gauge

	// InFlight tracks tasks currently executing on the worker.
	InFlight prometheus.Gauge
}

// New creates queue instruments registered against reg.
//
// A nil reg registers against a fresh private registry, keeping the
// instruments functional (and the callers unconditional) without polluting
// the default registry of a host that never asked for metrics.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		Submitted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "fetchq",
			Name:      "requests_submitted_total",
			Help:      "Total number of requests submitted to the queue",
		}),
		Outcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fetchq",
			Name:      "request_outcomes_total",
			Help:      "Total number of terminal request outcomes by kind",
		}, []string{"kind"}),
		Pending: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "fetchq",
			Name:      "pending_requests",
			Help:      "Current number of submitted requests whose outcome has not been drained",
		}),
		InFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "fetchq",
			Name:      "inflight_tasks",
			Help:      "Current number of request tasks executing on the worker",
		}),
	}
}
