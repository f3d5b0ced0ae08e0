package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestNew_RegistersInstruments verifies that the instruments land on the
// given registry under the fetchq namespace.
func TestNew_RegistersInstruments(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Submitted.Inc()
	m.Outcomes.WithLabelValues(OutcomeResponse).Inc()
	m.Outcomes.WithLabelValues(OutcomeTimeout).Inc()
	m.Pending.Set(3)
	m.InFlight.Set(1)

	if got := testutil.ToFloat64(m.Submitted); got != 1 {
		t.Errorf("submitted counter = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Outcomes.WithLabelValues(OutcomeResponse)); got != 1 {
		t.Errorf("response outcome counter = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Pending); got != 3 {
		t.Errorf("pending gauge = %v, want 3", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	want := map[string]bool{
		"fetchq_requests_submitted_total": false,
		"fetchq_request_outcomes_total":   false,
		"fetchq_pending_requests":         false,
		"fetchq_inflight_tasks":           false,
	}
	for _, mf := range families {
		if _, ok := want[mf.GetName()]; ok {
			want[mf.GetName()] = true
		}
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("metric %s not registered", name)
		}
	}
}

// TestNew_NilRegistry verifies that a nil registerer still yields working
// instruments.
func TestNew_NilRegistry(t *testing.T) {
	m := New(nil)

	// must not panic
	m.Submitted.Inc()
	m.Outcomes.WithLabelValues(OutcomeCancelled).Inc()
	m.Pending.Inc()
	m.Pending.Dec()
	m.InFlight.Inc()
	m.InFlight.Dec()

	if got := testutil.ToFloat64(m.Submitted); got != 1 {
		t.Errorf("submitted counter = %v, want 1", got)
	}
}

// TestNew_IndependentRegistries verifies that two queues' instruments do not
// collide when each uses its own registry.
func TestNew_IndependentRegistries(t *testing.T) {
	a := New(prometheus.NewRegistry())
	b := New(prometheus.NewRegistry())

	a.Submitted.Inc()
	a.Submitted.Inc()
	b.Submitted.Inc()

	if got := testutil.ToFloat64(a.Submitted); got != 2 {
		t.Errorf("first queue submitted = %v, want 2", got)
	}
	if got := testutil.ToFloat64(b.Submitted); got != 1 {
		t.Errorf("second queue submitted = %v, want 1", got)
	}
}
