package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for calls to domain subgraphs.
type Metrics struct {
	// Call latency by domain and outcome
	CallLatency *prometheus.HistogramVec

	// Breaker transitions by domain and new state
	BreakerTransitions *prometheus.CounterVec
}

// New creates a new Metrics instance with all upstream metrics registered.
func New() *Metrics {
	return &Metrics{
		CallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gfde_upstream_call_duration_seconds",
			Help:    "Duration of calls to domain subgraphs by domain and outcome",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"domain", "outcome"}), // outcome: error code or "ok"

		BreakerTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "gfde_upstream_breaker_transitions_total",
			Help: "Circuit breaker state transitions by domain",
		}, []string{"domain", "state"}),
	}
}

// ObserveCall records one upstream call.
func (m *Metrics) ObserveCall(domain, outcome string, d time.Duration) {
	if m != nil {
		m.CallLatency.WithLabelValues(domain, outcome).Observe(d.Seconds())
	}
}

// IncrementBreakerTransition records a breaker opening or closing.
func (m *Metrics) IncrementBreakerTransition(domain, state string) {
	if m != nil {
		m.BreakerTransitions.WithLabelValues(domain, state).Inc()
	}
}
