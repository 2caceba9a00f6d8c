package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the federation engine.
type Metrics struct {
	// Plan executions by plan kind and outcome
	PlanOutcome *prometheus.CounterVec

	// Join failures by reason
	JoinFailures *prometheus.CounterVec

	// Overall execution latency by plan kind
	ExecuteLatency *prometheus.HistogramVec
}

// New creates a new Metrics instance with all engine metrics registered.
func New() *Metrics {
	return &Metrics{
		PlanOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "gfde_federation_plan_outcomes_total",
			Help: "Total plan executions by plan kind and outcome",
		}, []string{"plan", "outcome"}),

		JoinFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "gfde_federation_join_failures_total",
			Help: "Cross-domain joins that failed, by reason",
		}, []string{"reason"}), // reason: "primary", "source_missing", "secondary", "bad_secondary"

		ExecuteLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gfde_federation_execute_duration_seconds",
			Help:    "Duration of plan execution including upstream calls",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"plan"}),
	}
}

// ObserveExecute records one plan execution.
func (m *Metrics) ObserveExecute(plan, outcome string, d time.Duration) {
	if m != nil {
		m.PlanOutcome.WithLabelValues(plan, outcome).Inc()
		m.ExecuteLatency.WithLabelValues(plan).Observe(d.Seconds())
	}
}

// IncrementJoinFailure records a failed join.
func (m *Metrics) IncrementJoinFailure(reason string) {
	if m != nil {
		m.JoinFailures.WithLabelValues(reason).Inc()
	}
}
