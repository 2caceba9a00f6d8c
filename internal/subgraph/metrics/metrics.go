package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for domain subgraphs. One instance is shared
// by every subgraph in the process; series are labelled by domain.
type Metrics struct {
	// Request latency by domain and outcome
	ExecuteLatency *prometheus.HistogramVec

	// Requests by domain and error code ("ok" on success)
	Requests *prometheus.CounterVec
}

// New creates a new Metrics instance with all subgraph metrics registered.
func New() *Metrics {
	return &Metrics{
		ExecuteLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gfde_subgraph_execute_duration_seconds",
			Help:    "Duration of subgraph request execution",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
		}, []string{"domain"}),

		Requests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "gfde_subgraph_requests_total",
			Help: "Total subgraph requests by domain and result code",
		}, []string{"domain", "code"}),
	}
}

// ObserveExecute records one executed request.
func (m *Metrics) ObserveExecute(domain, code string, d time.Duration) {
	if m != nil {
		m.ExecuteLatency.WithLabelValues(domain).Observe(d.Seconds())
		m.Requests.WithLabelValues(domain, code).Inc()
	}
}
