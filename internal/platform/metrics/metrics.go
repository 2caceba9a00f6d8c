package metrics

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds process-wide Prometheus metrics.
type Metrics struct {
	HTTPRequests *prometheus.CounterVec
}

// New creates and registers process-wide metrics.
func New() *Metrics {
	return &Metrics{
		HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "gfde_http_requests_total",
			Help: "Total HTTP requests by route and status class",
		}, []string{"route", "status"}),
	}
}

// IncrementRequests counts one served request.
func (m *Metrics) IncrementRequests(route string, status int) {
	if m != nil {
		m.HTTPRequests.WithLabelValues(route, statusClass(status)).Inc()
	}
}

// Instrument counts requests passing through a router.
func (m *Metrics) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		m.IncrementRequests(routeLabel(r), ww.Status())
	})
}

// unmatchedRoute labels requests no route pattern matched, keeping raw paths
// out of the label set.
const unmatchedRoute = "unmatched"

func routeLabel(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
		return rctx.RoutePattern()
	}
	return unmatchedRoute
}

// Register mounts GET /metrics.
func Register(r chi.Router) {
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
}

func statusClass(status int) string {
	switch {
	case status == 0:
		return "2xx"
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
