package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"gfde/internal/platform/metrics"
	dErrors "gfde/pkg/domain-errors"
	"gfde/pkg/platform/httputil"
	"gfde/pkg/platform/middleware/metadata"
	"gfde/pkg/platform/middleware/requestid"
	"gfde/pkg/platform/middleware/requesttime"
)

// Registrar mounts a module's endpoints.
type Registrar interface {
	Register(r chi.Router)
}

// HealthFunc reports whether the process can serve traffic.
type HealthFunc func(ctx context.Context) error

// Mount places a registrar under a path prefix; an empty prefix mounts at root.
type Mount struct {
	Prefix  string
	Handler Registrar
}

var tracer = otel.Tracer("gfde/http")

// NewRouter wires the shared middleware stack, operational endpoints and the
// given module mounts. health may be nil.
func NewRouter(logger *slog.Logger, m *metrics.Metrics, health HealthFunc, mounts ...Mount) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)
	r.Use(traceRequests)
	r.Use(metadata.AccessLog(logger))
	r.Use(m.Instrument)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if health != nil {
			if err := health(r.Context()); err != nil {
				logger.WarnContext(r.Context(), "health check failed", "error", err)
				httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeUpstreamUnavailable, "dependency unavailable"))
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	metrics.Register(r)

	for _, mount := range mounts {
		if mount.Prefix == "" {
			mount.Handler.Register(r)
			continue
		}
		r.Route(mount.Prefix, mount.Handler.Register)
	}
	return r
}

// traceRequests continues an inbound trace (the gateway propagates W3C trace
// context to subgraphs) and opens a server span per request.
func traceRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		ctx, span := tracer.Start(ctx, r.Method+" "+r.URL.Path, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
