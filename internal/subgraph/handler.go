package subgraph

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"gfde/internal/query"
	"gfde/internal/subgraph/metrics"
	dErrors "gfde/pkg/domain-errors"
	"gfde/pkg/platform/httputil"
	"gfde/pkg/requestcontext"
)

// Handler exposes a schema over POST /graphql.
type Handler struct {
	schema  *Schema
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewHandler constructs a subgraph handler. metrics may be nil.
func NewHandler(schema *Schema, logger *slog.Logger, metrics *metrics.Metrics) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{schema: schema, logger: logger, metrics: metrics}
}

// Register mounts the subgraph endpoint on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/graphql", h.HandleQuery)
}

// HandleQuery handles POST /graphql requests.
func (h *Handler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, err := httputil.DecodeJSON[query.Request](r)
	if err != nil {
		h.metrics.ObserveExecute(h.schema.Name(), string(dErrors.CodeOf(err)), time.Since(start))
		httputil.WriteError(w, err)
		return
	}

	resp, err := h.schema.Execute(ctx, req)
	if err != nil {
		code := dErrors.CodeOf(err)
		h.metrics.ObserveExecute(h.schema.Name(), string(code), time.Since(start))
		level := slog.LevelWarn
		if code == dErrors.CodeInternal {
			level = slog.LevelError
		}
		h.logger.Log(ctx, level, "subgraph request failed",
			"domain", h.schema.Name(),
			"request_id", requestID,
			"code", code,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.metrics.ObserveExecute(h.schema.Name(), "ok", time.Since(start))
	h.logger.DebugContext(ctx, "subgraph request served",
		"domain", h.schema.Name(),
		"request_id", requestID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, resp)
}
