package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"gfde/internal/query"
	dErrors "gfde/pkg/domain-errors"
	"gfde/pkg/platform/httputil"
	"gfde/pkg/requestcontext"
)

// Engine executes classified plans.
type Engine interface {
	Execute(ctx context.Context, plan query.Plan) (query.Response, error)
}

// Handler serves the federated query surface.
type Handler struct {
	engine Engine
	logger *slog.Logger
}

// New constructs a gateway handler with its dependencies.
func New(engine Engine, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{engine: engine, logger: logger}
}

// Register mounts the gateway endpoint on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/graphql", h.HandleQuery)
}

// HandleQuery handles POST /graphql requests. Queries that cannot be
// classified are rejected before the engine runs.
func (h *Handler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, err := httputil.DecodeJSON[query.Request](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	plan, err := query.Classify(req)
	if err != nil {
		h.logger.InfoContext(ctx, "query rejected",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	resp, err := h.engine.Execute(ctx, plan)
	if err != nil {
		level := slog.LevelWarn
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			level = slog.LevelError
		}
		h.logger.Log(ctx, level, "query failed",
			"request_id", requestID,
			"plan", plan.Kind(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "query served",
		"request_id", requestID,
		"plan", plan.Kind(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, resp)
}
