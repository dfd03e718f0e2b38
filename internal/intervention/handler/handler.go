package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"convoy/internal/intervention"
	"convoy/pkg/platform/httputil"
	"convoy/pkg/requestcontext"
)

// Service defines the interface for intervention queue operations.
type Service interface {
	Build(ctx context.Context) (*intervention.Queue, error)
}

// Handler wires the intervention queue endpoint to the service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an intervention handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts intervention endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/interventions/queue", h.HandleQueue)
}

// HandleQueue handles GET /interventions/queue requests.
func (h *Handler) HandleQueue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	queue, err := h.service.Build(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "intervention queue build failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "intervention queue served",
		"request_id", requestID,
		"items", len(queue.Items),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, queue)
}
