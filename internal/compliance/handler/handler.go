package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"convoy/internal/compliance"
	"convoy/pkg/platform/httputil"
	"convoy/pkg/requestcontext"
)

// Service defines the interface for compliance operations.
type Service interface {
	CreateTask(ctx context.Context, t compliance.Task) (*compliance.Task, error)
	RecordInspection(ctx context.Context, i compliance.Inspection) (*compliance.Inspection, error)
	FileDocument(ctx context.Context, d compliance.Document) (*compliance.Document, error)
	Snapshot(ctx context.Context) (*compliance.Snapshot, error)
}

// Handler wires compliance endpoints to the compliance service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a compliance handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts compliance endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/compliance/tasks", h.HandleCreateTask)
	r.Post("/compliance/inspections", h.HandleRecordInspection)
	r.Post("/compliance/documents", h.HandleFileDocument)
	r.Get("/compliance/snapshot", h.HandleSnapshot)
}

// HandleCreateTask handles POST /compliance/tasks requests.
func (h *Handler) HandleCreateTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateTaskRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	created, err := h.service.CreateTask(ctx, req.ToTask())
	if err != nil {
		h.logger.ErrorContext(ctx, "compliance task creation failed",
			"request_id", requestID,
			"title", req.Title,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, created)
}

// HandleRecordInspection handles POST /compliance/inspections requests.
func (h *Handler) HandleRecordInspection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RecordInspectionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	created, err := h.service.RecordInspection(ctx, req.ToInspection())
	if err != nil {
		h.logger.ErrorContext(ctx, "inspection recording failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, created)
}

// HandleFileDocument handles POST /compliance/documents requests.
func (h *Handler) HandleFileDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[FileDocumentRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	created, err := h.service.FileDocument(ctx, req.ToDocument())
	if err != nil {
		h.logger.ErrorContext(ctx, "document filing failed",
			"request_id", requestID,
			"category", req.Category,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, created)
}

// HandleSnapshot handles GET /compliance/snapshot requests.
func (h *Handler) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Snapshot(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, snap)
}
