package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"convoy/internal/scoring"
	"convoy/pkg/domain"
	derrors "convoy/pkg/domain-errors"
	"convoy/pkg/platform/httputil"
	"convoy/pkg/requestcontext"
)

// Service defines the interface for scoring operations.
type Service interface {
	IngestEvent(ctx context.Context, e scoring.RiskEvent) (*scoring.RiskEvent, error)
	Score(ctx context.Context, driverID domain.DriverID) (*scoring.RiskScoreSnapshot, error)
	Latest(ctx context.Context, driverID domain.DriverID) (*scoring.RiskScoreSnapshot, error)
	History(ctx context.Context, driverID domain.DriverID) ([]scoring.ScorePoint, error)
}

// Handler wires scoring endpoints to the scoring service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a scoring handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts scoring endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/drivers/{driverID}/risk-events", h.HandleIngestEvent)
	r.Post("/drivers/{driverID}/score", h.HandleScore)
	r.Get("/drivers/{driverID}/score", h.HandleLatest)
	r.Get("/drivers/{driverID}/score/history", h.HandleHistory)
}

func driverIDParam(r *http.Request) (domain.DriverID, error) {
	raw := chi.URLParam(r, "driverID")
	driverID, err := domain.ParseDriverID(raw)
	if err != nil {
		return domain.DriverID{}, derrors.New(derrors.CodeValidation, "invalid driver id")
	}
	return driverID, nil
}

// HandleIngestEvent handles POST /drivers/{driverID}/risk-events requests.
func (h *Handler) HandleIngestEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	driverID, err := driverIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[IngestEventRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	event := req.ToEvent()
	event.DriverID = driverID

	created, err := h.service.IngestEvent(ctx, event)
	if err != nil {
		h.logger.ErrorContext(ctx, "risk event ingestion failed",
			"request_id", requestID,
			"driver_id", driverID,
			"type", req.Type,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, FromEvent(created))
}

// HandleScore handles POST /drivers/{driverID}/score requests. It computes
// a fresh snapshot; reads go through HandleLatest.
func (h *Handler) HandleScore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	driverID, err := driverIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	snap, err := h.service.Score(ctx, driverID)
	if err != nil {
		h.logger.ErrorContext(ctx, "score computation failed",
			"request_id", requestID,
			"driver_id", driverID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "score computed",
		"request_id", requestID,
		"driver_id", driverID,
		"composite", snap.Composite,
		"band", snap.Band,
		"degraded", snap.Degraded,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, FromSnapshot(snap))
}

// HandleLatest handles GET /drivers/{driverID}/score requests.
func (h *Handler) HandleLatest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	driverID, err := driverIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	snap, err := h.service.Latest(ctx, driverID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromSnapshot(snap))
}

// HandleHistory handles GET /drivers/{driverID}/score/history requests.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	driverID, err := driverIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	points, err := h.service.History(ctx, driverID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromHistory(driverID.String(), points))
}
