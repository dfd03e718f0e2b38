package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"convoy/internal/coaching"
	"convoy/pkg/domain"
	derrors "convoy/pkg/domain-errors"
	"convoy/pkg/platform/httputil"
	"convoy/pkg/requestcontext"
)

// Service defines the interface for coaching operations.
type Service interface {
	CreatePlan(ctx context.Context, p coaching.CoachingPlan) (*coaching.CoachingPlan, error)
	GetPlan(ctx context.Context, planID domain.PlanID) (*coaching.CoachingPlan, error)
	ListByDriver(ctx context.Context, driverID domain.DriverID) ([]*coaching.CoachingPlan, error)
	ApplyCheckIn(ctx context.Context, planID domain.PlanID, week int, next coaching.CheckInStatus, notes *string) (*coaching.CoachingPlan, error)
	Terminate(ctx context.Context, planID domain.PlanID, reason string) (*coaching.CoachingPlan, error)
	Outcome(ctx context.Context, planID domain.PlanID) (*coaching.Outcome, error)
}

// Handler wires coaching endpoints to the coaching service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a coaching handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts coaching endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/drivers/{driverID}/coaching-plans", h.HandleCreatePlan)
	r.Get("/drivers/{driverID}/coaching-plans", h.HandleListByDriver)
	r.Get("/coaching-plans/{planID}", h.HandleGetPlan)
	r.Post("/coaching-plans/{planID}/check-ins/{week}", h.HandleCheckIn)
	r.Post("/coaching-plans/{planID}/terminate", h.HandleTerminate)
	r.Get("/coaching-plans/{planID}/outcome", h.HandleOutcome)
}

func planIDParam(r *http.Request) (domain.PlanID, error) {
	planID, err := domain.ParsePlanID(chi.URLParam(r, "planID"))
	if err != nil {
		return domain.PlanID{}, derrors.New(derrors.CodeValidation, "invalid plan id")
	}
	return planID, nil
}

// HandleCreatePlan handles POST /drivers/{driverID}/coaching-plans requests.
func (h *Handler) HandleCreatePlan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	driverID, err := domain.ParseDriverID(chi.URLParam(r, "driverID"))
	if err != nil {
		httputil.WriteError(w, derrors.New(derrors.CodeValidation, "invalid driver id"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[CreatePlanRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	plan := req.ToPlan()
	plan.DriverID = driverID

	created, err := h.service.CreatePlan(ctx, plan)
	if err != nil {
		h.logger.ErrorContext(ctx, "coaching plan creation failed",
			"request_id", requestID,
			"driver_id", driverID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, created)
}

// HandleListByDriver handles GET /drivers/{driverID}/coaching-plans requests.
func (h *Handler) HandleListByDriver(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	driverID, err := domain.ParseDriverID(chi.URLParam(r, "driverID"))
	if err != nil {
		httputil.WriteError(w, derrors.New(derrors.CodeValidation, "invalid driver id"))
		return
	}

	plans, err := h.service.ListByDriver(ctx, driverID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"plans": plans})
}

// HandleGetPlan handles GET /coaching-plans/{planID} requests.
func (h *Handler) HandleGetPlan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	planID, err := planIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	plan, err := h.service.GetPlan(ctx, planID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, plan)
}

// HandleCheckIn handles POST /coaching-plans/{planID}/check-ins/{week} requests.
func (h *Handler) HandleCheckIn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	planID, err := planIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	week, err := strconv.Atoi(chi.URLParam(r, "week"))
	if err != nil || week < 1 {
		httputil.WriteError(w, derrors.New(derrors.CodeValidation, "week must be a positive integer"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[CheckInRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	plan, err := h.service.ApplyCheckIn(ctx, planID, week, req.ParsedStatus(), req.Notes)
	if err != nil {
		h.logger.ErrorContext(ctx, "check-in transition failed",
			"request_id", requestID,
			"plan_id", planID,
			"week", week,
			"to", req.Status,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, plan)
}

// HandleTerminate handles POST /coaching-plans/{planID}/terminate requests.
func (h *Handler) HandleTerminate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	planID, err := planIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[TerminateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	plan, err := h.service.Terminate(ctx, planID, req.Reason)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, plan)
}

// HandleOutcome handles GET /coaching-plans/{planID}/outcome requests.
func (h *Handler) HandleOutcome(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	planID, err := planIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	outcome, err := h.service.Outcome(ctx, planID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, outcome)
}
