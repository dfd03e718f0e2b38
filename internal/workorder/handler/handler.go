package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"convoy/internal/workorder"
	"convoy/pkg/domain"
	derrors "convoy/pkg/domain-errors"
	"convoy/pkg/platform/httputil"
	"convoy/pkg/requestcontext"
)

// Service defines the interface for work order operations.
type Service interface {
	Create(ctx context.Context, w workorder.WorkOrder) (*workorder.WorkOrder, error)
	Get(ctx context.Context, orderID domain.WorkOrderID) (*workorder.WorkOrder, error)
	List(ctx context.Context) ([]*workorder.WorkOrder, error)
	Transition(ctx context.Context, orderID domain.WorkOrderID, next workorder.Status) (*workorder.WorkOrder, error)
	ReplaceLineItems(ctx context.Context, orderID domain.WorkOrderID, items []workorder.LineItem) (*workorder.WorkOrder, error)
}

// Handler wires work order endpoints to the work order service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a work order handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts work order endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/work-orders", h.HandleCreate)
	r.Get("/work-orders", h.HandleList)
	r.Get("/work-orders/{workOrderID}", h.HandleGet)
	r.Post("/work-orders/{workOrderID}/transition", h.HandleTransition)
	r.Put("/work-orders/{workOrderID}/line-items", h.HandleLineItems)
}

func orderIDParam(r *http.Request) (domain.WorkOrderID, error) {
	orderID, err := domain.ParseWorkOrderID(chi.URLParam(r, "workOrderID"))
	if err != nil {
		return domain.WorkOrderID{}, derrors.New(derrors.CodeValidation, "invalid work order id")
	}
	return orderID, nil
}

// HandleCreate handles POST /work-orders requests.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	created, err := h.service.Create(ctx, req.ToWorkOrder())
	if err != nil {
		h.logger.ErrorContext(ctx, "work order creation failed",
			"request_id", requestID,
			"equipment", req.Equipment,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, created)
}

// HandleList handles GET /work-orders requests.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"work_orders": orders})
}

// HandleGet handles GET /work-orders/{workOrderID} requests.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	orderID, err := orderIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	order, err := h.service.Get(r.Context(), orderID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, order)
}

// HandleTransition handles POST /work-orders/{workOrderID}/transition requests.
func (h *Handler) HandleTransition(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	orderID, err := orderIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[TransitionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	order, err := h.service.Transition(ctx, orderID, req.ParsedStatus())
	if err != nil {
		h.logger.ErrorContext(ctx, "work order transition failed",
			"request_id", requestID,
			"work_order_id", orderID,
			"to", req.Status,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, order)
}

// HandleLineItems handles PUT /work-orders/{workOrderID}/line-items requests.
func (h *Handler) HandleLineItems(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	orderID, err := orderIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[LineItemsRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	order, err := h.service.ReplaceLineItems(ctx, orderID, req.ToLineItems())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, order)
}
