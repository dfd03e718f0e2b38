package workorder

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	wometrics "convoy/internal/workorder/metrics"
	"convoy/pkg/domain"
	derrors "convoy/pkg/domain-errors"
	"convoy/pkg/platform/audit"
	"convoy/pkg/platform/sentinel"
	"convoy/pkg/requestcontext"
)

// Store persists work orders.
type Store interface {
	Create(ctx context.Context, w *WorkOrder) error
	FindByID(ctx context.Context, orgID domain.OrgID, orderID domain.WorkOrderID) (*WorkOrder, error)
	ListByOrg(ctx context.Context, orgID domain.OrgID) ([]*WorkOrder, error)
	Update(ctx context.Context, w *WorkOrder) error
}

// Service owns work order creation, guarded transitions, and line item
// maintenance.
type Service struct {
	orders    Store
	lifecycle Lifecycle
	logger    *slog.Logger
	auditor   audit.Emitter
	metrics   *wometrics.Metrics
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithAuditEmitter sets the audit emitter.
func WithAuditEmitter(e audit.Emitter) Option {
	return func(s *Service) { s.auditor = e }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *wometrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithCancellation enables the cancelled state from draft and approved.
func WithCancellation(allow bool) Option {
	return func(s *Service) { s.lifecycle.AllowCancel = allow }
}

func NewService(orders Store, opts ...Option) (*Service, error) {
	if orders == nil {
		return nil, derrors.New(derrors.CodeValidation, "work order store is required")
	}

	svc := &Service{
		orders: orders,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Create opens a new work order in draft.
func (s *Service) Create(ctx context.Context, w WorkOrder) (*WorkOrder, error) {
	orgID := requestcontext.OrgID(ctx)
	if orgID.IsNil() {
		return nil, derrors.New(derrors.CodeValidation, "organization context is required")
	}
	now := requestcontext.Now(ctx)

	w.ID = domain.WorkOrderID(uuid.New())
	w.OrgID = orgID
	w.Status = StatusDraft
	w.Approver = ""
	w.CreatedAt = now
	w.UpdatedAt = now
	w.RecomputeCosts()

	if err := w.Validate(); err != nil {
		return nil, err
	}

	if err := s.orders.Create(ctx, &w); err != nil {
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to create work order")
	}

	s.metrics.IncrementCreated()
	s.logger.InfoContext(ctx, "work order created",
		"work_order_id", w.ID,
		"equipment", w.Equipment,
		"priority", w.Priority,
		"total_cost_cents", w.TotalCostCents,
	)
	s.emit(ctx, audit.Event{
		OrgID:    orgID,
		DriverID: w.DriverID,
		Subject:  w.ID.String(),
		Action:   string(audit.EventWorkOrderCreated),
		ActorID:  requestcontext.ActorID(ctx),
	})

	return &w, nil
}

// Get returns one work order in the caller's organization.
func (s *Service) Get(ctx context.Context, orderID domain.WorkOrderID) (*WorkOrder, error) {
	orgID := requestcontext.OrgID(ctx)
	if orgID.IsNil() {
		return nil, derrors.New(derrors.CodeValidation, "organization context is required")
	}
	return s.findOrder(ctx, orgID, orderID)
}

// List returns the organization's work orders in creation order.
func (s *Service) List(ctx context.Context) ([]*WorkOrder, error) {
	orgID := requestcontext.OrgID(ctx)
	if orgID.IsNil() {
		return nil, derrors.New(derrors.CodeValidation, "organization context is required")
	}
	orders, err := s.orders.ListByOrg(ctx, orgID)
	if err != nil {
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to list work orders")
	}
	return orders, nil
}

// Transition moves a work order to the next status. Table membership and
// the approval role gate are both checked before anything is written; a
// rejected transition leaves the record exactly as it was.
func (s *Service) Transition(ctx context.Context, orderID domain.WorkOrderID, next Status) (*WorkOrder, error) {
	orgID := requestcontext.OrgID(ctx)
	if orgID.IsNil() {
		return nil, derrors.New(derrors.CodeValidation, "organization context is required")
	}
	role := requestcontext.Role(ctx)
	actor := requestcontext.ActorID(ctx)

	w, err := s.findOrder(ctx, orgID, orderID)
	if err != nil {
		return nil, err
	}

	if err := s.lifecycle.CanTransition(w.Status, next, role); err != nil {
		if derrors.HasCode(err, derrors.CodeForbidden) {
			s.metrics.IncrementRejection("role")
			s.emit(ctx, audit.Event{
				OrgID:    orgID,
				DriverID: w.DriverID,
				Subject:  orderID.String(),
				Action:   string(audit.EventApprovalDenied),
				Reason:   derrors.MessageOf(err),
				ActorID:  actor,
			})
		} else {
			s.metrics.IncrementRejection("table")
			s.emit(ctx, audit.Event{
				OrgID:    orgID,
				DriverID: w.DriverID,
				Subject:  orderID.String(),
				Action:   string(audit.EventInvalidTransitionRejected),
				Reason:   derrors.MessageOf(err),
				ActorID:  actor,
			})
		}
		return nil, err
	}

	from := w.Status
	w.Status = next
	if next == StatusApproved {
		w.Approver = actor
	}
	w.UpdatedAt = requestcontext.Now(ctx)

	if err := s.orders.Update(ctx, w); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, derrors.New(derrors.CodeNotFound, "work order not found")
		}
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to update work order")
	}

	s.metrics.IncrementTransition(string(from), string(next))
	s.logger.InfoContext(ctx, "work order transitioned",
		"work_order_id", orderID,
		"from", from,
		"to", next,
	)
	s.emit(ctx, audit.Event{
		OrgID:    orgID,
		DriverID: w.DriverID,
		Subject:  orderID.String(),
		Action:   string(audit.EventWorkOrderTransitioned),
		Decision: string(next),
		ActorID:  actor,
	})

	return w, nil
}

// ReplaceLineItems swaps the line item list and recomputes the cost
// roll-ups. Allowed until the work is completed; completed, closed, and
// cancelled orders are frozen.
func (s *Service) ReplaceLineItems(ctx context.Context, orderID domain.WorkOrderID, items []LineItem) (*WorkOrder, error) {
	orgID := requestcontext.OrgID(ctx)
	if orgID.IsNil() {
		return nil, derrors.New(derrors.CodeValidation, "organization context is required")
	}

	for i := range items {
		if err := items[i].Validate(); err != nil {
			return nil, err
		}
	}

	w, err := s.findOrder(ctx, orgID, orderID)
	if err != nil {
		return nil, err
	}
	switch w.Status {
	case StatusDraft, StatusApproved, StatusInProgress:
	default:
		return nil, derrors.Newf(derrors.CodeInvariantViolation, "cannot modify line items on a %s work order", w.Status)
	}

	w.LineItems = items
	w.RecomputeCosts()
	w.UpdatedAt = requestcontext.Now(ctx)

	if err := s.orders.Update(ctx, w); err != nil {
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to update work order")
	}

	s.logger.InfoContext(ctx, "work order line items replaced",
		"work_order_id", orderID,
		"line_items", len(items),
		"total_cost_cents", w.TotalCostCents,
	)

	return w, nil
}

func (s *Service) findOrder(ctx context.Context, orgID domain.OrgID, orderID domain.WorkOrderID) (*WorkOrder, error) {
	w, err := s.orders.FindByID(ctx, orgID, orderID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, derrors.New(derrors.CodeNotFound, "work order not found")
		}
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to load work order")
	}
	return w, nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	event.Timestamp = requestcontext.Now(ctx)
	event.RequestID = requestcontext.RequestID(ctx)
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"error", err,
		)
	}
}
