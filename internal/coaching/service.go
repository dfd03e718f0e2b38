package coaching

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	coachmetrics "convoy/internal/coaching/metrics"
	"convoy/internal/scoring"
	"convoy/pkg/domain"
	derrors "convoy/pkg/domain-errors"
	"convoy/pkg/platform/audit"
	"convoy/pkg/platform/sentinel"
	"convoy/pkg/requestcontext"
)

// PlanStore persists coaching plans and their check-ins.
type PlanStore interface {
	Create(ctx context.Context, p *CoachingPlan) error
	FindByID(ctx context.Context, orgID domain.OrgID, planID domain.PlanID) (*CoachingPlan, error)
	ListByDriver(ctx context.Context, orgID domain.OrgID, driverID domain.DriverID) ([]*CoachingPlan, error)
	Update(ctx context.Context, p *CoachingPlan) error
	ActiveDriverIDs(ctx context.Context, orgID domain.OrgID) ([]domain.DriverID, error)
}

// ScoreHistory reads a driver's chronological score history.
type ScoreHistory interface {
	History(ctx context.Context, driverID domain.DriverID) ([]scoring.ScorePoint, error)
}

// Service owns coaching plan lifecycle, check-in transitions, and outcome
// evaluation.
type Service struct {
	plans   PlanStore
	scores  ScoreHistory
	logger  *slog.Logger
	auditor audit.Emitter
	metrics *coachmetrics.Metrics
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
func WithMetrics(m *coachmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(plans PlanStore, scores ScoreHistory, opts ...Option) (*Service, error) {
	if plans == nil {
		return nil, derrors.New(derrors.CodeValidation, "plan store is required")
	}
	if scores == nil {
		return nil, derrors.New(derrors.CodeValidation, "score history source is required")
	}

	svc := &Service{
		plans:  plans,
		scores: scores,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

func (s *Service) requireManager(ctx context.Context) error {
	if requestcontext.OrgID(ctx).IsNil() {
		return derrors.New(derrors.CodeValidation, "organization context is required")
	}
	if !requestcontext.Role(ctx).CanManagePlans() {
		return derrors.New(derrors.CodeForbidden, "coaching plans require a manager or admin role")
	}
	return nil
}

// CreatePlan starts a coaching engagement for a driver. Manager action;
// viewers cannot create plans. When no check-ins are supplied, one pending
// check-in per plan week is seeded.
func (s *Service) CreatePlan(ctx context.Context, p CoachingPlan) (*CoachingPlan, error) {
	if err := s.requireManager(ctx); err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)

	p.OrgID = requestcontext.OrgID(ctx)
	p.ID = domain.PlanID(uuid.New())
	p.Status = PlanActive
	p.CreatedAt = now
	p.UpdatedAt = now

	if err := p.Validate(); err != nil {
		return nil, err
	}

	if len(p.CheckIns) == 0 && p.DurationWeeks > 0 {
		p.CheckIns = make([]CheckIn, 0, p.DurationWeeks)
		for week := 1; week <= p.DurationWeeks; week++ {
			p.CheckIns = append(p.CheckIns, CheckIn{Week: week, Status: CheckInPending})
		}
	}

	if err := s.plans.Create(ctx, &p); err != nil {
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to create coaching plan")
	}

	s.logger.InfoContext(ctx, "coaching plan created",
		"plan_id", p.ID,
		"driver_id", p.DriverID,
		"type", p.Type,
		"check_ins", len(p.CheckIns),
	)
	s.emit(ctx, audit.Event{
		OrgID:    p.OrgID,
		DriverID: p.DriverID,
		Subject:  p.ID.String(),
		Action:   string(audit.EventCoachingPlanCreated),
		ActorID:  requestcontext.ActorID(ctx),
	})

	return &p, nil
}

// GetPlan returns one plan in the caller's organization.
func (s *Service) GetPlan(ctx context.Context, planID domain.PlanID) (*CoachingPlan, error) {
	orgID := requestcontext.OrgID(ctx)
	if orgID.IsNil() {
		return nil, derrors.New(derrors.CodeValidation, "organization context is required")
	}
	return s.findPlan(ctx, orgID, planID)
}

// ListByDriver returns the driver's plans in creation order.
func (s *Service) ListByDriver(ctx context.Context, driverID domain.DriverID) ([]*CoachingPlan, error) {
	orgID := requestcontext.OrgID(ctx)
	if orgID.IsNil() {
		return nil, derrors.New(derrors.CodeValidation, "organization context is required")
	}
	plans, err := s.plans.ListByDriver(ctx, orgID, driverID)
	if err != nil {
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to list coaching plans")
	}
	return plans, nil
}

// ActiveDriverIDs reports which drivers currently have an active plan.
// Consumed by the intervention queue builder.
func (s *Service) ActiveDriverIDs(ctx context.Context, orgID domain.OrgID) ([]domain.DriverID, error) {
	ids, err := s.plans.ActiveDriverIDs(ctx, orgID)
	if err != nil {
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to list active coaching drivers")
	}
	return ids, nil
}

// ApplyCheckIn runs one guarded check-in transition. An invalid transition
// rejects the whole operation and leaves the plan untouched. When the
// transition resolves the last open check-in, the plan completes.
func (s *Service) ApplyCheckIn(ctx context.Context, planID domain.PlanID, week int, next CheckInStatus, notes *string) (*CoachingPlan, error) {
	if err := s.requireManager(ctx); err != nil {
		return nil, err
	}
	orgID := requestcontext.OrgID(ctx)
	now := requestcontext.Now(ctx)
	actor := requestcontext.ActorID(ctx)

	p, err := s.findPlan(ctx, orgID, planID)
	if err != nil {
		return nil, err
	}
	if p.Status != PlanActive {
		err := derrors.Newf(derrors.CodeInvariantViolation, "plan is %s; check-ins can only change on an active plan", p.Status)
		s.metrics.IncrementRejection(string(next))
		s.emit(ctx, audit.Event{
			OrgID:    orgID,
			DriverID: p.DriverID,
			Subject:  fmt.Sprintf("%s/week/%d", planID, week),
			Action:   string(audit.EventInvalidTransitionRejected),
			Reason:   derrors.MessageOf(err),
			ActorID:  actor,
		})
		return nil, err
	}

	var from CheckInStatus
	for _, c := range p.CheckIns {
		if c.Week == week {
			from = c.Status
			break
		}
	}

	updated, err := ApplyTransition(p.CheckIns, week, next, notes, actor, now)
	if err != nil {
		if derrors.HasCode(err, derrors.CodeInvariantViolation) {
			s.metrics.IncrementRejection(string(next))
			s.emit(ctx, audit.Event{
				OrgID:    orgID,
				DriverID: p.DriverID,
				Subject:  fmt.Sprintf("%s/week/%d", planID, week),
				Action:   string(audit.EventInvalidTransitionRejected),
				Reason:   derrors.MessageOf(err),
				ActorID:  actor,
			})
		}
		return nil, err
	}

	p.CheckIns = updated
	if p.AllResolved() {
		p.Status = PlanCompleted
	}
	p.UpdatedAt = now

	if err := s.plans.Update(ctx, p); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, derrors.New(derrors.CodeNotFound, "coaching plan not found")
		}
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to update coaching plan")
	}

	s.metrics.IncrementTransition(string(from), string(next))
	s.logger.InfoContext(ctx, "check-in transitioned",
		"plan_id", planID,
		"week", week,
		"from", from,
		"to", next,
		"plan_status", p.Status,
	)
	s.emit(ctx, audit.Event{
		OrgID:    orgID,
		DriverID: p.DriverID,
		Subject:  fmt.Sprintf("%s/week/%d", planID, week),
		Action:   string(audit.EventCheckInTransitioned),
		Decision: string(next),
		ActorID:  actor,
	})

	return p, nil
}

// Terminate ends a plan early. Terminal; the plan can never reactivate.
func (s *Service) Terminate(ctx context.Context, planID domain.PlanID, reason string) (*CoachingPlan, error) {
	if err := s.requireManager(ctx); err != nil {
		return nil, err
	}
	orgID := requestcontext.OrgID(ctx)

	p, err := s.findPlan(ctx, orgID, planID)
	if err != nil {
		return nil, err
	}
	if p.Status != PlanActive {
		return nil, derrors.Newf(derrors.CodeInvariantViolation, "plan is already %s", p.Status)
	}

	p.Status = PlanTerminated
	p.UpdatedAt = requestcontext.Now(ctx)
	if err := s.plans.Update(ctx, p); err != nil {
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to update coaching plan")
	}

	s.logger.InfoContext(ctx, "coaching plan terminated", "plan_id", planID, "reason", reason)
	s.emit(ctx, audit.Event{
		OrgID:    orgID,
		DriverID: p.DriverID,
		Subject:  planID.String(),
		Action:   string(audit.EventCoachingPlanTerminated),
		Reason:   reason,
		ActorID:  requestcontext.ActorID(ctx),
	})

	return p, nil
}

// Outcome evaluates whether the plan's risk trend improved, against the
// driver's full chronological score history.
func (s *Service) Outcome(ctx context.Context, planID domain.PlanID) (*Outcome, error) {
	orgID := requestcontext.OrgID(ctx)
	if orgID.IsNil() {
		return nil, derrors.New(derrors.CodeValidation, "organization context is required")
	}

	p, err := s.findPlan(ctx, orgID, planID)
	if err != nil {
		return nil, err
	}

	history, err := s.scores.History(ctx, p.DriverID)
	if err != nil {
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to load score history")
	}

	outcome := EvaluateOutcome(p, history, requestcontext.Now(ctx))
	s.metrics.IncrementOutcome(string(outcome.Trend))
	return &outcome, nil
}

func (s *Service) findPlan(ctx context.Context, orgID domain.OrgID, planID domain.PlanID) (*CoachingPlan, error) {
	p, err := s.plans.FindByID(ctx, orgID, planID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, derrors.New(derrors.CodeNotFound, "coaching plan not found")
		}
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to load coaching plan")
	}
	return p, nil
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
