// Package audit defines the transport-agnostic audit event model shared by
// all feature modules. Events are emitted from domain logic and fanned out
// to stores and sinks (memory for tests, Kafka in production).
package audit

import (
	"context"
	"time"

	"convoy/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with legal/regulatory significance:
	// score computations, coaching outcomes, compliance queue actions.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events relevant to access control and
	// forensics: rejected transitions, role-gate violations.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers events useful for debugging and
	// operational visibility. Can be sampled or aggregated.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	OrgID     domain.OrgID
	DriverID  domain.DriverID
	Subject   string
	Action    string
	Decision  string
	Reason    string
	// ActorID tracks who performed the action (manager, technician, or
	// "system" for scheduled recomputes).
	ActorID string
	// RequestID is the correlation ID from HTTP request context.
	RequestID string
}

type AuditEvent string

const (
	// Scoring events
	EventRiskEventIngested AuditEvent = "risk_event_ingested"
	EventRiskScoreComputed AuditEvent = "risk_score_computed"
	EventTelemetryDegraded AuditEvent = "telemetry_degraded"

	// Coaching events
	EventCoachingPlanCreated    AuditEvent = "coaching_plan_created"
	EventCoachingPlanTerminated AuditEvent = "coaching_plan_terminated"
	EventCheckInTransitioned    AuditEvent = "checkin_transitioned"

	// Work order events
	EventWorkOrderCreated      AuditEvent = "workorder_created"
	EventWorkOrderTransitioned AuditEvent = "workorder_transitioned"

	// Guard violations
	EventInvalidTransitionRejected AuditEvent = "invalid_transition_rejected"
	EventApprovalDenied            AuditEvent = "approval_denied"
)

// eventCategories maps each audit event to its category.
var eventCategories = map[AuditEvent]EventCategory{
	// Compliance events - long retention, regulatory significance
	EventRiskScoreComputed:      CategoryCompliance,
	EventCoachingPlanCreated:    CategoryCompliance,
	EventCoachingPlanTerminated: CategoryCompliance,
	EventCheckInTransitioned:    CategoryCompliance,
	EventWorkOrderTransitioned:  CategoryCompliance,

	// Security events - access control violations
	EventInvalidTransitionRejected: CategorySecurity,
	EventApprovalDenied:            CategorySecurity,

	// Operations events - routine activity, can be sampled
	EventRiskEventIngested: CategoryOperations,
	EventTelemetryDegraded: CategoryOperations,
	EventWorkOrderCreated:  CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByDriver(ctx context.Context, driverID domain.DriverID) ([]Event, error)
}

// Emitter is the narrow interface feature modules depend on.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}
