package coaching

import (
	"time"

	"convoy/pkg/domain"
	derrors "convoy/pkg/domain-errors"
)

// PlanStatus is the coarse plan lifecycle. Completed and Terminated are
// terminal.
type PlanStatus string

const (
	PlanActive     PlanStatus = "active"
	PlanCompleted  PlanStatus = "completed"
	PlanTerminated PlanStatus = "terminated"
)

// AuditEntry records one field change on a check-in.
type AuditEntry struct {
	At    time.Time `json:"at"`
	Actor string    `json:"actor"`
	Field string    `json:"field"`
	From  string    `json:"from"`
	To    string    `json:"to"`
}

// CheckIn is one scheduled weekly review inside a plan. Mutated only
// through ApplyTransition.
type CheckIn struct {
	Week          int          `json:"week"`
	Assignee      string       `json:"assignee,omitempty"`
	Status        CheckInStatus `json:"status"`
	Notes         string       `json:"notes,omitempty"`
	CompletedDate *time.Time   `json:"completed_date,omitempty"`
	Audit         []AuditEntry `json:"audit,omitempty"`
}

// CoachingPlan tracks a driver's coaching engagement and its ordered
// check-ins.
type CoachingPlan struct {
	ID       domain.PlanID   `json:"id"`
	OrgID    domain.OrgID    `json:"org_id"`
	DriverID domain.DriverID `json:"driver_id"`

	Type          string     `json:"type"`
	Status        PlanStatus `json:"status"`
	StartDate     time.Time  `json:"start_date"`
	DurationWeeks int        `json:"duration_weeks,omitempty"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	TargetScore   *int       `json:"target_score,omitempty"`

	CheckIns []CheckIn `json:"check_ins"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate enforces plan creation preconditions.
func (p *CoachingPlan) Validate() error {
	if p.OrgID.IsNil() {
		return derrors.New(derrors.CodeValidation, "organization id is required")
	}
	if p.DriverID.IsNil() {
		return derrors.New(derrors.CodeValidation, "driver id is required")
	}
	if p.Type == "" {
		return derrors.New(derrors.CodeValidation, "plan type is required")
	}
	if p.StartDate.IsZero() {
		return derrors.New(derrors.CodeValidation, "start date is required")
	}
	if p.DurationWeeks <= 0 && p.DueDate == nil {
		return derrors.New(derrors.CodeValidation, "either duration_weeks or due_date is required")
	}
	if p.TargetScore != nil && (*p.TargetScore < 0 || *p.TargetScore > 100) {
		return derrors.New(derrors.CodeValidation, "target score must be between 0 and 100")
	}
	return nil
}

// End returns the plan's effective end. Falls back to now when neither a
// due date nor a duration is set.
func (p *CoachingPlan) End(now time.Time) time.Time {
	if p.DueDate != nil {
		return *p.DueDate
	}
	if p.DurationWeeks > 0 {
		return p.StartDate.AddDate(0, 0, p.DurationWeeks*7)
	}
	return now
}

// AllResolved reports whether every check-in has reached a resolved status.
func (p *CoachingPlan) AllResolved() bool {
	if len(p.CheckIns) == 0 {
		return false
	}
	for _, c := range p.CheckIns {
		if c.Status != CheckInComplete && c.Status != CheckInMissed {
			return false
		}
	}
	return true
}
