package workorder

import (
	"convoy/pkg/domain"
	derrors "convoy/pkg/domain-errors"
)

// Status is the guarded work order lifecycle state.
type Status string

const (
	StatusDraft      Status = "draft"
	StatusApproved   Status = "approved"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusClosed     Status = "closed"
	StatusCancelled  Status = "cancelled"
)

// ParseStatus constructs a Status from external input.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	switch status {
	case StatusDraft, StatusApproved, StatusInProgress, StatusCompleted, StatusClosed, StatusCancelled:
		return status, nil
	}
	return "", derrors.Newf(derrors.CodeValidation, "unknown work order status %q", s)
}

// baseTransitions is the strict forward chain. No skipping: a draft cannot
// jump straight to in_progress.
var baseTransitions = map[Status]map[Status]bool{
	StatusDraft:      {StatusApproved: true},
	StatusApproved:   {StatusInProgress: true},
	StatusInProgress: {StatusCompleted: true},
	StatusCompleted:  {StatusClosed: true},
	StatusClosed:     {},
	StatusCancelled:  {},
}

// Lifecycle holds the transition rules. Cancellation from draft or
// approved is a deployment-level choice, off unless configured.
type Lifecycle struct {
	AllowCancel bool
}

// allows reports structural membership in the transition table.
func (l Lifecycle) allows(current, next Status) bool {
	if baseTransitions[current][next] {
		return true
	}
	if l.AllowCancel && next == StatusCancelled {
		return current == StatusDraft || current == StatusApproved
	}
	return false
}

// CanTransition checks both the transition table and the role gate.
// Entering approved requires an admin or manager; a viewer can never
// approve even though the table allows draft to approved.
func (l Lifecycle) CanTransition(current, next Status, role domain.Role) error {
	if !l.allows(current, next) {
		return derrors.Newf(derrors.CodeInvariantViolation,
			"cannot transition work order from %q to %q", current, next)
	}
	if next == StatusApproved && !role.CanApprove() {
		return derrors.Newf(derrors.CodeForbidden,
			"role %q cannot approve work orders", role)
	}
	return nil
}

// IsTerminal reports whether no further transitions are possible.
func (l Lifecycle) IsTerminal(s Status) bool {
	return s == StatusClosed || s == StatusCancelled
}
