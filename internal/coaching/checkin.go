package coaching

import (
	"fmt"
	"time"

	derrors "convoy/pkg/domain-errors"
)

// CheckInStatus is the guarded per-week status.
type CheckInStatus string

const (
	CheckInPending    CheckInStatus = "pending"
	CheckInInProgress CheckInStatus = "in_progress"
	CheckInComplete   CheckInStatus = "complete"
	CheckInMissed     CheckInStatus = "missed"
)

// ParseCheckInStatus constructs a CheckInStatus from external input.
func ParseCheckInStatus(s string) (CheckInStatus, error) {
	status := CheckInStatus(s)
	if _, ok := checkInTransitions[status]; !ok {
		return "", derrors.Newf(derrors.CodeValidation, "unknown check-in status %q", s)
	}
	return status, nil
}

// checkInTransitions is the allowed-transition table. Self-loops let a
// caller re-submit the current status with updated notes.
var checkInTransitions = map[CheckInStatus]map[CheckInStatus]bool{
	CheckInPending: {
		CheckInPending:    true,
		CheckInInProgress: true,
		CheckInComplete:   true,
		CheckInMissed:     true,
	},
	CheckInInProgress: {
		CheckInInProgress: true,
		CheckInComplete:   true,
		CheckInMissed:     true,
	},
	CheckInComplete: {
		CheckInComplete:   true,
		CheckInInProgress: true,
	},
	CheckInMissed: {
		CheckInMissed:     true,
		CheckInInProgress: true,
		CheckInComplete:   true,
	},
}

// CanTransition reports whether a check-in may move from current to next.
func CanTransition(current, next CheckInStatus) bool {
	return checkInTransitions[current][next]
}

// ApplyTransition moves the check-in for the given week to nextStatus and
// optionally updates its notes. It returns a new check-in list; the input
// is never mutated, and other weeks are untouched.
//
// At most two audit entries are appended per call: one for a status change,
// one for a notes change. completedDate is set only when the resulting
// status is complete, and cleared otherwise.
func ApplyTransition(checkIns []CheckIn, week int, nextStatus CheckInStatus, notes *string, actor string, now time.Time) ([]CheckIn, error) {
	idx := -1
	for i := range checkIns {
		if checkIns[i].Week == week {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, derrors.Newf(derrors.CodeNotFound, "no check-in for week %d", week)
	}

	current := checkIns[idx].Status
	if !CanTransition(current, nextStatus) {
		return nil, derrors.New(derrors.CodeInvariantViolation,
			fmt.Sprintf("cannot transition check-in from %q to %q", current, nextStatus))
	}

	out := make([]CheckIn, len(checkIns))
	copy(out, checkIns)

	c := &out[idx]
	c.Audit = append([]AuditEntry(nil), c.Audit...)

	if nextStatus != current {
		c.Audit = append(c.Audit, AuditEntry{
			At:    now,
			Actor: actor,
			Field: "status",
			From:  string(current),
			To:    string(nextStatus),
		})
	}
	c.Status = nextStatus

	if notes != nil && *notes != c.Notes {
		c.Audit = append(c.Audit, AuditEntry{
			At:    now,
			Actor: actor,
			Field: "notes",
			From:  c.Notes,
			To:    *notes,
		})
		c.Notes = *notes
	}

	if nextStatus == CheckInComplete {
		t := now
		c.CompletedDate = &t
	} else {
		c.CompletedDate = nil
	}

	return out, nil
}
