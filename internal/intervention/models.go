package intervention

import (
	"time"

	"convoy/pkg/domain"
)

// Recommended follow-up actions surfaced with each queue entry.
const (
	ActionAssignCoaching = "assign coaching"
	ActionReviewCheckIns = "schedule check-in and review outcomes"
)

// QueueItem is one ranked entry in the intervention queue. Derived, never
// persisted.
type QueueItem struct {
	DriverID          domain.DriverID `json:"driver_id"`
	DriverName        string          `json:"driver_name"`
	RiskScore         int             `json:"risk_score"`
	PriorityScore     int             `json:"priority_score"`
	RecentEventCount  int             `json:"recent_event_count"`
	MaxSeverity       int             `json:"max_severity"`
	LatestEventAt     *time.Time      `json:"latest_event_at,omitempty"`
	HasActiveCoaching bool            `json:"has_active_coaching"`
	RecommendedAction string          `json:"recommended_action"`
}

// Queue is the ranked intervention queue for one organization.
type Queue struct {
	OrgID domain.OrgID `json:"org_id"`
	AsOf  time.Time    `json:"as_of"`
	Items []QueueItem  `json:"items"`
}
