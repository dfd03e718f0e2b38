package scoring

import (
	"time"

	"convoy/pkg/domain"
	derrors "convoy/pkg/domain-errors"
)

// EventType classifies a risk event. Unknown types are accepted and scored
// with the default weight so new upstream event kinds never break ingestion.
type EventType string

const (
	EventSpeeding     EventType = "speeding"
	EventHardBraking  EventType = "hard_braking"
	EventHOSViolation EventType = "hos_violation"
	EventAccident     EventType = "accident"
	EventCitation     EventType = "citation"
)

// RiskEvent is an immutable fact about a driver. Append-only; never mutated
// or deleted by this core.
type RiskEvent struct {
	ID       domain.EventID  `json:"id"`
	OrgID    domain.OrgID    `json:"org_id"`
	DriverID domain.DriverID `json:"driver_id"`
	Source   string          `json:"source"`
	Type     EventType       `json:"type"`

	// Severity is a 1-5 integer weight. Values outside the range are
	// clamped at scoring time, not rejected at ingestion.
	Severity int `json:"severity"`

	// DeltaOverride, when present, replaces the weight*severity product
	// for this event.
	DeltaOverride *int `json:"delta_override,omitempty"`

	OccurredAt time.Time         `json:"occurred_at"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// Validate enforces ingestion preconditions.
func (e *RiskEvent) Validate() error {
	if e.OrgID.IsNil() {
		return derrors.New(derrors.CodeValidation, "organization id is required")
	}
	if e.DriverID.IsNil() {
		return derrors.New(derrors.CodeValidation, "driver id is required")
	}
	if e.Type == "" {
		return derrors.New(derrors.CodeValidation, "event type is required")
	}
	if e.OccurredAt.IsZero() {
		return derrors.New(derrors.CodeValidation, "occurred_at is required")
	}
	return nil
}

// Band is the coarse risk classification derived from the composite score.
type Band string

const (
	BandGreen  Band = "green"
	BandYellow Band = "yellow"
	BandRed    Band = "red"
)

// RiskScoreSnapshot is one append-only record per scoring run.
//
// Invariants:
//   - Composite, MotiveScore, LocalScore all in [0,100]
//   - Band is a deterministic function of Composite
//   - Degraded records that the external signal was substituted with the
//     fallback constant; it cannot be inferred from the score value
type RiskScoreSnapshot struct {
	ID       domain.SnapshotID `json:"id"`
	OrgID    domain.OrgID      `json:"org_id"`
	DriverID domain.DriverID   `json:"driver_id"`

	Composite   int  `json:"composite"`
	MotiveScore int  `json:"motive"`
	LocalScore  int  `json:"local"`
	Band        Band `json:"band"`
	Degraded    bool `json:"degraded"`

	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`
	AsOf        time.Time `json:"as_of"`
}

// ScorePoint is one point of a driver's chronological score history, the
// shape consumed by the coaching outcome evaluator.
type ScorePoint struct {
	Score int       `json:"score"`
	AsOf  time.Time `json:"as_of"`
}
