package handler

import (
	"time"

	"convoy/internal/scoring"
)

// EventResponse is the HTTP response for an ingested risk event.
type EventResponse struct {
	ID         string    `json:"id"`
	DriverID   string    `json:"driver_id"`
	Source     string    `json:"source,omitempty"`
	Type       string    `json:"type"`
	Severity   int       `json:"severity"`
	OccurredAt time.Time `json:"occurred_at"`
}

// FromEvent converts a domain event to an HTTP response.
func FromEvent(e *scoring.RiskEvent) *EventResponse {
	return &EventResponse{
		ID:         e.ID.String(),
		DriverID:   e.DriverID.String(),
		Source:     e.Source,
		Type:       string(e.Type),
		Severity:   e.Severity,
		OccurredAt: e.OccurredAt,
	}
}

// SnapshotResponse is the HTTP representation of a score snapshot.
type SnapshotResponse struct {
	ID          string    `json:"id"`
	DriverID    string    `json:"driver_id"`
	Composite   int       `json:"composite"`
	Motive      int       `json:"motive"`
	Local       int       `json:"local"`
	Band        string    `json:"band"`
	Degraded    bool      `json:"degraded"`
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`
	AsOf        time.Time `json:"as_of"`
}

// FromSnapshot converts a domain snapshot to an HTTP response.
func FromSnapshot(s *scoring.RiskScoreSnapshot) *SnapshotResponse {
	return &SnapshotResponse{
		ID:          s.ID.String(),
		DriverID:    s.DriverID.String(),
		Composite:   s.Composite,
		Motive:      s.MotiveScore,
		Local:       s.LocalScore,
		Band:        string(s.Band),
		Degraded:    s.Degraded,
		WindowStart: s.WindowStart,
		WindowEnd:   s.WindowEnd,
		AsOf:        s.AsOf,
	}
}

// HistoryPoint is one chronological score observation.
type HistoryPoint struct {
	Score int       `json:"score"`
	AsOf  time.Time `json:"as_of"`
}

// HistoryResponse is the HTTP response for a driver's score history.
type HistoryResponse struct {
	DriverID string         `json:"driver_id"`
	Points   []HistoryPoint `json:"points"`
}

// FromHistory converts a score history to an HTTP response.
func FromHistory(driverID string, points []scoring.ScorePoint) *HistoryResponse {
	out := make([]HistoryPoint, 0, len(points))
	for _, p := range points {
		out = append(out, HistoryPoint{Score: p.Score, AsOf: p.AsOf})
	}
	return &HistoryResponse{DriverID: driverID, Points: out}
}
