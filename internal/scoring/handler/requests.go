package handler

import (
	"strings"
	"time"

	"convoy/internal/scoring"
	derrors "convoy/pkg/domain-errors"
)

// IngestEventRequest is the HTTP request body for POST /drivers/{driverID}/risk-events.
type IngestEventRequest struct {
	Source        string            `json:"source"`
	Type          string            `json:"type"`
	Severity      int               `json:"severity"`
	DeltaOverride *int              `json:"delta_override,omitempty"`
	OccurredAt    time.Time         `json:"occurred_at"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// Validate validates the request body.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *IngestEventRequest) Validate() error {
	if r == nil {
		return derrors.New(derrors.CodeBadRequest, "request body is required")
	}

	r.Type = strings.TrimSpace(r.Type)
	if r.Type == "" {
		return derrors.New(derrors.CodeValidation, "type is required")
	}
	if len(r.Type) > 64 {
		return derrors.New(derrors.CodeValidation, "type must be at most 64 characters")
	}
	if r.OccurredAt.IsZero() {
		return derrors.New(derrors.CodeValidation, "occurred_at is required")
	}
	if len(r.Metadata) > 32 {
		return derrors.New(derrors.CodeValidation, "metadata must have at most 32 entries")
	}

	r.Source = strings.TrimSpace(r.Source)
	return nil
}

// ToEvent builds the domain event. Driver and org identity come from the
// URL and request context, not the body.
func (r *IngestEventRequest) ToEvent() scoring.RiskEvent {
	return scoring.RiskEvent{
		Source:        r.Source,
		Type:          scoring.EventType(r.Type),
		Severity:      r.Severity,
		DeltaOverride: r.DeltaOverride,
		OccurredAt:    r.OccurredAt,
		Metadata:      r.Metadata,
	}
}
