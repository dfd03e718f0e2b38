package handler

import (
	"strings"
	"time"

	"convoy/internal/coaching"
	derrors "convoy/pkg/domain-errors"
)

// CreatePlanRequest is the HTTP request body for POST /drivers/{driverID}/coaching-plans.
type CreatePlanRequest struct {
	Type          string     `json:"type"`
	StartDate     time.Time  `json:"start_date"`
	DurationWeeks int        `json:"duration_weeks,omitempty"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	TargetScore   *int       `json:"target_score,omitempty"`
}

// Validate validates the request body.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *CreatePlanRequest) Validate() error {
	if r == nil {
		return derrors.New(derrors.CodeBadRequest, "request body is required")
	}

	r.Type = strings.TrimSpace(r.Type)
	if r.Type == "" {
		return derrors.New(derrors.CodeValidation, "type is required")
	}
	if r.StartDate.IsZero() {
		return derrors.New(derrors.CodeValidation, "start_date is required")
	}
	if r.DurationWeeks < 0 || r.DurationWeeks > 52 {
		return derrors.New(derrors.CodeValidation, "duration_weeks must be between 0 and 52")
	}
	if r.DurationWeeks == 0 && r.DueDate == nil {
		return derrors.New(derrors.CodeValidation, "either duration_weeks or due_date is required")
	}
	return nil
}

// ToPlan builds the domain plan. Driver identity comes from the URL.
func (r *CreatePlanRequest) ToPlan() coaching.CoachingPlan {
	return coaching.CoachingPlan{
		Type:          r.Type,
		StartDate:     r.StartDate,
		DurationWeeks: r.DurationWeeks,
		DueDate:       r.DueDate,
		TargetScore:   r.TargetScore,
	}
}

// CheckInRequest is the HTTP request body for POST /coaching-plans/{planID}/check-ins/{week}.
type CheckInRequest struct {
	Status string  `json:"status"`
	Notes  *string `json:"notes,omitempty"`

	parsedStatus coaching.CheckInStatus
}

// Validate validates and parses the request body.
func (r *CheckInRequest) Validate() error {
	if r == nil {
		return derrors.New(derrors.CodeBadRequest, "request body is required")
	}

	status, err := coaching.ParseCheckInStatus(strings.TrimSpace(r.Status))
	if err != nil {
		return err
	}
	r.parsedStatus = status

	if r.Notes != nil && len(*r.Notes) > 2000 {
		return derrors.New(derrors.CodeValidation, "notes must be at most 2000 characters")
	}
	return nil
}

// ParsedStatus returns the validated status.
func (r *CheckInRequest) ParsedStatus() coaching.CheckInStatus {
	return r.parsedStatus
}

// TerminateRequest is the HTTP request body for POST /coaching-plans/{planID}/terminate.
type TerminateRequest struct {
	Reason string `json:"reason"`
}

// Validate validates the request body.
func (r *TerminateRequest) Validate() error {
	if r == nil {
		return derrors.New(derrors.CodeBadRequest, "request body is required")
	}
	r.Reason = strings.TrimSpace(r.Reason)
	if r.Reason == "" {
		return derrors.New(derrors.CodeValidation, "reason is required")
	}
	return nil
}
