package handler

import (
	"strings"
	"time"

	"convoy/internal/compliance"
	"convoy/pkg/domain"
	derrors "convoy/pkg/domain-errors"
)

// CreateTaskRequest is the HTTP request body for POST /compliance/tasks.
type CreateTaskRequest struct {
	DriverID string     `json:"driver_id,omitempty"`
	Title    string     `json:"title"`
	Priority string     `json:"priority"`
	DueDate  *time.Time `json:"due_date,omitempty"`

	parsedDriverID domain.DriverID
	parsedPriority compliance.Priority
}

// Validate validates and parses the request body.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *CreateTaskRequest) Validate() error {
	if r == nil {
		return derrors.New(derrors.CodeBadRequest, "request body is required")
	}

	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return derrors.New(derrors.CodeValidation, "title is required")
	}
	if len(r.Title) > 256 {
		return derrors.New(derrors.CodeValidation, "title must be at most 256 characters")
	}

	priority, err := compliance.ParsePriority(strings.TrimSpace(r.Priority))
	if err != nil {
		return err
	}
	r.parsedPriority = priority

	if r.DriverID != "" {
		driverID, err := domain.ParseDriverID(r.DriverID)
		if err != nil {
			return err
		}
		r.parsedDriverID = driverID
	}
	return nil
}

// ToTask builds the domain task.
func (r *CreateTaskRequest) ToTask() compliance.Task {
	return compliance.Task{
		DriverID: r.parsedDriverID,
		Title:    r.Title,
		Priority: r.parsedPriority,
		DueDate:  r.DueDate,
	}
}

// RecordInspectionRequest is the HTTP request body for POST /compliance/inspections.
type RecordInspectionRequest struct {
	DriverID           string     `json:"driver_id,omitempty"`
	Finding            string     `json:"finding"`
	RemediationDueDate *time.Time `json:"remediation_due_date,omitempty"`
	InspectedAt        *time.Time `json:"inspected_at,omitempty"`

	parsedDriverID domain.DriverID
}

// Validate validates and parses the request body.
func (r *RecordInspectionRequest) Validate() error {
	if r == nil {
		return derrors.New(derrors.CodeBadRequest, "request body is required")
	}

	r.Finding = strings.TrimSpace(r.Finding)
	if r.Finding == "" {
		return derrors.New(derrors.CodeValidation, "finding is required")
	}

	if r.DriverID != "" {
		driverID, err := domain.ParseDriverID(r.DriverID)
		if err != nil {
			return err
		}
		r.parsedDriverID = driverID
	}
	return nil
}

// ToInspection builds the domain inspection.
func (r *RecordInspectionRequest) ToInspection() compliance.Inspection {
	i := compliance.Inspection{
		DriverID:           r.parsedDriverID,
		Finding:            r.Finding,
		RemediationDueDate: r.RemediationDueDate,
	}
	if r.InspectedAt != nil {
		i.InspectedAt = *r.InspectedAt
	}
	return i
}

// FileDocumentRequest is the HTTP request body for POST /compliance/documents.
type FileDocumentRequest struct {
	Category  string     `json:"category"`
	Name      string     `json:"name"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Validate validates the request body.
func (r *FileDocumentRequest) Validate() error {
	if r == nil {
		return derrors.New(derrors.CodeBadRequest, "request body is required")
	}
	r.Category = strings.TrimSpace(r.Category)
	if r.Category == "" {
		return derrors.New(derrors.CodeValidation, "category is required")
	}
	r.Name = strings.TrimSpace(r.Name)
	return nil
}

// ToDocument builds the domain document.
func (r *FileDocumentRequest) ToDocument() compliance.Document {
	return compliance.Document{
		Category:  compliance.DocumentCategory(r.Category),
		Name:      r.Name,
		ExpiresAt: r.ExpiresAt,
	}
}
