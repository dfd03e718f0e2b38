package handler

import (
	"strings"
	"time"

	"convoy/internal/workorder"
	"convoy/pkg/domain"
	derrors "convoy/pkg/domain-errors"
)

// LineItemPayload is one cost line in a work order request body.
type LineItemPayload struct {
	Type          string `json:"type"`
	Description   string `json:"description,omitempty"`
	Quantity      int    `json:"quantity"`
	UnitCostCents int64  `json:"unit_cost_cents"`
}

func (p LineItemPayload) toDomain() workorder.LineItem {
	return workorder.LineItem{
		Type:          workorder.LineItemType(p.Type),
		Description:   p.Description,
		Quantity:      p.Quantity,
		UnitCostCents: p.UnitCostCents,
	}
}

// CreateRequest is the HTTP request body for POST /work-orders.
type CreateRequest struct {
	DriverID  string            `json:"driver_id,omitempty"`
	Equipment string            `json:"equipment"`
	Summary   string            `json:"summary,omitempty"`
	Priority  string            `json:"priority"`
	Assignee  string            `json:"assignee,omitempty"`
	DueDate   *time.Time        `json:"due_date,omitempty"`
	LineItems []LineItemPayload `json:"line_items,omitempty"`

	parsedDriverID domain.DriverID
	parsedPriority workorder.Priority
}

// Validate validates and parses the request body.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *CreateRequest) Validate() error {
	if r == nil {
		return derrors.New(derrors.CodeBadRequest, "request body is required")
	}

	r.Equipment = strings.TrimSpace(r.Equipment)
	if r.Equipment == "" {
		return derrors.New(derrors.CodeValidation, "equipment is required")
	}

	priority, err := workorder.ParsePriority(strings.TrimSpace(r.Priority))
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

	if len(r.LineItems) > 100 {
		return derrors.New(derrors.CodeValidation, "at most 100 line items per work order")
	}
	return nil
}

// ToWorkOrder builds the domain work order.
func (r *CreateRequest) ToWorkOrder() workorder.WorkOrder {
	items := make([]workorder.LineItem, 0, len(r.LineItems))
	for _, li := range r.LineItems {
		items = append(items, li.toDomain())
	}
	return workorder.WorkOrder{
		DriverID:  r.parsedDriverID,
		Equipment: r.Equipment,
		Summary:   r.Summary,
		Priority:  r.parsedPriority,
		Assignee:  r.Assignee,
		DueDate:   r.DueDate,
		LineItems: items,
	}
}

// TransitionRequest is the HTTP request body for POST /work-orders/{workOrderID}/transition.
type TransitionRequest struct {
	Status string `json:"status"`

	parsedStatus workorder.Status
}

// Validate validates and parses the request body.
func (r *TransitionRequest) Validate() error {
	if r == nil {
		return derrors.New(derrors.CodeBadRequest, "request body is required")
	}
	status, err := workorder.ParseStatus(strings.TrimSpace(r.Status))
	if err != nil {
		return err
	}
	r.parsedStatus = status
	return nil
}

// ParsedStatus returns the validated target status.
func (r *TransitionRequest) ParsedStatus() workorder.Status {
	return r.parsedStatus
}

// LineItemsRequest is the HTTP request body for PUT /work-orders/{workOrderID}/line-items.
type LineItemsRequest struct {
	LineItems []LineItemPayload `json:"line_items"`
}

// Validate validates the request body.
func (r *LineItemsRequest) Validate() error {
	if r == nil {
		return derrors.New(derrors.CodeBadRequest, "request body is required")
	}
	if len(r.LineItems) > 100 {
		return derrors.New(derrors.CodeValidation, "at most 100 line items per work order")
	}
	return nil
}

// ToLineItems builds the domain line item list.
func (r *LineItemsRequest) ToLineItems() []workorder.LineItem {
	items := make([]workorder.LineItem, 0, len(r.LineItems))
	for _, li := range r.LineItems {
		items = append(items, li.toDomain())
	}
	return items
}
