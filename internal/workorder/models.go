package workorder

import (
	"time"

	"convoy/pkg/domain"
	derrors "convoy/pkg/domain-errors"
)

// Priority orders work orders for maintenance planning. Separate from the
// risk bands; this is about equipment urgency.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority constructs a Priority from external input.
func ParsePriority(s string) (Priority, error) {
	p := Priority(s)
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p, nil
	}
	return "", derrors.Newf(derrors.CodeValidation, "unknown priority %q", s)
}

// LineItemType classifies a cost line for roll-up purposes.
type LineItemType string

const (
	LineItemPart  LineItemType = "part"
	LineItemLabor LineItemType = "labor"
	LineItemOther LineItemType = "other"
)

// LineItem is one cost line on a work order. UnitCostCents avoids floating
// point money.
type LineItem struct {
	Type          LineItemType `json:"type"`
	Description   string       `json:"description,omitempty"`
	Quantity      int          `json:"quantity"`
	UnitCostCents int64        `json:"unit_cost_cents"`
}

// Validate enforces line item preconditions.
func (li *LineItem) Validate() error {
	switch li.Type {
	case LineItemPart, LineItemLabor, LineItemOther:
	default:
		return derrors.Newf(derrors.CodeValidation, "unknown line item type %q", li.Type)
	}
	if li.Quantity <= 0 {
		return derrors.New(derrors.CodeValidation, "line item quantity must be positive")
	}
	if li.UnitCostCents < 0 {
		return derrors.New(derrors.CodeValidation, "line item unit cost cannot be negative")
	}
	return nil
}

// Total returns the line's extended cost.
func (li *LineItem) Total() int64 {
	return int64(li.Quantity) * li.UnitCostCents
}

// WorkOrder tracks one unit of maintenance work through a guarded
// lifecycle. Cost roll-ups are derived from the line items and recomputed
// on every line item mutation, never set directly.
type WorkOrder struct {
	ID       domain.WorkOrderID `json:"id"`
	OrgID    domain.OrgID       `json:"org_id"`
	DriverID domain.DriverID    `json:"driver_id,omitzero"`

	Equipment string   `json:"equipment"`
	Summary   string   `json:"summary,omitempty"`
	Status    Status   `json:"status"`
	Priority  Priority `json:"priority"`

	Approver string     `json:"approver,omitempty"`
	Assignee string     `json:"assignee,omitempty"`
	DueDate  *time.Time `json:"due_date,omitempty"`

	LineItems []LineItem `json:"line_items"`

	PartsCostCents int64 `json:"parts_cost_cents"`
	LaborCostCents int64 `json:"labor_cost_cents"`
	TotalCostCents int64 `json:"total_cost_cents"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate enforces creation preconditions.
func (w *WorkOrder) Validate() error {
	if w.OrgID.IsNil() {
		return derrors.New(derrors.CodeValidation, "organization id is required")
	}
	if w.Equipment == "" {
		return derrors.New(derrors.CodeValidation, "equipment is required")
	}
	if _, err := ParsePriority(string(w.Priority)); err != nil {
		return err
	}
	for i := range w.LineItems {
		if err := w.LineItems[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// RecomputeCosts rebuilds the cost roll-ups from the line items.
func (w *WorkOrder) RecomputeCosts() {
	var parts, labor, total int64
	for i := range w.LineItems {
		line := w.LineItems[i].Total()
		total += line
		switch w.LineItems[i].Type {
		case LineItemPart:
			parts += line
		case LineItemLabor:
			labor += line
		}
	}
	w.PartsCostCents = parts
	w.LaborCostCents = labor
	w.TotalCostCents = total
}
