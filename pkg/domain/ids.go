// Package domain holds shared domain primitives: typed identifiers and
// enumerations used across feature modules. Typed IDs prevent cross-entity
// assignment at compile time; Parse functions enforce validity at trust
// boundaries.
package domain

import (
	"github.com/google/uuid"

	derrors "convoy/pkg/domain-errors"
)

// Typed identifiers for the core aggregates. Construct via the Parse
// functions at trust boundaries; direct casting bypasses validation.
type (
	OrgID       uuid.UUID
	DriverID    uuid.UUID
	EventID     uuid.UUID
	SnapshotID  uuid.UUID
	PlanID      uuid.UUID
	WorkOrderID uuid.UUID
	TaskID      uuid.UUID
)

func (id OrgID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id DriverID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id EventID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id SnapshotID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id PlanID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id WorkOrderID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id TaskID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }

func (id OrgID) String() string       { return uuid.UUID(id).String() }
func (id DriverID) String() string    { return uuid.UUID(id).String() }
func (id EventID) String() string     { return uuid.UUID(id).String() }
func (id SnapshotID) String() string  { return uuid.UUID(id).String() }
func (id PlanID) String() string      { return uuid.UUID(id).String() }
func (id WorkOrderID) String() string { return uuid.UUID(id).String() }
func (id TaskID) String() string      { return uuid.UUID(id).String() }

// MarshalText renders IDs as canonical UUID strings in JSON and text
// encodings.
func (id OrgID) MarshalText() ([]byte, error)       { return []byte(id.String()), nil }
func (id DriverID) MarshalText() ([]byte, error)    { return []byte(id.String()), nil }
func (id EventID) MarshalText() ([]byte, error)     { return []byte(id.String()), nil }
func (id SnapshotID) MarshalText() ([]byte, error)  { return []byte(id.String()), nil }
func (id PlanID) MarshalText() ([]byte, error)      { return []byte(id.String()), nil }
func (id WorkOrderID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id TaskID) MarshalText() ([]byte, error)      { return []byte(id.String()), nil }

func (id *OrgID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return err
	}
	*id = OrgID(u)
	return nil
}

func (id *DriverID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return err
	}
	*id = DriverID(u)
	return nil
}

func (id *EventID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return err
	}
	*id = EventID(u)
	return nil
}

func (id *SnapshotID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return err
	}
	*id = SnapshotID(u)
	return nil
}

func (id *PlanID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return err
	}
	*id = PlanID(u)
	return nil
}

func (id *WorkOrderID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return err
	}
	*id = WorkOrderID(u)
	return nil
}

func (id *TaskID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return err
	}
	*id = TaskID(u)
	return nil
}

// parseUUID enforces the shared invariant: IDs must be valid, non-empty,
// non-nil UUIDs.
func parseUUID(s, kind string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, derrors.Newf(derrors.CodeInvalidInput, "%s id cannot be empty", kind)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, derrors.Newf(derrors.CodeInvalidInput, "invalid %s id", kind)
	}
	if u == uuid.Nil {
		return uuid.Nil, derrors.Newf(derrors.CodeInvalidInput, "%s id cannot be nil", kind)
	}
	return u, nil
}

func ParseOrgID(s string) (OrgID, error) {
	u, err := parseUUID(s, "org")
	return OrgID(u), err
}

func ParseDriverID(s string) (DriverID, error) {
	u, err := parseUUID(s, "driver")
	return DriverID(u), err
}

func ParseEventID(s string) (EventID, error) {
	u, err := parseUUID(s, "event")
	return EventID(u), err
}

func ParsePlanID(s string) (PlanID, error) {
	u, err := parseUUID(s, "plan")
	return PlanID(u), err
}

func ParseWorkOrderID(s string) (WorkOrderID, error) {
	u, err := parseUUID(s, "work order")
	return WorkOrderID(u), err
}

func ParseTaskID(s string) (TaskID, error) {
	u, err := parseUUID(s, "task")
	return TaskID(u), err
}
