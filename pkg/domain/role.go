package domain

import derrors "convoy/pkg/domain-errors"

// Role identifies the actor's permission level within an organization.
// Invariant: the value must be one of the supported roles.
//
// Usage: construct via ParseRole at trust boundaries to enforce the
// allowlist; direct casting bypasses validation.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleViewer  Role = "viewer"
)

// validRoles is the single source of truth for valid roles.
var validRoles = map[Role]bool{
	RoleAdmin:   true,
	RoleManager: true,
	RoleViewer:  true,
}

// ParseRole constructs a Role from external input.
//
// Errors: returns CodeInvalidInput when the value is empty or unsupported.
func ParseRole(s string) (Role, error) {
	if s == "" {
		return "", derrors.New(derrors.CodeInvalidInput, "role cannot be empty")
	}
	r := Role(s)
	if !r.IsValid() {
		return "", derrors.New(derrors.CodeInvalidInput, "invalid role")
	}
	return r, nil
}

// IsValid checks if the role is one of the supported enum values.
func (r Role) IsValid() bool {
	return validRoles[r]
}

// CanApprove reports whether the role may move a work order into Approved.
// Viewers can never approve, regardless of the transition table.
func (r Role) CanApprove() bool {
	return r == RoleAdmin || r == RoleManager
}

// CanManagePlans reports whether the role may create or terminate coaching
// plans and apply check-in transitions.
func (r Role) CanManagePlans() bool {
	return r == RoleAdmin || r == RoleManager
}

func (r Role) String() string {
	return string(r)
}
