package models

import (
	"time"

	"convoy/pkg/domain"
	derrors "convoy/pkg/domain-errors"
)

// Driver is the per-organization driver record.
//
// Invariants:
//   - Belongs to exactly one organization; every read/write is org-scoped
//   - RiskScore is a projection of the latest RiskScoreSnapshot, in [0,100];
//     it is updated only by the scoring engine, last-write-wins
//   - Drivers are never deleted by this core
type Driver struct {
	ID    domain.DriverID `json:"id"`
	OrgID domain.OrgID    `json:"org_id"`
	Name  string          `json:"name"`

	// RiskScore is the current composite risk projection.
	RiskScore int `json:"risk_score"`

	// Credential expirations. Nil means no date on file, which the
	// compliance module reports as a gap.
	LicenseExpiry     *time.Time `json:"license_expiry,omitempty"`
	MedicalCardExpiry *time.Time `json:"medical_card_expiry,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewDriver validates and constructs a driver record.
func NewDriver(id domain.DriverID, orgID domain.OrgID, name string, now time.Time) (*Driver, error) {
	if orgID.IsNil() {
		return nil, derrors.New(derrors.CodeValidation, "organization id is required")
	}
	if id.IsNil() {
		return nil, derrors.New(derrors.CodeValidation, "driver id is required")
	}
	if name == "" {
		return nil, derrors.New(derrors.CodeValidation, "driver name is required")
	}
	return &Driver{
		ID:        id,
		OrgID:     orgID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
