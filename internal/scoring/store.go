package scoring

import (
	"context"
	"time"

	fleetmodels "convoy/internal/fleet/models"
	"convoy/pkg/domain"
)

// Store interfaces consumed by the scoring service. Swap with concrete
// storage without touching the service.

// EventStore is the append-only risk event log.
type EventStore interface {
	Append(ctx context.Context, e RiskEvent) error
	ListByDriverSince(ctx context.Context, orgID domain.OrgID, driverID domain.DriverID, since time.Time) ([]RiskEvent, error)
	ListByOrgSince(ctx context.Context, orgID domain.OrgID, since time.Time) ([]RiskEvent, error)
}

// SnapshotStore is the append-only score history. AppendAndProject must
// atomically persist the snapshot and update the driver's current-score
// projection; partial success is not allowed.
type SnapshotStore interface {
	AppendAndProject(ctx context.Context, snap RiskScoreSnapshot) error
	Latest(ctx context.Context, orgID domain.OrgID, driverID domain.DriverID) (*RiskScoreSnapshot, error)
	History(ctx context.Context, orgID domain.OrgID, driverID domain.DriverID) ([]ScorePoint, error)
}

// DriverStore is the narrow read surface the scoring service needs.
type DriverStore interface {
	FindByID(ctx context.Context, orgID domain.OrgID, driverID domain.DriverID) (*fleetmodels.Driver, error)
}
