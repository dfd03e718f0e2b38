package snapshot

import (
	"context"
	"sync"
	"time"

	"convoy/internal/scoring"
	"convoy/pkg/domain"
	"convoy/pkg/platform/sentinel"
)

// DriverProjector updates the driver's current-score projection. Satisfied
// by the fleet driver stores.
type DriverProjector interface {
	UpdateRiskScore(ctx context.Context, orgID domain.OrgID, driverID domain.DriverID, score int, now time.Time) error
}

// InMemoryStore keeps score snapshots per organization, and projects the
// latest composite onto the driver record under the same lock so readers
// never observe a snapshot without the projection.
type InMemoryStore struct {
	mu        sync.RWMutex
	snapshots map[domain.OrgID][]scoring.RiskScoreSnapshot
	projector DriverProjector
}

func NewMemory(projector DriverProjector) *InMemoryStore {
	return &InMemoryStore{
		snapshots: make(map[domain.OrgID][]scoring.RiskScoreSnapshot),
		projector: projector,
	}
}

// AppendAndProject appends the snapshot and updates the driver's current
// score. Both writes happen or neither does.
func (s *InMemoryStore) AppendAndProject(ctx context.Context, snap scoring.RiskScoreSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.projector != nil {
		if err := s.projector.UpdateRiskScore(ctx, snap.OrgID, snap.DriverID, snap.Composite, snap.AsOf); err != nil {
			return err
		}
	}
	s.snapshots[snap.OrgID] = append(s.snapshots[snap.OrgID], snap)
	return nil
}

// Latest returns the most recent snapshot for a driver.
func (s *InMemoryStore) Latest(_ context.Context, orgID domain.OrgID, driverID domain.DriverID) (*scoring.RiskScoreSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snaps := s.snapshots[orgID]
	for i := len(snaps) - 1; i >= 0; i-- {
		if snaps[i].DriverID == driverID {
			cp := snaps[i]
			return &cp, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

// History returns a driver's score points in chronological order.
func (s *InMemoryStore) History(_ context.Context, orgID domain.OrgID, driverID domain.DriverID) ([]scoring.ScorePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []scoring.ScorePoint
	for _, snap := range s.snapshots[orgID] {
		if snap.DriverID == driverID {
			out = append(out, scoring.ScorePoint{Score: snap.Composite, AsOf: snap.AsOf})
		}
	}
	return out, nil
}
