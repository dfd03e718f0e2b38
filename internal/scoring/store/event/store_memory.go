package event

import (
	"context"
	"sync"
	"time"

	"convoy/internal/scoring"
	"convoy/pkg/domain"
)

// InMemoryStore keeps risk events per organization in append order.
type InMemoryStore struct {
	mu     sync.RWMutex
	events map[domain.OrgID][]scoring.RiskEvent
}

func NewMemory() *InMemoryStore {
	return &InMemoryStore{events: make(map[domain.OrgID][]scoring.RiskEvent)}
}

func (s *InMemoryStore) Append(_ context.Context, e scoring.RiskEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[e.OrgID] = append(s.events[e.OrgID], e)
	return nil
}

// ListByDriverSince returns a driver's events occurring at or after the
// cutoff, in append order.
func (s *InMemoryStore) ListByDriverSince(_ context.Context, orgID domain.OrgID, driverID domain.DriverID, since time.Time) ([]scoring.RiskEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []scoring.RiskEvent
	for _, e := range s.events[orgID] {
		if e.DriverID == driverID && !e.OccurredAt.Before(since) {
			out = append(out, e)
		}
	}
	return out, nil
}

// ListByOrgSince returns all events for the organization at or after the
// cutoff, in append order.
func (s *InMemoryStore) ListByOrgSince(_ context.Context, orgID domain.OrgID, since time.Time) ([]scoring.RiskEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []scoring.RiskEvent
	for _, e := range s.events[orgID] {
		if !e.OccurredAt.Before(since) {
			out = append(out, e)
		}
	}
	return out, nil
}
