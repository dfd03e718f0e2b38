package driver

import (
	"context"
	"sync"
	"time"

	"convoy/internal/fleet/models"
	"convoy/pkg/domain"
	"convoy/pkg/platform/sentinel"
)

type key struct {
	org    domain.OrgID
	driver domain.DriverID
}

// InMemoryStore keeps drivers keyed by organization and driver id. Used in
// unit tests and when no Postgres URL is configured.
type InMemoryStore struct {
	mu      sync.RWMutex
	drivers map[key]*models.Driver
	order   []key
}

func NewMemory() *InMemoryStore {
	return &InMemoryStore{drivers: make(map[key]*models.Driver)}
}

func (s *InMemoryStore) Create(_ context.Context, d *models.Driver) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{org: d.OrgID, driver: d.ID}
	if _, exists := s.drivers[k]; exists {
		return sentinel.ErrConflict
	}
	cp := *d
	s.drivers[k] = &cp
	s.order = append(s.order, k)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, orgID domain.OrgID, driverID domain.DriverID) (*models.Driver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.drivers[key{org: orgID, driver: driverID}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

// ListByOrg returns drivers in insertion order. Ordering matters to callers
// that rely on stable sorting downstream.
func (s *InMemoryStore) ListByOrg(_ context.Context, orgID domain.OrgID) ([]*models.Driver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Driver
	for _, k := range s.order {
		if k.org != orgID {
			continue
		}
		cp := *s.drivers[k]
		out = append(out, &cp)
	}
	return out, nil
}

// UpdateRiskScore sets the current-score projection for a driver.
func (s *InMemoryStore) UpdateRiskScore(_ context.Context, orgID domain.OrgID, driverID domain.DriverID, score int, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.drivers[key{org: orgID, driver: driverID}]
	if !ok {
		return sentinel.ErrNotFound
	}
	d.RiskScore = score
	d.UpdatedAt = now
	return nil
}

// UpdateCredentials sets the credential expiry dates for a driver.
func (s *InMemoryStore) UpdateCredentials(_ context.Context, orgID domain.OrgID, driverID domain.DriverID, license, medical *time.Time, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.drivers[key{org: orgID, driver: driverID}]
	if !ok {
		return sentinel.ErrNotFound
	}
	d.LicenseExpiry = license
	d.MedicalCardExpiry = medical
	d.UpdatedAt = now
	return nil
}
