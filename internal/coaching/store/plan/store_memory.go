package plan

import (
	"context"
	"sync"

	"convoy/internal/coaching"
	"convoy/pkg/domain"
	"convoy/pkg/platform/sentinel"
)

type key struct {
	org  domain.OrgID
	plan domain.PlanID
}

// InMemoryStore keeps coaching plans keyed by organization and plan id.
// Used in unit tests and when no Postgres URL is configured.
type InMemoryStore struct {
	mu    sync.RWMutex
	plans map[key]*coaching.CoachingPlan
	order []key
}

func NewMemory() *InMemoryStore {
	return &InMemoryStore{plans: make(map[key]*coaching.CoachingPlan)}
}

// clone deep-copies a plan so callers never share check-in or audit slices
// with the store.
func clone(p *coaching.CoachingPlan) *coaching.CoachingPlan {
	cp := *p
	cp.CheckIns = make([]coaching.CheckIn, len(p.CheckIns))
	copy(cp.CheckIns, p.CheckIns)
	for i := range cp.CheckIns {
		cp.CheckIns[i].Audit = append([]coaching.AuditEntry(nil), cp.CheckIns[i].Audit...)
	}
	return &cp
}

func (s *InMemoryStore) Create(_ context.Context, p *coaching.CoachingPlan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{org: p.OrgID, plan: p.ID}
	if _, exists := s.plans[k]; exists {
		return sentinel.ErrConflict
	}
	s.plans[k] = clone(p)
	s.order = append(s.order, k)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, orgID domain.OrgID, planID domain.PlanID) (*coaching.CoachingPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.plans[key{org: orgID, plan: planID}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(p), nil
}

// ListByDriver returns the driver's plans in creation order.
func (s *InMemoryStore) ListByDriver(_ context.Context, orgID domain.OrgID, driverID domain.DriverID) ([]*coaching.CoachingPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*coaching.CoachingPlan
	for _, k := range s.order {
		if k.org != orgID {
			continue
		}
		if p := s.plans[k]; p.DriverID == driverID {
			out = append(out, clone(p))
		}
	}
	return out, nil
}

// Update replaces the stored plan wholesale.
func (s *InMemoryStore) Update(_ context.Context, p *coaching.CoachingPlan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{org: p.OrgID, plan: p.ID}
	if _, ok := s.plans[k]; !ok {
		return sentinel.ErrNotFound
	}
	s.plans[k] = clone(p)
	return nil
}

// ActiveDriverIDs returns the distinct drivers with at least one active
// plan, in plan creation order.
func (s *InMemoryStore) ActiveDriverIDs(_ context.Context, orgID domain.OrgID) ([]domain.DriverID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[domain.DriverID]bool)
	var out []domain.DriverID
	for _, k := range s.order {
		if k.org != orgID {
			continue
		}
		p := s.plans[k]
		if p.Status != coaching.PlanActive || seen[p.DriverID] {
			continue
		}
		seen[p.DriverID] = true
		out = append(out, p.DriverID)
	}
	return out, nil
}
