package inspection

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"convoy/internal/compliance"
	"convoy/pkg/domain"
	"convoy/pkg/platform/sentinel"
)

type key struct {
	org        domain.OrgID
	inspection uuid.UUID
}

// InMemoryStore keeps inspections keyed by organization and inspection id.
type InMemoryStore struct {
	mu          sync.RWMutex
	inspections map[key]*compliance.Inspection
	order       []key
}

func NewMemory() *InMemoryStore {
	return &InMemoryStore{inspections: make(map[key]*compliance.Inspection)}
}

func (s *InMemoryStore) Create(_ context.Context, i *compliance.Inspection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{org: i.OrgID, inspection: i.ID}
	if _, exists := s.inspections[k]; exists {
		return sentinel.ErrConflict
	}
	cp := *i
	s.inspections[k] = &cp
	s.order = append(s.order, k)
	return nil
}

// ListByOrg returns inspections in creation order.
func (s *InMemoryStore) ListByOrg(_ context.Context, orgID domain.OrgID) ([]*compliance.Inspection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*compliance.Inspection
	for _, k := range s.order {
		if k.org == orgID {
			cp := *s.inspections[k]
			out = append(out, &cp)
		}
	}
	return out, nil
}

// UpdateRemediation moves an inspection's remediation to a new status.
func (s *InMemoryStore) UpdateRemediation(_ context.Context, orgID domain.OrgID, inspectionID uuid.UUID, status compliance.RemediationStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.inspections[key{org: orgID, inspection: inspectionID}]
	if !ok {
		return sentinel.ErrNotFound
	}
	i.RemediationStatus = status
	return nil
}
