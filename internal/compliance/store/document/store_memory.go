package document

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"convoy/internal/compliance"
	"convoy/pkg/domain"
	"convoy/pkg/platform/sentinel"
)

type key struct {
	org domain.OrgID
	doc uuid.UUID
}

// InMemoryStore keeps filed documents keyed by organization and document id.
type InMemoryStore struct {
	mu    sync.RWMutex
	docs  map[key]*compliance.Document
	order []key
}

func NewMemory() *InMemoryStore {
	return &InMemoryStore{docs: make(map[key]*compliance.Document)}
}

func (s *InMemoryStore) Create(_ context.Context, d *compliance.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{org: d.OrgID, doc: d.ID}
	if _, exists := s.docs[k]; exists {
		return sentinel.ErrConflict
	}
	cp := *d
	s.docs[k] = &cp
	s.order = append(s.order, k)
	return nil
}

// ListByOrg returns documents in filing order.
func (s *InMemoryStore) ListByOrg(_ context.Context, orgID domain.OrgID) ([]*compliance.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*compliance.Document
	for _, k := range s.order {
		if k.org == orgID {
			cp := *s.docs[k]
			out = append(out, &cp)
		}
	}
	return out, nil
}
