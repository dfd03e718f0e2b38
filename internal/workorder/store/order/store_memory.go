package order

import (
	"context"
	"sync"

	"convoy/internal/workorder"
	"convoy/pkg/domain"
	"convoy/pkg/platform/sentinel"
)

type key struct {
	org   domain.OrgID
	order domain.WorkOrderID
}

// InMemoryStore keeps work orders keyed by organization and order id. Used
// in unit tests and when no Postgres URL is configured.
type InMemoryStore struct {
	mu     sync.RWMutex
	orders map[key]*workorder.WorkOrder
	order  []key
}

func NewMemory() *InMemoryStore {
	return &InMemoryStore{orders: make(map[key]*workorder.WorkOrder)}
}

func clone(w *workorder.WorkOrder) *workorder.WorkOrder {
	cp := *w
	cp.LineItems = append([]workorder.LineItem(nil), w.LineItems...)
	return &cp
}

func (s *InMemoryStore) Create(_ context.Context, w *workorder.WorkOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{org: w.OrgID, order: w.ID}
	if _, exists := s.orders[k]; exists {
		return sentinel.ErrConflict
	}
	s.orders[k] = clone(w)
	s.order = append(s.order, k)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, orgID domain.OrgID, orderID domain.WorkOrderID) (*workorder.WorkOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.orders[key{org: orgID, order: orderID}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(w), nil
}

// ListByOrg returns work orders in creation order.
func (s *InMemoryStore) ListByOrg(_ context.Context, orgID domain.OrgID) ([]*workorder.WorkOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*workorder.WorkOrder
	for _, k := range s.order {
		if k.org == orgID {
			out = append(out, clone(s.orders[k]))
		}
	}
	return out, nil
}

// Update replaces the stored work order wholesale.
func (s *InMemoryStore) Update(_ context.Context, w *workorder.WorkOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{org: w.OrgID, order: w.ID}
	if _, ok := s.orders[k]; !ok {
		return sentinel.ErrNotFound
	}
	s.orders[k] = clone(w)
	return nil
}
