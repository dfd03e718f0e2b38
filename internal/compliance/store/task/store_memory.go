package task

import (
	"context"
	"sync"

	"convoy/internal/compliance"
	"convoy/pkg/domain"
	"convoy/pkg/platform/sentinel"
)

type key struct {
	org  domain.OrgID
	task domain.TaskID
}

// InMemoryStore keeps compliance tasks keyed by organization and task id.
type InMemoryStore struct {
	mu    sync.RWMutex
	tasks map[key]*compliance.Task
	order []key
}

func NewMemory() *InMemoryStore {
	return &InMemoryStore{tasks: make(map[key]*compliance.Task)}
}

func (s *InMemoryStore) Create(_ context.Context, t *compliance.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{org: t.OrgID, task: t.ID}
	if _, exists := s.tasks[k]; exists {
		return sentinel.ErrConflict
	}
	cp := *t
	s.tasks[k] = &cp
	s.order = append(s.order, k)
	return nil
}

// ListByOrg returns tasks in creation order.
func (s *InMemoryStore) ListByOrg(_ context.Context, orgID domain.OrgID) ([]*compliance.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*compliance.Task
	for _, k := range s.order {
		if k.org == orgID {
			cp := *s.tasks[k]
			out = append(out, &cp)
		}
	}
	return out, nil
}

// UpdateStatus moves a task to a new status.
func (s *InMemoryStore) UpdateStatus(_ context.Context, orgID domain.OrgID, taskID domain.TaskID, status compliance.TaskStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[key{org: orgID, task: taskID}]
	if !ok {
		return sentinel.ErrNotFound
	}
	t.Status = status
	return nil
}
