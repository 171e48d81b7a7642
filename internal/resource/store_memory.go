package resource

import (
	"context"
	"sync"

	"aegis/pkg/platform/sentinel"
)

// MemoryStore is an in-memory resource store for development and tests.
type MemoryStore struct {
	mu   sync.RWMutex
	byID map[string]Resource
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]Resource)}
}

func (s *MemoryStore) FindByID(_ context.Context, id string) (Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	resource, ok := s.byID[id]
	if !ok {
		return Resource{}, sentinel.ErrNotFound
	}
	return resource, nil
}

func (s *MemoryStore) Save(_ context.Context, resource Resource) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[resource.ID] = resource
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}
