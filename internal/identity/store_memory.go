package identity

import (
	"context"
	"sync"

	"aegis/pkg/platform/sentinel"
)

// MemoryStore is an in-memory identity store for development and tests.
type MemoryStore struct {
	mu         sync.RWMutex
	byID       map[string]*User
	byUsername map[string]*User
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:       make(map[string]*User),
		byUsername: make(map[string]*User),
	}
}

// Seed inserts or replaces users. Intended for startup seeding and tests.
func (s *MemoryStore) Seed(users ...*User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range users {
		copied := *user
		s.byID[user.ID] = &copied
		s.byUsername[user.Username] = &copied
	}
}

func (s *MemoryStore) FindByID(_ context.Context, id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *MemoryStore) FindByUsername(_ context.Context, username string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.byUsername[username]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *user
	return &copied, nil
}
