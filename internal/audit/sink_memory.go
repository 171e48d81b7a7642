package audit

import (
	"context"
	"sync"
)

// MemorySink collects events in memory so tests can swap sinks easily and
// assert on the recorded trail.
type MemorySink struct {
	mu     sync.RWMutex
	events []SecurityEvent
}

// NewMemorySink creates an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Write(_ context.Context, events []SecurityEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, events...)
	return nil
}

// Events returns a copy of everything written so far.
func (s *MemorySink) Events() []SecurityEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]SecurityEvent{}, s.events...)
}

// Clear discards all recorded events.
func (s *MemorySink) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}
