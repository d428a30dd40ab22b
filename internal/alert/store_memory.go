package alert

import (
	"context"
	"slices"
	"sync"
)

// InMemoryStore keeps alerts in process memory.
type InMemoryStore struct {
	mu     sync.Mutex
	alerts map[string][]Alert
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{alerts: make(map[string][]Alert)}
}

func (s *InMemoryStore) Append(_ context.Context, sessionID string, a Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts[sessionID] = append(s.alerts[sessionID], a)
	return nil
}

func (s *InMemoryStore) List(_ context.Context, sessionID string) ([]Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.alerts[sessionID]), nil
}

func (s *InMemoryStore) Update(_ context.Context, sessionID string, fn func([]Alert) []Alert) ([]Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := fn(slices.Clone(s.alerts[sessionID]))
	if len(next) == 0 {
		delete(s.alerts, sessionID)
		return nil, nil
	}
	s.alerts[sessionID] = next
	return slices.Clone(next), nil
}

func (s *InMemoryStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.alerts, sessionID)
	return nil
}
