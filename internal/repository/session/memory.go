package session

import (
	"context"
	"sync"

	"storefront/internal/domain"
)

type memoryStore struct {
	mu     sync.RWMutex
	values map[string]map[string]string
}

// NewMemory returns a process-local Store. Values do not survive restarts.
func NewMemory() Store {
	return &memoryStore{values: make(map[string]map[string]string)}
}

func (s *memoryStore) Get(_ context.Context, sessionID, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[sessionID][key]
	if !ok {
		return "", domain.ErrNotFound
	}
	return v, nil
}

func (s *memoryStore) Set(_ context.Context, sessionID, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.values[sessionID] == nil {
		s.values[sessionID] = make(map[string]string)
	}
	s.values[sessionID][key] = value
	return nil
}

func (s *memoryStore) Delete(_ context.Context, sessionID, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values[sessionID], key)
	if len(s.values[sessionID]) == 0 {
		delete(s.values, sessionID)
	}
	return nil
}
