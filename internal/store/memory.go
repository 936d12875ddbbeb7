package store

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// memoryStore is an in-process KeyValueStore used by tests and by
// deployments that do not need durability across restarts.
type memoryStore struct {
	mu    sync.RWMutex
	items map[string][]byte
}

// NewMemoryStore returns an empty in-memory KeyValueStore.
func NewMemoryStore() KeyValueStore {
	return &memoryStore{items: make(map[string][]byte)}
}

func (s *memoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.items[key]
	if !ok {
		return nil, fmt.Errorf("get %s: %w", key, ErrKeyNotFound)
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (s *memoryStore) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	s.items[key] = stored
	return nil
}

func (s *memoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items, key)
	return nil
}

func (s *memoryStore) List(_ context.Context, prefix string) (map[string][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]byte)
	for key, value := range s.items {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		copied := make([]byte, len(value))
		copy(copied, value)
		out[key] = copied
	}
	return out, nil
}

func (s *memoryStore) Close() error {
	return nil
}
