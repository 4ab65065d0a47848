// Package memory implements repository.KeyValueStore on a map. It backs the
// tests and STORAGE=memory, where nothing needs to survive a restart.
package memory

import (
	"context"
	"sync"

	"github.com/sakif/family-meal-planner/internal/repository"
)

var _ repository.KeyValueStore = (*Store)(nil)

// Store is a KeyValueStore held in memory and safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	values map[string]string
}

// New creates an empty Store.
func New() *Store {
	return &Store{values: make(map[string]string)}
}

func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *Store) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

// Keys returns the stored keys in no particular order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	return keys
}
