// Package memory is an in-process Store, used by tests and by the memory backend.
package memory

import (
	"context"
	"sync"
)

type Store struct {
	mu    sync.RWMutex
	store map[string]string
}

func New() *Store {
	return &Store{store: make(map[string]string)}
}

func (m *Store) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.store[key]

	return value, ok, nil
}

func (m *Store) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.store[key] = value

	return nil
}

func (m *Store) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.store, key)

	return nil
}

func (m *Store) Close() error {
	return nil
}

// Len reports how many keys are held.
func (m *Store) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.store)
}
