// Package kv defines the durable local key-value interface used for
// client-side persisted state (the favorites set). The bolt subpackage is
// the durable implementation; Memory backs tests.
package kv

import "sync"

// Store is a flat string key-value store. Get reports presence via the
// second return so an empty stored value is distinguishable from absence.
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// Memory is an in-process Store for tests.
type Memory struct {
	mu   sync.Mutex
	data map[string]string
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

// Get implements Store.
func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

// Set implements Store.
func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}
