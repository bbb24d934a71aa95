package storage

import (
	"context"
	"fmt"
	"sync"
)

// MemoryBackend keeps artifacts in a map. It is used by tests and by the
// "memory" backend setting.
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[Key][]byte
}

// NewMemoryBackend creates an empty in-memory backend
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		data: make(map[Key][]byte),
	}
}

// Name identifies the backend.
func (m *MemoryBackend) Name() string { return "memory" }

// Read returns a copy of the stored artifact.
func (m *MemoryBackend) Read(ctx context.Context, key Key) ([]byte, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.data[key]
	if !ok {
		return nil, fmt.Errorf("read %s: %w", key, ErrNotFound)
	}
	return append([]byte(nil), data...), nil
}

// Write replaces the artifact.
func (m *MemoryBackend) Write(ctx context.Context, key Key, data []byte) error {
	if err := key.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = append([]byte(nil), data...)
	return nil
}

// Append extends the artifact.
func (m *MemoryBackend) Append(ctx context.Context, key Key, data []byte) error {
	if err := key.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = append(m.data[key], data...)
	return nil
}

// Keys lists the stored keys.
func (m *MemoryBackend) Keys() []Key {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]Key, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	return keys
}
