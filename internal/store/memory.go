package store

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore keeps values in a map. Tests use it to assert how often the
// collection is written; it also backs ephemeral runs with no db path.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
	writes int
	failed bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) Get(ctx context.Context, keys ...string) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.failed {
		return nil, fmt.Errorf("storage failure injected")
	}
	out := make(map[string]string, len(keys))
	for _, key := range keys {
		if value, ok := m.values[key]; ok {
			out[key] = value
		}
	}
	return out, nil
}

func (m *MemoryStore) Set(ctx context.Context, values map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failed {
		return fmt.Errorf("storage failure injected")
	}
	for key, value := range values {
		m.values[key] = value
	}
	m.writes++
	return nil
}

func (m *MemoryStore) Remove(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failed {
		return fmt.Errorf("storage failure injected")
	}
	delete(m.values, key)
	return nil
}

// Writes reports how many Set calls succeeded.
func (m *MemoryStore) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}

// Fail toggles injected storage failures.
func (m *MemoryStore) Fail(on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failed = on
}
