package session

import (
	"context"
	"sync"
	"time"
)

// Store persists encoded sessions by ID. Entries expire after the TTL passed to Put.
type Store interface {
	Get(ctx context.Context, id string) ([]byte, error)
	Put(ctx context.Context, id string, v []byte, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
	Close()
}

type entry struct {
	value   []byte
	expires time.Time
}

// MemoryStore keeps sessions in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: map[string]entry{},
		now:     time.Now,
	}
}

func (m *MemoryStore) Get(ctx context.Context, id string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[id]
	if !ok {
		return nil, ErrNotFound
	}

	if !e.expires.IsZero() && m.now().After(e.expires) {
		delete(m.entries, id)
		return nil, ErrNotFound
	}

	return e.value, nil
}

func (m *MemoryStore) Put(ctx context.Context, id string, v []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := entry{
		value: v,
	}

	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}

	m.entries[id] = e

	// ... prune expired sessions
	for k, v := range m.entries {
		if !v.expires.IsZero() && m.now().After(v.expires) {
			delete(m.entries, k)
		}
	}

	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, id)

	return nil
}

func (m *MemoryStore) Close() {
}
