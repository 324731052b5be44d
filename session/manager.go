package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Manager loads, updates and saves sessions. Updates to the same session are serialised so
// that each session behaves as if it were single threaded.
type Manager struct {
	store  Store
	ttl    time.Duration
	mu     sync.Mutex
	locks  map[string]*sessionLock
	pruned time.Time
	now    func() time.Time
}

// sessionLock serialises updates to one session. Locks unused for longer than the session
// TTL belong to expired sessions and are discarded.
type sessionLock struct {
	sync.Mutex
	used time.Time
}

func NewManager(store Store, ttl time.Duration) *Manager {
	return &Manager{
		store: store,
		ttl:   ttl,
		locks: map[string]*sessionLock{},
		now:   time.Now,
	}
}

// Create saves and returns a new empty session.
func (m *Manager) Create(ctx context.Context) (*Session, error) {
	s := New()
	if err := m.save(ctx, s); err != nil {
		return nil, err
	}

	return s, nil
}

// Get returns a copy of a session. Changes to the copy are not saved.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, ErrNotFound
	}

	return m.load(ctx, id)
}

// Update loads a session, applies fn and saves the result unless fn returns an error. The
// session is created if it does not exist or can no longer be decoded.
func (m *Manager) Update(ctx context.Context, id string, fn func(*Session) error) (*Session, error) {
	if id == "" {
		return nil, ErrNotFound
	}

	lock := m.lock(id)
	lock.Lock()
	defer lock.Unlock()

	s, err := m.load(ctx, id)
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalid) {
		s = New()
		s.ID = id
	} else if err != nil {
		return nil, err
	}

	if err := fn(s); err != nil {
		return s, err
	}

	if err := m.save(ctx, s); err != nil {
		return nil, err
	}

	return s, nil
}

func (m *Manager) Delete(ctx context.Context, id string) error {
	lock := m.lock(id)
	lock.Lock()
	defer lock.Unlock()

	m.mu.Lock()
	delete(m.locks, id)
	m.mu.Unlock()

	return m.store.Delete(ctx, id)
}

func (m *Manager) Close() {
	m.store.Close()
}

func (m *Manager) lock(id string) *sessionLock {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if now.Sub(m.pruned) > m.ttl {
		m.prune(now)
	}

	l, ok := m.locks[id]
	if !ok {
		l = &sessionLock{}
		m.locks[id] = l
	}

	l.used = now

	return l
}

// prune discards the locks of sessions that have not been updated within the TTL. A lock
// that is currently held is kept.
func (m *Manager) prune(now time.Time) {
	for id, l := range m.locks {
		if now.Sub(l.used) > m.ttl && l.TryLock() {
			delete(m.locks, id)
			l.Unlock()
		}
	}

	m.pruned = now
}

func (m *Manager) load(ctx context.Context, id string) (*Session, error) {
	b, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s := Session{}
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("%w %v (%v)", ErrInvalid, id, err)
	}

	if s.Checked == nil || s.Checked.Len() != s.Snapshot.Len() {
		return nil, fmt.Errorf("%w %v (row state does not match snapshot)", ErrInvalid, id)
	}

	return &s, nil
}

func (m *Manager) save(ctx context.Context, s *Session) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}

	return m.store.Put(ctx, s.ID, b, m.ttl)
}
