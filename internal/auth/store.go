package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrSessionNotFound indicates the session id has no live server-side
// record.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore is the server-side session port, keyed by the opaque id
// delivered to clients in a cookie. Implementations must be safe for
// concurrent use.
type SessionStore interface {
	// NewSession mints an empty unauthenticated session with a fresh
	// opaque id and registers it.
	NewSession(ctx context.Context) (*Session, error)
	Get(ctx context.Context, id string) (*Session, error)
	Put(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

// MemorySessionStore keeps sessions in process memory. Sessions do not
// survive a restart; a multi-instance deployment needs a shared backend
// behind the same interface.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
}

// NewMemorySessionStore creates an in-memory session store with the given
// session lifetime.
func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
	}
}

// NewSession creates an empty unauthenticated session with a fresh
// opaque id and registers it in the store.
func (m *MemorySessionStore) NewSession(ctx context.Context) (*Session, error) {
	s := &Session{
		ID:        uuid.NewString(),
		ExpiresAt: time.Now().Add(m.ttl),
	}
	if err := m.Put(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Get returns the session for id. Expired sessions are dropped and
// reported as not found.
func (m *MemorySessionStore) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrSessionNotFound
	}
	if time.Now().After(s.ExpiresAt) {
		_ = m.Delete(ctx, id)
		return nil, ErrSessionNotFound
	}

	// Hand out a copy so callers mutate freely and persist via Put.
	clone := *s
	return &clone, nil
}

// Put stores or replaces the session record.
func (m *MemorySessionStore) Put(_ context.Context, s *Session) error {
	if s.ExpiresAt.IsZero() {
		s.ExpiresAt = time.Now().Add(m.ttl)
	}
	clone := *s
	m.mu.Lock()
	m.sessions[s.ID] = &clone
	m.mu.Unlock()
	return nil
}

// Delete removes the session record. Deleting an unknown id is a no-op.
func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return nil
}
