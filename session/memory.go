package session

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	sess      Session
	expiresAt time.Time
}

// MemoryStore is an in-process Store for tests and local development.
// It mirrors the Postgres semantics: expiry checked on read, idempotent delete.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[int64]memoryEntry
	now     func() time.Time
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[int64]memoryEntry),
		now:     time.Now,
	}
}

// Get returns a copy of the stored session or ErrNotFound.
func (m *MemoryStore) Get(_ context.Context, userID int64) (*Session, error) {
	m.mu.RLock()
	entry, ok := m.entries[userID]
	m.mu.RUnlock()
	if !ok || m.now().After(entry.expiresAt) {
		return nil, ErrNotFound
	}

	out := entry.sess
	out.Answers = append([]string(nil), entry.sess.Answers...)
	return &out, nil
}

// Set stores a copy of the session with the given TTL.
func (m *MemoryStore) Set(_ context.Context, userID int64, sess *Session, ttl time.Duration) error {
	if sess == nil {
		return ErrCorrupted
	}
	stored := *sess
	stored.UserID = userID
	stored.Answers = append([]string(nil), sess.Answers...)
	stored.UpdatedAt = m.now()

	m.mu.Lock()
	m.entries[userID] = memoryEntry{sess: stored, expiresAt: m.now().Add(ttl)}
	m.mu.Unlock()
	return nil
}

// Delete removes the session if present.
func (m *MemoryStore) Delete(_ context.Context, userID int64) error {
	m.mu.Lock()
	delete(m.entries, userID)
	m.mu.Unlock()
	return nil
}

// SetClock overrides the time source for expiry tests.
func (m *MemoryStore) SetClock(now func() time.Time) {
	m.mu.Lock()
	m.now = now
	m.mu.Unlock()
}
