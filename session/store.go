// Package session persists per-user survey progress in an external store.
// The engine never caches sessions in process; every update performs a fresh
// read so multiple bot instances can share one store.
package session

import (
	"context"
	"errors"
	"time"
)

// Session is the per-user survey progress record.
type Session struct {
	UserID    int64     `db:"user_id"`
	Step      int       `db:"step"`
	Answers   []string  `json:"answers"`
	UpdatedAt time.Time `db:"updated_at"`
}

var (
	// ErrNotFound indicates the user has no active session (or it expired).
	ErrNotFound = errors.New("session: not found")
	// ErrCorrupted indicates the stored record does not decode into a
	// session shape. Callers should delete it and ask the user to restart.
	ErrCorrupted = errors.New("session: corrupted record")
	// ErrUnavailable indicates the store cannot be reached right now.
	ErrUnavailable = errors.New("session: store unavailable")
)

// Store is the get/set/delete contract the survey engine depends on.
// Delete is idempotent: removing an absent session is not an error.
type Store interface {
	Get(ctx context.Context, userID int64) (*Session, error)
	Set(ctx context.Context, userID int64, s *Session, ttl time.Duration) error
	Delete(ctx context.Context, userID int64) error
}
