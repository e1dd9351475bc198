package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"log/slog"

	"renovabot/logger"
)

// PostgresStore keeps sessions in the survey_sessions table. Expiry is
// enforced on read via expires_at; stale rows are overwritten by the next
// upsert for the same user.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore wraps an already-connected pool.
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type sessionRow struct {
	UserID    int64     `db:"user_id"`
	Step      int       `db:"step"`
	Answers   []byte    `db:"answers"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Get returns the live session for a user, ErrNotFound when absent or
// expired, ErrCorrupted when the answers column does not decode.
func (s *PostgresStore) Get(ctx context.Context, userID int64) (*Session, error) {
	const q = `
		SELECT user_id, step, answers, updated_at
		FROM survey_sessions
		WHERE user_id = $1 AND expires_at > now()`

	var row sessionRow
	if err := s.db.GetContext(ctx, &row, q, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		logger.DB.Error("session get failed",
			slog.String("event", "session.get"),
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("%w: get: %v", ErrUnavailable, err)
	}

	var answers []string
	if err := json.Unmarshal(row.Answers, &answers); err != nil {
		return nil, fmt.Errorf("%w: answers column: %v", ErrCorrupted, err)
	}
	if row.Step < 0 || len(answers) > row.Step {
		return nil, fmt.Errorf("%w: step %d does not match %d answers", ErrCorrupted, row.Step, len(answers))
	}

	return &Session{
		UserID:    row.UserID,
		Step:      row.Step,
		Answers:   answers,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

// Set upserts the session with a fresh TTL window.
func (s *PostgresStore) Set(ctx context.Context, userID int64, sess *Session, ttl time.Duration) error {
	if sess == nil {
		return fmt.Errorf("session: nil session for user %d", userID)
	}
	answers, err := json.Marshal(sess.Answers)
	if err != nil {
		return fmt.Errorf("session: encode answers: %w", err)
	}

	const q = `
		INSERT INTO survey_sessions (user_id, step, answers, updated_at, expires_at)
		VALUES ($1, $2, $3, now(), now() + $4 * INTERVAL '1 second')
		ON CONFLICT (user_id) DO UPDATE SET
			step = EXCLUDED.step,
			answers = EXCLUDED.answers,
			updated_at = EXCLUDED.updated_at,
			expires_at = EXCLUDED.expires_at`

	if _, err := s.db.ExecContext(ctx, q, userID, sess.Step, answers, int64(ttl.Seconds())); err != nil {
		logger.DB.Error("session set failed",
			slog.String("event", "session.set"),
			slog.Int64("user_id", userID),
			slog.Int("step", sess.Step),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("%w: set: %v", ErrUnavailable, err)
	}
	return nil
}

// Delete removes the session. Deleting an absent row is fine.
func (s *PostgresStore) Delete(ctx context.Context, userID int64) error {
	const q = `DELETE FROM survey_sessions WHERE user_id = $1`
	if _, err := s.db.ExecContext(ctx, q, userID); err != nil {
		logger.DB.Error("session delete failed",
			slog.String("event", "session.delete"),
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("%w: delete: %v", ErrUnavailable, err)
	}
	return nil
}
