package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Get(ctx, 42)
	require.ErrorIs(t, err, ErrNotFound)

	sess := &Session{Step: 2, Answers: []string{"Alice", "kitchen"}}
	require.NoError(t, store.Set(ctx, 42, sess, time.Hour))

	got, err := store.Get(ctx, 42)
	require.NoError(t, err)
	require.Equal(t, 2, got.Step)
	require.Equal(t, []string{"Alice", "kitchen"}, got.Answers)

	// mutations of the returned copy must not leak back into the store
	got.Answers[0] = "Bob"
	again, err := store.Get(ctx, 42)
	require.NoError(t, err)
	require.Equal(t, "Alice", again.Answers[0])
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	current := base
	store.SetClock(func() time.Time { return current })

	require.NoError(t, store.Set(ctx, 7, &Session{Step: 0, Answers: []string{}}, time.Hour))

	current = base.Add(59 * time.Minute)
	_, err := store.Get(ctx, 7)
	require.NoError(t, err)

	current = base.Add(61 * time.Minute)
	_, err = store.Get(ctx, 7)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreDeleteIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Delete(ctx, 1))

	require.NoError(t, store.Set(ctx, 1, &Session{Step: 1, Answers: []string{"x"}}, time.Hour))
	require.NoError(t, store.Delete(ctx, 1))
	require.NoError(t, store.Delete(ctx, 1))

	_, err := store.Get(ctx, 1)
	require.ErrorIs(t, err, ErrNotFound)
}
