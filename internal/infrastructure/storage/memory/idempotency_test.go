package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockwise/internal/core/apperror"
)

func TestIdempotencyStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewIdempotencyStore(time.Hour)

	replay, err := s.AcquireKey(ctx, "k1", "POST /transfers", "h1")
	require.NoError(t, err)
	assert.Nil(t, replay)

	_, err = s.AcquireKey(ctx, "k1", "POST /transfers", "h1")
	assert.True(t, apperror.HasCode(err, apperror.CodeIdempotencyConflict))

	_, err = s.AcquireKey(ctx, "k1", "POST /transfers", "other")
	assert.True(t, apperror.HasCode(err, apperror.CodeIdempotencyMismatch))

	require.NoError(t, s.CompleteKey(ctx, "k1", 201, "application/json", map[string]string{"id": "x"}))

	replay, err = s.AcquireKey(ctx, "k1", "POST /transfers", "h1")
	require.NoError(t, err)
	require.NotNil(t, replay)
	assert.Equal(t, 201, replay.StatusCode)
	assert.JSONEq(t, `{"id":"x"}`, string(replay.Body))
}

func TestIdempotencyStore_StalePendingIsReclaimed(t *testing.T) {
	ctx := context.Background()
	s := NewIdempotencyStore(time.Hour)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	_, err := s.AcquireKey(ctx, "k", "op", "h")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	replay, err := s.AcquireKey(ctx, "k", "op", "h")
	require.NoError(t, err)
	assert.Nil(t, replay)
}

func TestIdempotencyStore_CleanupExpired(t *testing.T) {
	ctx := context.Background()
	s := NewIdempotencyStore(time.Minute)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	_, _ = s.AcquireKey(ctx, "a", "op", "h")
	now = now.Add(30 * time.Second)
	_, _ = s.AcquireKey(ctx, "b", "op", "h")

	now = now.Add(45 * time.Second)
	n, err := s.CleanupExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
