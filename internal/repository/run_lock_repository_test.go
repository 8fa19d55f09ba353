package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunLockRepositoryLocalFallback(t *testing.T) {
	repo := NewRunLockRepository(nil)
	ctx := context.Background()

	token, ok, err := repo.Acquire(ctx, "lesson-schedule:term-1", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = repo.Acquire(ctx, "lesson-schedule:term-1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "second run must not take a held lock")

	_, ok, err = repo.Acquire(ctx, "lesson-schedule:term-2", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "locks are per key")

	require.NoError(t, repo.Release(ctx, "lesson-schedule:term-1", "someone-else"))
	_, ok, _ = repo.Acquire(ctx, "lesson-schedule:term-1", time.Minute)
	assert.False(t, ok, "foreign token must not release")

	require.NoError(t, repo.Release(ctx, "lesson-schedule:term-1", token))
	_, ok, _ = repo.Acquire(ctx, "lesson-schedule:term-1", time.Minute)
	assert.True(t, ok)
}

func TestRunLockRepositoryLocalExpiry(t *testing.T) {
	repo := NewRunLockRepository(nil)
	ctx := context.Background()

	_, ok, _ := repo.Acquire(ctx, "k", time.Millisecond)
	require.True(t, ok)
	time.Sleep(5 * time.Millisecond)

	_, ok, _ = repo.Acquire(ctx, "k", time.Minute)
	assert.True(t, ok, "expired lock is reclaimable")
}
