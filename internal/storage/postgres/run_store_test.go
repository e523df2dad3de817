package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wager-lab/internal/storage"
)

func TestRunStore_InsertAndGetByID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewRunStore(pool)

	startedAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	run := createTestRun("run-001", "hash-a", startedAt)

	require.NoError(t, store.Insert(ctx, run))

	got, err := store.GetByID(ctx, "run-001")
	require.NoError(t, err)

	assert.Equal(t, run.RunID, got.RunID)
	assert.Equal(t, run.ConfigHash, got.ConfigHash)
	assert.Equal(t, run.Seed, got.Seed)
	assert.Equal(t, run.Workers, got.Workers)
	assert.Equal(t, run.Config, got.Config)
	assert.Equal(t, run.Summary, got.Summary)
	assert.True(t, run.StartedAt.Equal(got.StartedAt))
	assert.True(t, run.FinishedAt.Equal(got.FinishedAt))
}

func TestRunStore_DuplicateKey(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewRunStore(pool)
	run := createTestRun("run-dup", "hash-a", time.Now())

	require.NoError(t, store.Insert(ctx, run))
	err := store.Insert(ctx, run)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestRunStore_NotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := NewRunStore(pool).GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRunStore_GetByConfigHashAndList(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewRunStore(pool)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Insert(ctx, createTestRun("run-1", "hash-a", base)))
	require.NoError(t, store.Insert(ctx, createTestRun("run-2", "hash-a", base.Add(time.Hour))))
	require.NoError(t, store.Insert(ctx, createTestRun("run-3", "hash-b", base.Add(2*time.Hour))))

	byHash, err := store.GetByConfigHash(ctx, "hash-a")
	require.NoError(t, err)
	require.Len(t, byHash, 2)
	assert.Equal(t, "run-2", byHash[0].RunID)
	assert.Equal(t, "run-1", byHash[1].RunID)

	all, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "run-3", all[0].RunID)

	limited, err := store.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestRunStore_InvalidInput(t *testing.T) {
	store := NewRunStore(nil)
	assert.ErrorIs(t, store.Insert(context.Background(), nil), storage.ErrInvalidInput)
}
