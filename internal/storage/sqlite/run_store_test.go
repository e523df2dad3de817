package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wager-lab/internal/domain"
	"wager-lab/internal/storage"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func makeRun(id, hash string, startedAt time.Time) *domain.SimulationRun {
	return &domain.SimulationRun{
		RunID:      id,
		ConfigHash: hash,
		Seed:       7,
		Workers:    4,
		Config:     domain.DefaultGameConfig(),
		Summary: domain.Summary{
			Simulations:     5000,
			Mean:            142.37,
			Median:          61.2,
			BankruptcyCount: 1200,
			BankruptcyRate:  24,
			Survivors:       3800,
			Stddev:          301.5,
			Max:             4200,
			P10:             0,
			P90:             390.1,
		},
		StartedAt:  startedAt,
		FinishedAt: startedAt.Add(750 * time.Millisecond),
	}
}

func TestRunStore_InsertAndGetByID(t *testing.T) {
	store := NewRunStore(openTestDB(t))
	ctx := context.Background()
	startedAt := time.Date(2026, 3, 4, 5, 6, 7, 123456789, time.UTC)

	run := makeRun("run-1", "hash-a", startedAt)
	require.NoError(t, store.Insert(ctx, run))

	got, err := store.GetByID(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, run.RunID, got.RunID)
	assert.Equal(t, run.ConfigHash, got.ConfigHash)
	assert.Equal(t, run.Seed, got.Seed)
	assert.Equal(t, run.Workers, got.Workers)
	assert.Equal(t, run.Config, got.Config)
	assert.Equal(t, run.Summary, got.Summary)
	assert.True(t, run.StartedAt.Equal(got.StartedAt), "started_at keeps nanoseconds")
	assert.Equal(t, run.Duration(), got.Duration())
}

func TestRunStore_DuplicateKey(t *testing.T) {
	store := NewRunStore(openTestDB(t))
	ctx := context.Background()
	run := makeRun("run-dup", "hash-a", time.Unix(100, 0).UTC())

	require.NoError(t, store.Insert(ctx, run))
	assert.ErrorIs(t, store.Insert(ctx, run), storage.ErrDuplicateKey)
}

func TestRunStore_NotFound(t *testing.T) {
	_, err := NewRunStore(openTestDB(t)).GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRunStore_InvalidInput(t *testing.T) {
	store := NewRunStore(openTestDB(t))
	assert.ErrorIs(t, store.Insert(context.Background(), nil), storage.ErrInvalidInput)
	assert.ErrorIs(t, store.Insert(context.Background(), &domain.SimulationRun{}), storage.ErrInvalidInput)
}

func TestRunStore_OrderingAndLimit(t *testing.T) {
	store := NewRunStore(openTestDB(t))
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Insert(ctx, makeRun("b", "h1", base)))
	require.NoError(t, store.Insert(ctx, makeRun("a", "h1", base)))
	require.NoError(t, store.Insert(ctx, makeRun("c", "h2", base.Add(time.Minute))))

	byHash, err := store.GetByConfigHash(ctx, "h1")
	require.NoError(t, err)
	require.Len(t, byHash, 2)
	// Same start time: run_id ascending
	assert.Equal(t, "a", byHash[0].RunID)
	assert.Equal(t, "b", byHash[1].RunID)

	all, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].RunID)

	top, err := store.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "c", top[0].RunID)

	none, err := store.GetByConfigHash(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, none)
}
