package backend

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wager-lab/internal/config"
	"wager-lab/internal/domain"
	"wager-lab/internal/storage/memory"
	"wager-lab/internal/storage/sqlite"
)

func TestOpen_DefaultsToMemory(t *testing.T) {
	s, err := Open(context.Background(), config.StorageConfig{}, nil)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, Memory, s.RunsBackend)
	assert.Equal(t, Memory, s.ResultsBackend)
	assert.Equal(t, Memory, s.CacheBackend)
	assert.IsType(t, &memory.RunStore{}, s.Runs)
	assert.IsType(t, &memory.ResultStore{}, s.Results)
	assert.IsType(t, &memory.SummaryCache{}, s.Cache)
}

func TestOpen_SQLiteRuns(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "runs.db")

	s, err := Open(ctx, config.StorageConfig{SQLitePath: path}, nil)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, SQLite, s.RunsBackend)
	assert.Equal(t, Memory, s.ResultsBackend)
	assert.IsType(t, &sqlite.RunStore{}, s.Runs)

	run := &domain.SimulationRun{
		RunID:      "run-1",
		ConfigHash: "hash",
		Seed:       1,
		Workers:    1,
		Config:     domain.DefaultGameConfig(),
		StartedAt:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		FinishedAt: time.Date(2025, 1, 1, 0, 0, 1, 0, time.UTC),
	}
	require.NoError(t, s.Runs.Insert(ctx, run))

	got, err := s.Runs.GetByID(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "hash", got.ConfigHash)
}

func TestOpen_ReportsConnectionErrors(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := Open(ctx, config.StorageConfig{ClickhouseDSN: "clickhouse:///no-host"}, nil)
	assert.Error(t, err)
}

func TestClose_Idempotent(t *testing.T) {
	calls := 0
	s := &Stores{closers: []func(){func() { calls++ }}}
	s.Close()
	s.Close()
	assert.Equal(t, 1, calls)
}
