package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"wager-lab/internal/domain"
	"wager-lab/internal/storage"
)

// setupTestRedis starts a Redis container and returns a connected cache.
func setupTestRedis(t *testing.T, ttl time.Duration) *SummaryCache {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client, err := NewClient(ctx, Options{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	require.NoError(t, err)

	t.Cleanup(func() {
		client.Close()
		_ = container.Terminate(ctx)
	})
	return NewSummaryCache(client, ttl)
}

func testRun() *domain.SimulationRun {
	started := time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)
	return &domain.SimulationRun{
		RunID:      "run-cache",
		ConfigHash: "hash-cache",
		Seed:       11,
		Workers:    3,
		Config:     domain.DefaultGameConfig(),
		Summary:    domain.Summary{Simulations: 5000, Mean: 130.2, Median: 64.5, BankruptcyCount: 900, BankruptcyRate: 18},
		StartedAt:  started,
		FinishedAt: started.Add(time.Second),
	}
}

func TestSummaryCache_SetGet(t *testing.T) {
	cache := setupTestRedis(t, time.Minute)
	ctx := context.Background()
	run := testRun()

	require.NoError(t, cache.Set(ctx, run.ConfigHash, run))

	got, err := cache.Get(ctx, run.ConfigHash)
	require.NoError(t, err)
	assert.Equal(t, run.RunID, got.RunID)
	assert.Equal(t, run.Config, got.Config)
	assert.Equal(t, run.Summary, got.Summary)
	assert.True(t, run.StartedAt.Equal(got.StartedAt))
}

func TestSummaryCache_Miss(t *testing.T) {
	cache := setupTestRedis(t, time.Minute)

	_, err := cache.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSummaryCache_Expiry(t *testing.T) {
	cache := setupTestRedis(t, time.Second)
	ctx := context.Background()
	run := testRun()

	require.NoError(t, cache.Set(ctx, run.ConfigHash, run))
	time.Sleep(1500 * time.Millisecond)

	_, err := cache.Get(ctx, run.ConfigHash)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSummaryCache_InvalidInput(t *testing.T) {
	cache := NewSummaryCache(nil, 0)
	assert.Equal(t, DefaultTTL, cache.ttl)
	assert.ErrorIs(t, cache.Set(context.Background(), "", testRun()), storage.ErrInvalidInput)
	assert.ErrorIs(t, cache.Set(context.Background(), "k", nil), storage.ErrInvalidInput)
}
