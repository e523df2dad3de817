package storage

import (
	"context"

	"wager-lab/internal/domain"
)

// RunStore provides access to simulation_runs storage.
type RunStore interface {
	// Insert adds a new run. Returns ErrDuplicateKey if run_id exists.
	Insert(ctx context.Context, run *domain.SimulationRun) error

	// GetByID retrieves a run by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, runID string) (*domain.SimulationRun, error)

	// GetByConfigHash retrieves all runs sharing a config hash, newest first.
	GetByConfigHash(ctx context.Context, configHash string) ([]*domain.SimulationRun, error)

	// List retrieves up to limit runs, newest first. limit <= 0 means no limit.
	List(ctx context.Context, limit int) ([]*domain.SimulationRun, error)
}

// ResultStore provides access to per-trial terminal stakes.
type ResultStore interface {
	// InsertBulk stores the terminal stakes of a run in trial order.
	// Returns ErrDuplicateKey if the run already has results, ErrInvalidInput for an empty run ID.
	InsertBulk(ctx context.Context, runID string, stakes []float64) error

	// GetByRunID retrieves the terminal stakes of a run ordered by trial index.
	// Returns ErrNotFound if the run has no results.
	GetByRunID(ctx context.Context, runID string) ([]float64, error)
}

// SummaryCache caches completed runs keyed by config hash.
type SummaryCache interface {
	// Get returns the cached run. Returns ErrNotFound on a miss.
	Get(ctx context.Context, key string) (*domain.SimulationRun, error)

	// Set stores run under key, replacing any previous entry.
	Set(ctx context.Context, key string, run *domain.SimulationRun) error
}
