package memory

import (
	"context"
	"sync"

	"wager-lab/internal/storage"
)

// ResultStore is an in-memory implementation of storage.ResultStore.
type ResultStore struct {
	mu   sync.RWMutex
	data map[string][]float64 // keyed by run_id, trial order
}

// NewResultStore creates a new in-memory result store.
func NewResultStore() *ResultStore {
	return &ResultStore{
		data: make(map[string][]float64),
	}
}

// InsertBulk stores the terminal stakes of a run. Returns ErrDuplicateKey if the run already has results.
func (s *ResultStore) InsertBulk(_ context.Context, runID string, stakes []float64) error {
	if runID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[runID]; exists {
		return storage.ErrDuplicateKey
	}

	stakesCopy := make([]float64, len(stakes))
	copy(stakesCopy, stakes)
	s.data[runID] = stakesCopy
	return nil
}

// GetByRunID retrieves the terminal stakes of a run. Returns ErrNotFound if none stored.
func (s *ResultStore) GetByRunID(_ context.Context, runID string) ([]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stakes, exists := s.data[runID]
	if !exists || len(stakes) == 0 {
		return nil, storage.ErrNotFound
	}

	result := make([]float64, len(stakes))
	copy(result, stakes)
	return result, nil
}

var _ storage.ResultStore = (*ResultStore)(nil)
