package memory

import (
	"context"
	"sort"
	"sync"

	"wager-lab/internal/domain"
	"wager-lab/internal/storage"
)

// RunStore is an in-memory implementation of storage.RunStore.
type RunStore struct {
	mu   sync.RWMutex
	data map[string]*domain.SimulationRun // keyed by run_id
}

// NewRunStore creates a new in-memory run store.
func NewRunStore() *RunStore {
	return &RunStore{
		data: make(map[string]*domain.SimulationRun),
	}
}

// Insert adds a new run. Returns ErrDuplicateKey if run_id exists.
func (s *RunStore) Insert(_ context.Context, run *domain.SimulationRun) error {
	if run == nil || run.RunID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[run.RunID]; exists {
		return storage.ErrDuplicateKey
	}

	runCopy := *run
	s.data[run.RunID] = &runCopy
	return nil
}

// GetByID retrieves a run by its ID. Returns ErrNotFound if not exists.
func (s *RunStore) GetByID(_ context.Context, runID string) (*domain.SimulationRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, exists := s.data[runID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	runCopy := *run
	return &runCopy, nil
}

// GetByConfigHash retrieves all runs with the given config hash, newest first.
func (s *RunStore) GetByConfigHash(_ context.Context, configHash string) ([]*domain.SimulationRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.SimulationRun
	for _, run := range s.data {
		if run.ConfigHash == configHash {
			runCopy := *run
			result = append(result, &runCopy)
		}
	}

	sortNewestFirst(result)
	return result, nil
}

// List retrieves up to limit runs, newest first.
func (s *RunStore) List(_ context.Context, limit int) ([]*domain.SimulationRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.SimulationRun, 0, len(s.data))
	for _, run := range s.data {
		runCopy := *run
		result = append(result, &runCopy)
	}

	sortNewestFirst(result)
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// sortNewestFirst orders by started_at DESC, run_id ASC.
func sortNewestFirst(runs []*domain.SimulationRun) {
	sort.Slice(runs, func(i, j int) bool {
		if !runs[i].StartedAt.Equal(runs[j].StartedAt) {
			return runs[i].StartedAt.After(runs[j].StartedAt)
		}
		return runs[i].RunID < runs[j].RunID
	})
}

var _ storage.RunStore = (*RunStore)(nil)
