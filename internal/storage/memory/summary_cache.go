package memory

import (
	"context"
	"sync"

	"wager-lab/internal/domain"
	"wager-lab/internal/storage"
)

// SummaryCache is an in-memory implementation of storage.SummaryCache without expiry.
type SummaryCache struct {
	mu   sync.RWMutex
	data map[string]*domain.SimulationRun
}

// NewSummaryCache creates a new in-memory summary cache.
func NewSummaryCache() *SummaryCache {
	return &SummaryCache{
		data: make(map[string]*domain.SimulationRun),
	}
}

// Get returns the cached run. Returns ErrNotFound on a miss.
func (c *SummaryCache) Get(_ context.Context, key string) (*domain.SimulationRun, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	run, ok := c.data[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	runCopy := *run
	return &runCopy, nil
}

// Set stores run under key.
func (c *SummaryCache) Set(_ context.Context, key string, run *domain.SimulationRun) error {
	if key == "" || run == nil {
		return storage.ErrInvalidInput
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	runCopy := *run
	c.data[key] = &runCopy
	return nil
}

var _ storage.SummaryCache = (*SummaryCache)(nil)
