package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"wager-lab/internal/domain"
	"wager-lab/internal/observability"
	"wager-lab/internal/storage"
)

// DefaultTTL bounds how long a cached run is served.
const DefaultTTL = 24 * time.Hour

// DefaultPrefix namespaces cache keys.
const DefaultPrefix = "wager:summary:"

// SummaryCache implements storage.SummaryCache as JSON strings with expiry.
type SummaryCache struct {
	client goredis.Cmdable
	prefix string
	ttl    time.Duration
}

// NewSummaryCache creates a cache over client. ttl <= 0 uses DefaultTTL.
func NewSummaryCache(client goredis.Cmdable, ttl time.Duration) *SummaryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &SummaryCache{client: client, prefix: DefaultPrefix, ttl: ttl}
}

// Compile-time interface check.
var _ storage.SummaryCache = (*SummaryCache)(nil)

// Get returns the cached run. Returns ErrNotFound on a miss.
func (c *SummaryCache) Get(ctx context.Context, key string) (run *domain.SimulationRun, err error) {
	defer func(start time.Time) { observe("cache_get", start, err) }(time.Now())

	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}

	run = &domain.SimulationRun{}
	if err := json.Unmarshal(data, run); err != nil {
		return nil, fmt.Errorf("decode cached run %s: %w", key, err)
	}
	return run, nil
}

// Set stores run under key with the configured TTL.
func (c *SummaryCache) Set(ctx context.Context, key string, run *domain.SimulationRun) (err error) {
	if key == "" || run == nil {
		return storage.ErrInvalidInput
	}
	defer func(start time.Time) { observe("cache_set", start, err) }(time.Now())

	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("encode run %s: %w", run.RunID, err)
	}
	if err := c.client.Set(ctx, c.prefix+key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func observe(operation string, start time.Time, err error) {
	// A miss is a normal outcome, not a query error.
	if errors.Is(err, storage.ErrNotFound) {
		err = nil
	}
	observability.RecordDBQuery("redis", operation, time.Since(start).Seconds(), err)
}
