// Package backend opens the storage implementations selected by configuration.
//
// Selection:
//   - runs: PostgreSQL, else SQLite, else memory
//   - results: ClickHouse, else PostgreSQL, else memory
//   - cache: Redis, else memory
package backend

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"wager-lab/internal/config"
	"wager-lab/internal/logger"
	"wager-lab/internal/storage"
	chstore "wager-lab/internal/storage/clickhouse"
	"wager-lab/internal/storage/memory"
	"wager-lab/internal/storage/migrations"
	pgstore "wager-lab/internal/storage/postgres"
	redisstore "wager-lab/internal/storage/redis"
	"wager-lab/internal/storage/sqlite"
)

// Backend names reported in Stores.
const (
	Memory     = "memory"
	Postgres   = "postgres"
	Clickhouse = "clickhouse"
	SQLite     = "sqlite"
	Redis      = "redis"
)

// Stores holds the opened stores and the names of their backends.
type Stores struct {
	Runs    storage.RunStore
	Results storage.ResultStore
	Cache   storage.SummaryCache

	RunsBackend    string
	ResultsBackend string
	CacheBackend   string

	closers []func()
}

// Close releases every connection opened by Open, in reverse order.
func (s *Stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

// Open connects to the configured backends and applies their migrations.
// On error every connection opened so far is closed.
func Open(ctx context.Context, cfg config.StorageConfig, log *zap.Logger) (_ *Stores, err error) {
	log = logger.OrNop(log)
	s := &Stores{}
	defer func() {
		if err != nil {
			s.Close()
		}
	}()

	var pool *pgstore.Pool
	if cfg.PostgresDSN != "" {
		pool, err = pgstore.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		s.closers = append(s.closers, pool.Close)
		if err = migrations.RunPostgresMigrations(ctx, pool); err != nil {
			return nil, fmt.Errorf("postgres migrations: %w", err)
		}
	}

	switch {
	case pool != nil:
		s.Runs, s.RunsBackend = pgstore.NewRunStore(pool), Postgres
		if cfg.SQLitePath != "" {
			log.Warn("sqlite path ignored, runs are stored in postgres", zap.String("path", cfg.SQLitePath))
		}
	case cfg.SQLitePath != "":
		db, openErr := sqlite.Open(ctx, cfg.SQLitePath)
		if openErr != nil {
			return nil, fmt.Errorf("open sqlite: %w", openErr)
		}
		s.closers = append(s.closers, func() { _ = db.Close() })
		s.Runs, s.RunsBackend = sqlite.NewRunStore(db), SQLite
	default:
		s.Runs, s.RunsBackend = memory.NewRunStore(), Memory
	}

	switch {
	case cfg.ClickhouseDSN != "":
		conn, openErr := migrations.RunClickhouseMigrations(ctx, cfg.ClickhouseDSN)
		if openErr != nil {
			return nil, fmt.Errorf("clickhouse: %w", openErr)
		}
		s.closers = append(s.closers, func() { _ = conn.Close() })
		s.Results, s.ResultsBackend = chstore.NewResultStore(conn), Clickhouse
	case pool != nil:
		s.Results, s.ResultsBackend = pgstore.NewResultStore(pool), Postgres
	default:
		s.Results, s.ResultsBackend = memory.NewResultStore(), Memory
	}

	if cfg.RedisAddr != "" {
		client, openErr := redisstore.NewClient(ctx, redisstore.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if openErr != nil {
			return nil, fmt.Errorf("connect to redis: %w", openErr)
		}
		s.closers = append(s.closers, func() { _ = client.Close() })
		s.Cache, s.CacheBackend = redisstore.NewSummaryCache(client, cfg.CacheTTL), Redis
	} else {
		s.Cache, s.CacheBackend = memory.NewSummaryCache(), Memory
	}

	log.Info("storage ready",
		zap.String("runs", s.RunsBackend),
		zap.String("results", s.ResultsBackend),
		zap.String("cache", s.CacheBackend),
	)
	return s, nil
}
