package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"wager-lab/internal/observability"
	"wager-lab/internal/storage"
)

// Pool is the pgx pool shared by RunStore and ResultStore.
type Pool struct {
	*pgxpool.Pool
}

// PoolOptions sizes the pool. Zero fields keep the value parsed from the DSN.
type PoolOptions struct {
	MaxConns          int32
	MinConns          int32
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

// DefaultPoolOptions fits one results writer per run plus API reads.
func DefaultPoolOptions() PoolOptions {
	return PoolOptions{
		MaxConns:          8,
		MinConns:          1,
		MaxConnIdleTime:   5 * time.Minute,
		HealthCheckPeriod: time.Minute,
	}
}

func (o PoolOptions) apply(cfg *pgxpool.Config) {
	if o.MaxConns > 0 {
		cfg.MaxConns = o.MaxConns
	}
	if o.MinConns > 0 && o.MinConns <= cfg.MaxConns {
		cfg.MinConns = o.MinConns
	}
	if o.MaxConnIdleTime > 0 {
		cfg.MaxConnIdleTime = o.MaxConnIdleTime
	}
	if o.HealthCheckPeriod > 0 {
		cfg.HealthCheckPeriod = o.HealthCheckPeriod
	}
}

// NewPool connects with DefaultPoolOptions.
func NewPool(ctx context.Context, dsn string) (*Pool, error) {
	return NewPoolWithOptions(ctx, dsn, DefaultPoolOptions())
}

// NewPoolWithOptions parses dsn, applies opts and pings the server before returning.
func NewPoolWithOptions(ctx context.Context, dsn string, opts PoolOptions) (*Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	opts.apply(cfg)

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Pool{Pool: pool}, nil
}

// SQLSTATE codes mapped onto storage sentinels.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// translate maps a driver error for the run keyed by runID onto the storage
// sentinels. Anything unrecognised is wrapped with op.
func translate(op, runID string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.Missing("run", runID)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return storage.ErrDuplicateKey
		case codeForeignKeyViolation:
			// results written for a run that was never recorded
			return storage.Missing("run", runID)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func observe(operation string, start time.Time, err error) {
	observability.RecordDBQuery("postgres", operation, time.Since(start).Seconds(), err)
}
