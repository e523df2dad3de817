package simulation

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"wager-lab/internal/domain"
	"wager-lab/internal/idhash"
	"wager-lab/internal/logger"
	"wager-lab/internal/metrics"
	"wager-lab/internal/observability"
	"wager-lab/internal/rng"
	"wager-lab/internal/storage"
)

// Runner executes simulation runs and persists them.
type Runner struct {
	runStore         storage.RunStore
	resultStore      storage.ResultStore
	cache            storage.SummaryCache
	logger           *zap.Logger
	metrics          *observability.Metrics
	workers          int
	progressInterval time.Duration
	clock            func() time.Time
	newID            func() string
}

// RunnerOptions contains configuration for creating a Runner.
// Every store is optional; a nil store is skipped.
type RunnerOptions struct {
	RunStore    storage.RunStore
	ResultStore storage.ResultStore
	Cache       storage.SummaryCache
	Logger      *zap.Logger
	Metrics     *observability.Metrics

	// Workers is used when a request does not set its own.
	Workers int

	// ProgressInterval enables the heartbeat log when > 0.
	ProgressInterval time.Duration

	Clock func() time.Time
	NewID func() string
}

// RunRequest describes one run.
type RunRequest struct {
	Config domain.GameConfig

	// Seed 0 draws a seed from the clock; such runs are never served from cache.
	Seed int64

	// Workers 0 uses the runner default.
	Workers int

	OnProgress ProgressFunc
}

// NewRunner creates a simulation runner.
func NewRunner(opts RunnerOptions) *Runner {
	r := &Runner{
		runStore:         opts.RunStore,
		resultStore:      opts.ResultStore,
		cache:            opts.Cache,
		logger:           logger.OrNop(opts.Logger),
		metrics:          opts.Metrics,
		workers:          opts.Workers,
		progressInterval: opts.ProgressInterval,
		clock:            opts.Clock,
		newID:            opts.NewID,
	}
	if r.metrics == nil {
		r.metrics = observability.DefaultMetrics
	}
	if r.clock == nil {
		r.clock = func() time.Time { return time.Now().UTC() }
	}
	if r.newID == nil {
		r.newID = uuid.NewString
	}
	return r
}

// Run executes a simulation run.
// Steps:
//  1. Validate config (fail fast, no trial is run)
//  2. Resolve seed and worker count, compute config hash
//  3. Serve from cache when the seed is explicit and results are still stored
//  4. Drive trials
//  5. Summarize
//  6. Persist run and terminal stakes
//  7. Fill cache
//  8. Record metrics
func (r *Runner) Run(ctx context.Context, req RunRequest) (*domain.SimulationRun, *domain.ResultSet, error) {
	cfg := req.Config

	// 1. Validate config
	if err := cfg.Validate(); err != nil {
		r.metrics.RecordRun(observability.StatusFailed, 0, 0, 0)
		return nil, nil, err
	}

	// 2. Resolve seed, workers, hash
	seed := req.Seed
	cacheable := seed != 0
	if !cacheable {
		seed = rng.TimeSeed()
	}
	workers := req.Workers
	if workers <= 0 {
		workers = r.workers
	}
	if workers < 1 {
		workers = 1
	}
	configHash := idhash.ComputeConfigHash(cfg, seed, workers)

	log := r.logger.With(
		zap.String("config_hash", configHash[:12]),
		zap.Int64("seed", seed),
		zap.Int("workers", workers),
	)

	// 3. Cache lookup
	if cacheable {
		if run, rs, ok := r.fromCache(ctx, configHash, log); ok {
			return run, rs, nil
		}
	}

	// 4. Drive trials
	counter := &atomic.Int64{}
	driver := NewDriver(DriverOptions{
		Workers:    workers,
		OnProgress: req.OnProgress,
		Counter:    counter,
	})

	startedAt := r.clock()
	r.metrics.RunsInFlight.Inc()
	stop := func() {}
	if r.progressInterval > 0 {
		stop = StartProgress(log, int64(cfg.NumSimulations), counter, r.progressInterval)
	}
	rs, err := driver.Run(ctx, cfg, rng.SeededFactory(seed))
	stop()
	r.metrics.RunsInFlight.Dec()
	if err != nil {
		status := observability.StatusFailed
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			status = observability.StatusCancelled
		}
		r.metrics.RecordRun(status, 0, 0, 0)
		log.Warn("simulation aborted", zap.Error(err))
		return nil, nil, err
	}
	finishedAt := r.clock()

	// 5. Summarize
	stakes := rs.Stakes()
	summary := metrics.Summarize(stakes)

	run := &domain.SimulationRun{
		RunID:      r.newID(),
		ConfigHash: configHash,
		Seed:       seed,
		Workers:    workers,
		Config:     cfg,
		Summary:    summary,
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
	}

	// 6. Persist
	if r.runStore != nil {
		if err := r.runStore.Insert(ctx, run); err != nil {
			r.metrics.RecordRun(observability.StatusFailed, 0, 0, 0)
			return nil, nil, fmt.Errorf("persist run %s: %w", run.RunID, err)
		}
	}
	if r.resultStore != nil {
		if err := r.resultStore.InsertBulk(ctx, run.RunID, stakes); err != nil {
			r.metrics.RecordRun(observability.StatusFailed, 0, 0, 0)
			return nil, nil, fmt.Errorf("persist results %s: %w", run.RunID, err)
		}
	}

	// 7. Fill cache
	if cacheable && r.cache != nil {
		if err := r.cache.Set(ctx, configHash, run); err != nil {
			log.Warn("cache set failed", zap.Error(err))
		}
	}

	// 8. Metrics
	duration := run.Duration().Seconds()
	r.metrics.RecordRun(observability.StatusSuccess, duration, summary.Simulations, summary.BankruptcyCount)
	r.metrics.LastSuccessfulRun.Set(float64(finishedAt.Unix()))

	log.Info("simulation complete",
		zap.String("run_id", run.RunID),
		zap.Int("simulations", summary.Simulations),
		zap.Float64("mean", summary.Mean),
		zap.Float64("median", summary.Median),
		zap.Float64("bankruptcy_rate", summary.BankruptcyRate),
		zap.Duration("duration", run.Duration()),
	)

	return run, rs, nil
}

// fromCache returns a cached run with its stored results.
// Any cache or store failure falls through to a fresh run.
func (r *Runner) fromCache(ctx context.Context, key string, log *zap.Logger) (*domain.SimulationRun, *domain.ResultSet, bool) {
	if r.cache == nil || r.resultStore == nil {
		return nil, nil, false
	}

	run, err := r.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Warn("cache get failed", zap.Error(err))
		}
		r.metrics.RecordCache(false)
		return nil, nil, false
	}

	stakes, err := r.resultStore.GetByRunID(ctx, run.RunID)
	if err != nil {
		log.Warn("cached run has no stored results", zap.String("run_id", run.RunID), zap.Error(err))
		r.metrics.RecordCache(false)
		return nil, nil, false
	}

	r.metrics.RecordCache(true)
	r.metrics.RecordRun(observability.StatusCached, 0, 0, 0)
	log.Info("served from cache", zap.String("run_id", run.RunID))
	return run, domain.NewResultSet(stakes), true
}
