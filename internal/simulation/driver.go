// Package simulation repeats trials of the engine and runs them against storage.
package simulation

import (
	"context"
	"errors"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"wager-lab/internal/domain"
	"wager-lab/internal/engine"
	"wager-lab/internal/rng"
)

// ErrNilFactory is returned when no random source factory is supplied.
var ErrNilFactory = errors.New("simulation: nil rng factory")

// DefaultProgressEvery is the number of trials a worker completes between progress updates.
const DefaultProgressEvery = 1024

// ProgressFunc receives the number of completed trials out of total.
// It is called from worker goroutines and must be safe for concurrent use.
type ProgressFunc func(done, total int)

// DriverOptions configures a Driver.
type DriverOptions struct {
	// Workers <= 1 runs every trial on one goroutine with stream 0.
	Workers int

	// ProgressEvery is the batch size for progress updates. Defaults to DefaultProgressEvery.
	ProgressEvery int

	// OnProgress is optional.
	OnProgress ProgressFunc

	// Counter, if set, is advanced by completed trials. Used by StartProgress.
	Counter *atomic.Int64
}

// Driver runs NumSimulations independent trials and collects terminal stakes in trial order.
type Driver struct {
	workers       int
	progressEvery int
	onProgress    ProgressFunc
	counter       *atomic.Int64
}

// NewDriver creates a driver.
func NewDriver(opts DriverOptions) *Driver {
	every := opts.ProgressEvery
	if every <= 0 {
		every = DefaultProgressEvery
	}
	return &Driver{
		workers:       opts.Workers,
		progressEvery: every,
		onProgress:    opts.OnProgress,
		counter:       opts.Counter,
	}
}

// RunSimulations runs cfg.NumSimulations trials sequentially, all drawing from factory(0).
func RunSimulations(ctx context.Context, cfg domain.GameConfig, factory rng.Factory) (*domain.ResultSet, error) {
	return NewDriver(DriverOptions{}).Run(ctx, cfg, factory)
}

// Run validates cfg and runs its trials.
// With more than one worker the trials are split into contiguous chunks and
// worker w draws from factory(w) only, so output is reproducible for a fixed
// factory and worker count. On cancellation no partial result set is returned.
func (d *Driver) Run(ctx context.Context, cfg domain.GameConfig, factory rng.Factory) (*domain.ResultSet, error) {
	eng, err := engine.New(cfg)
	if err != nil {
		return nil, err
	}
	if factory == nil {
		return nil, ErrNilFactory
	}

	total := cfg.NumSimulations
	stakes := make([]float64, total)
	done := &atomic.Int64{}

	workers := d.workers
	if workers > total {
		workers = total
	}

	if workers <= 1 {
		if err := d.runChunk(ctx, eng, factory(0), stakes, done, total); err != nil {
			return nil, err
		}
		return domain.NewResultSet(stakes), nil
	}

	g, gctx := errgroup.WithContext(ctx)
	chunk := total / workers
	rem := total % workers

	start := 0
	for w := 0; w < workers; w++ {
		n := chunk
		if w < rem {
			n++
		}
		out := stakes[start : start+n]
		start += n

		src := factory(w)
		g.Go(func() error {
			return d.runChunk(gctx, eng, src, out, done, total)
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return domain.NewResultSet(stakes), nil
}

// runChunk fills out with consecutive trials drawn from src.
func (d *Driver) runChunk(ctx context.Context, eng *engine.Engine, src rng.Source, out []float64, done *atomic.Int64, total int) error {
	pending := 0
	for i := range out {
		if err := ctx.Err(); err != nil {
			return err
		}
		stake, err := eng.RunTrialContext(ctx, src)
		if err != nil {
			return err
		}
		out[i] = stake

		pending++
		if pending == d.progressEvery {
			d.report(done, pending, total)
			pending = 0
		}
	}
	if pending > 0 {
		d.report(done, pending, total)
	}
	return nil
}

func (d *Driver) report(done *atomic.Int64, n, total int) {
	current := done.Add(int64(n))
	if d.counter != nil {
		d.counter.Add(int64(n))
	}
	if d.onProgress != nil {
		d.onProgress(int(current), total)
	}
}
