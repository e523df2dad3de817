// Package orchestrator runs parameter sweeps over the strategy switch point.
// Flow: validate base config → one run per switch point → collect rows
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"wager-lab/internal/domain"
	"wager-lab/internal/logger"
	"wager-lab/internal/rng"
	"wager-lab/internal/simulation"
)

// ErrInvalidSweep is returned for an unusable switch point list or step.
var ErrInvalidSweep = errors.New("invalid sweep")

// RunExecutor executes one simulation run. *simulation.Runner satisfies it.
type RunExecutor interface {
	Run(ctx context.Context, req simulation.RunRequest) (*domain.SimulationRun, *domain.ResultSet, error)
}

// SweepRow is the outcome of one switch point.
type SweepRow struct {
	SwitchPoint int            `json:"switch_point"`
	Summary     domain.Summary `json:"summary"`
	RunID       string         `json:"run_id"`
}

// Orchestrator coordinates a switch point sweep.
type Orchestrator struct {
	runner       RunExecutor
	base         domain.GameConfig
	switchPoints []int
	seed         int64
	workers      int
	logger       *zap.Logger
}

// Options for creating Orchestrator.
type Options struct {
	Runner RunExecutor

	// Base is the configuration every variant starts from.
	Base domain.GameConfig

	// SwitchPoints to evaluate. Use SwitchPoints(total, step) for an even grid.
	SwitchPoints []int

	// Seed shared by all variants. 0 draws one seed for the whole sweep.
	Seed    int64
	Workers int
	Logger  *zap.Logger
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	return &Orchestrator{
		runner:       opts.Runner,
		base:         opts.Base,
		switchPoints: opts.SwitchPoints,
		seed:         opts.Seed,
		workers:      opts.Workers,
		logger:       logger.OrNop(opts.Logger),
	}
}

// SweepResult contains results from a sweep.
type SweepResult struct {
	Seed   int64
	Rows   []SweepRow // sorted by switch point ASC
	Errors []string
}

// Run executes one run per switch point.
// Phases:
//  1. Validate base config and switch points
//  2. Resolve shared seed
//  3. Run each variant (per-variant failures are collected, cancellation aborts)
//  4. Sort rows by switch point
func (o *Orchestrator) Run(ctx context.Context) (*SweepResult, error) {
	// Phase 1: Validate
	if err := o.base.Validate(); err != nil {
		return nil, err
	}
	points, err := normalizePoints(o.switchPoints)
	if err != nil {
		return nil, err
	}

	// Phase 2: Seed
	seed := o.seed
	if seed == 0 {
		seed = rng.TimeSeed()
	}
	result := &SweepResult{Seed: seed}

	o.logger.Info("sweep started",
		zap.Int("variants", len(points)),
		zap.Int64("seed", seed),
		zap.Int("simulations_per_variant", o.base.NumSimulations),
	)

	// Phase 3: Run variants
	for _, sp := range points {
		cfg := o.base
		cfg.StrategySwitchPoint = sp

		run, _, err := o.runner.Run(ctx, simulation.RunRequest{
			Config:  cfg,
			Seed:    seed,
			Workers: o.workers,
		})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			result.Errors = append(result.Errors, fmt.Sprintf("switch point %d: %v", sp, err))
			continue
		}

		result.Rows = append(result.Rows, SweepRow{
			SwitchPoint: sp,
			Summary:     run.Summary,
			RunID:       run.RunID,
		})
		o.logger.Debug("variant complete",
			zap.Int("switch_point", sp),
			zap.Float64("mean", run.Summary.Mean),
			zap.Float64("bankruptcy_rate", run.Summary.BankruptcyRate),
		)
	}

	// Phase 4: Sort
	sort.Slice(result.Rows, func(i, j int) bool {
		return result.Rows[i].SwitchPoint < result.Rows[j].SwitchPoint
	})

	o.logger.Info("sweep completed",
		zap.Int("rows", len(result.Rows)),
		zap.Int("errors", len(result.Errors)),
	)
	return result, nil
}

// SwitchPoints returns 0, step, 2*step, ... up to and including total.
// total itself is always included.
func SwitchPoints(total, step int) ([]int, error) {
	if total < 0 || step <= 0 {
		return nil, fmt.Errorf("%w: total %d step %d", ErrInvalidSweep, total, step)
	}
	var points []int
	for sp := 0; sp < total; sp += step {
		points = append(points, sp)
	}
	return append(points, total), nil
}

// normalizePoints dedupes and sorts switch points.
func normalizePoints(points []int) ([]int, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: no switch points", ErrInvalidSweep)
	}
	seen := make(map[int]struct{}, len(points))
	out := make([]int, 0, len(points))
	for _, p := range points {
		if p < 0 {
			return nil, fmt.Errorf("%w: negative switch point %d", ErrInvalidSweep, p)
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	sort.Ints(out)
	return out, nil
}

// Best returns the row with the highest mean final stake.
// Ties go to the lower bankruptcy rate, then the lower switch point.
func Best(rows []SweepRow) (SweepRow, bool) {
	if len(rows) == 0 {
		return SweepRow{}, false
	}
	best := rows[0]
	for _, r := range rows[1:] {
		switch {
		case r.Summary.Mean > best.Summary.Mean:
			best = r
		case r.Summary.Mean == best.Summary.Mean && r.Summary.BankruptcyRate < best.Summary.BankruptcyRate:
			best = r
		case r.Summary.Mean == best.Summary.Mean && r.Summary.BankruptcyRate == best.Summary.BankruptcyRate && r.SwitchPoint < best.SwitchPoint:
			best = r
		}
	}
	return best, true
}
