package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"wager-lab/internal/domain"
	"wager-lab/internal/storage"
)

// RunStore implements storage.RunStore using PostgreSQL.
type RunStore struct {
	pool *Pool
}

// NewRunStore creates a new RunStore.
func NewRunStore(pool *Pool) *RunStore {
	return &RunStore{pool: pool}
}

// Compile-time interface check.
var _ storage.RunStore = (*RunStore)(nil)

const runColumns = `
	run_id, config_hash, seed, workers,
	initial_stake, total_games, win_chance, bet_percent, payout_ratio,
	strategy_switch_point, num_simulations,
	simulations, mean_stake, median_stake, bankruptcy_count, bankruptcy_rate,
	survivors, stddev_stake, min_stake, max_stake, p10_stake, p90_stake,
	started_at, finished_at`

// Insert adds a new run. Returns ErrDuplicateKey if run_id exists.
func (s *RunStore) Insert(ctx context.Context, run *domain.SimulationRun) (err error) {
	if run == nil || run.RunID == "" {
		return storage.ErrInvalidInput
	}
	defer func(start time.Time) { observe("insert_run", start, err) }(time.Now())

	query := `
		INSERT INTO simulation_runs (` + runColumns + `
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7, $8, $9,
			$10, $11,
			$12, $13, $14, $15, $16,
			$17, $18, $19, $20, $21, $22,
			$23, $24
		)
	`

	c, sm := run.Config, run.Summary
	_, err = s.pool.Exec(ctx, query,
		run.RunID, run.ConfigHash, run.Seed, run.Workers,
		c.InitialStake, c.TotalGames, c.WinChance, c.BetPercent, c.PayoutRatio,
		c.StrategySwitchPoint, c.NumSimulations,
		sm.Simulations, sm.Mean, sm.Median, sm.BankruptcyCount, sm.BankruptcyRate,
		sm.Survivors, sm.Stddev, sm.Min, sm.Max, sm.P10, sm.P90,
		run.StartedAt, run.FinishedAt,
	)
	return translate("insert simulation run", run.RunID, err)
}

// GetByID retrieves a run by its ID. Returns ErrNotFound if not exists.
func (s *RunStore) GetByID(ctx context.Context, runID string) (run *domain.SimulationRun, err error) {
	defer func(start time.Time) { observe("get_run", start, err) }(time.Now())

	query := `SELECT ` + runColumns + ` FROM simulation_runs WHERE run_id = $1`

	run, err = scanRun(s.pool.QueryRow(ctx, query, runID))
	if err != nil {
		return nil, translate("get simulation run by id", runID, err)
	}
	return run, nil
}

// GetByConfigHash retrieves all runs sharing a config hash, newest first.
func (s *RunStore) GetByConfigHash(ctx context.Context, configHash string) (runs []*domain.SimulationRun, err error) {
	defer func(start time.Time) { observe("get_runs_by_hash", start, err) }(time.Now())

	query := `SELECT ` + runColumns + `
		FROM simulation_runs
		WHERE config_hash = $1
		ORDER BY started_at DESC, run_id ASC
	`

	rows, err := s.pool.Query(ctx, query, configHash)
	if err != nil {
		return nil, fmt.Errorf("get simulation runs by config hash: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

// List retrieves up to limit runs, newest first. limit <= 0 means no limit.
func (s *RunStore) List(ctx context.Context, limit int) (runs []*domain.SimulationRun, err error) {
	defer func(start time.Time) { observe("list_runs", start, err) }(time.Now())

	query := `SELECT ` + runColumns + `
		FROM simulation_runs
		ORDER BY started_at DESC, run_id ASC
	`
	var args []any
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list simulation runs: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

func scanRun(row pgx.Row) (*domain.SimulationRun, error) {
	var run domain.SimulationRun
	c, sm := &run.Config, &run.Summary
	err := row.Scan(
		&run.RunID, &run.ConfigHash, &run.Seed, &run.Workers,
		&c.InitialStake, &c.TotalGames, &c.WinChance, &c.BetPercent, &c.PayoutRatio,
		&c.StrategySwitchPoint, &c.NumSimulations,
		&sm.Simulations, &sm.Mean, &sm.Median, &sm.BankruptcyCount, &sm.BankruptcyRate,
		&sm.Survivors, &sm.Stddev, &sm.Min, &sm.Max, &sm.P10, &sm.P90,
		&run.StartedAt, &run.FinishedAt,
	)
	if err != nil {
		return nil, err
	}
	run.StartedAt = run.StartedAt.UTC()
	run.FinishedAt = run.FinishedAt.UTC()
	return &run, nil
}

func scanRuns(rows pgx.Rows) ([]*domain.SimulationRun, error) {
	var runs []*domain.SimulationRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan simulation run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate simulation runs: %w", err)
	}
	return runs, nil
}
