package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"wager-lab/internal/domain"
	"wager-lab/internal/storage"
)

// RunStore implements storage.RunStore using SQLite.
type RunStore struct {
	db *DB
}

// NewRunStore creates a new RunStore.
func NewRunStore(db *DB) *RunStore {
	return &RunStore{db: db}
}

// Compile-time interface check.
var _ storage.RunStore = (*RunStore)(nil)

const runColumns = `
	run_id, config_hash, seed, workers,
	initial_stake, total_games, win_chance, bet_percent, payout_ratio,
	strategy_switch_point, num_simulations,
	simulations, mean_stake, median_stake, bankruptcy_count, bankruptcy_rate,
	survivors, stddev_stake, min_stake, max_stake, p10_stake, p90_stake,
	started_at_ns, finished_at_ns`

// Insert adds a new run. Returns ErrDuplicateKey if run_id exists.
func (s *RunStore) Insert(ctx context.Context, run *domain.SimulationRun) (err error) {
	if run == nil || run.RunID == "" {
		return storage.ErrInvalidInput
	}
	defer func(start time.Time) { observe("insert_run", start, err) }(time.Now())

	c, sm := run.Config, run.Summary
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO simulation_runs (`+runColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.ConfigHash, run.Seed, run.Workers,
		c.InitialStake, c.TotalGames, c.WinChance, c.BetPercent, c.PayoutRatio,
		c.StrategySwitchPoint, c.NumSimulations,
		sm.Simulations, sm.Mean, sm.Median, sm.BankruptcyCount, sm.BankruptcyRate,
		sm.Survivors, sm.Stddev, sm.Min, sm.Max, sm.P10, sm.P90,
		run.StartedAt.UnixNano(), run.FinishedAt.UnixNano(),
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert simulation run: %w", err)
	}
	return nil
}

// GetByID retrieves a run by its ID. Returns ErrNotFound if not exists.
func (s *RunStore) GetByID(ctx context.Context, runID string) (run *domain.SimulationRun, err error) {
	defer func(start time.Time) { observe("get_run", start, err) }(time.Now())

	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM simulation_runs WHERE run_id = ?`, runID)
	run, err = scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get simulation run by id: %w", err)
	}
	return run, nil
}

// GetByConfigHash retrieves all runs sharing a config hash, newest first.
func (s *RunStore) GetByConfigHash(ctx context.Context, configHash string) (runs []*domain.SimulationRun, err error) {
	defer func(start time.Time) { observe("get_runs_by_hash", start, err) }(time.Now())

	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+`
		FROM simulation_runs
		WHERE config_hash = ?
		ORDER BY started_at_ns DESC, run_id ASC`, configHash)
	if err != nil {
		return nil, fmt.Errorf("get simulation runs by config hash: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

// List retrieves up to limit runs, newest first. limit <= 0 means no limit.
func (s *RunStore) List(ctx context.Context, limit int) (runs []*domain.SimulationRun, err error) {
	defer func(start time.Time) { observe("list_runs", start, err) }(time.Now())

	// SQLite treats LIMIT -1 as unbounded.
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+`
		FROM simulation_runs
		ORDER BY started_at_ns DESC, run_id ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list simulation runs: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*domain.SimulationRun, error) {
	var (
		run                 domain.SimulationRun
		startedNs, finishNs int64
	)
	c, sm := &run.Config, &run.Summary
	err := row.Scan(
		&run.RunID, &run.ConfigHash, &run.Seed, &run.Workers,
		&c.InitialStake, &c.TotalGames, &c.WinChance, &c.BetPercent, &c.PayoutRatio,
		&c.StrategySwitchPoint, &c.NumSimulations,
		&sm.Simulations, &sm.Mean, &sm.Median, &sm.BankruptcyCount, &sm.BankruptcyRate,
		&sm.Survivors, &sm.Stddev, &sm.Min, &sm.Max, &sm.P10, &sm.P90,
		&startedNs, &finishNs,
	)
	if err != nil {
		return nil, err
	}
	run.StartedAt = time.Unix(0, startedNs).UTC()
	run.FinishedAt = time.Unix(0, finishNs).UTC()
	return &run, nil
}

func scanRuns(rows *sql.Rows) ([]*domain.SimulationRun, error) {
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
