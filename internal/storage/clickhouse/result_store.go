package clickhouse

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"wager-lab/internal/storage"
)

// ResultStore implements storage.ResultStore using ClickHouse.
// MergeTree does not enforce uniqueness, so duplicates are checked before insert.
type ResultStore struct {
	conn *Conn
}

// NewResultStore creates a new ResultStore.
func NewResultStore(conn *Conn) *ResultStore {
	return &ResultStore{conn: conn}
}

// Compile-time interface check.
var _ storage.ResultStore = (*ResultStore)(nil)

// InsertBulk stores the terminal stakes of a run in one batch.
// Returns ErrDuplicateKey if the run already has results.
func (s *ResultStore) InsertBulk(ctx context.Context, runID string, stakes []float64) (err error) {
	if runID == "" {
		return storage.ErrInvalidInput
	}
	defer func(start time.Time) { observe("insert_results", start, err) }(time.Now())

	exists, err := s.exists(ctx, runID)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return storage.ErrDuplicateKey
	}
	if len(stakes) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO trial_results (run_id, trial_index, final_stake, bankrupt)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for i, stake := range stakes {
		if err = batch.Append(trialRow(runID, i, stake)...); err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err = batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetByRunID retrieves the terminal stakes of a run ordered by trial index.
// Returns ErrNotFound if the run has no results.
func (s *ResultStore) GetByRunID(ctx context.Context, runID string) (stakes []float64, err error) {
	defer func(start time.Time) { observe("get_results", start, err) }(time.Now())

	rows, err := s.conn.Query(ctx, `
		SELECT final_stake
		FROM trial_results
		WHERE run_id = ?
		ORDER BY trial_index ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query trial results: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var stake float64
		if err := rows.Scan(&stake); err != nil {
			return nil, fmt.Errorf("scan trial result: %w", err)
		}
		stakes = append(stakes, stake)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trial results: %w", err)
	}

	if len(stakes) == 0 {
		return nil, storage.ErrNotFound
	}
	return stakes, nil
}

// Distribution is one row of the run_distribution view.
type Distribution struct {
	Simulations     uint64
	Mean            float64
	Median          float64
	BankruptcyCount uint64
	Max             float64
}

// Distribution reads the per-run aggregates computed by the run_distribution view.
// Returns ErrNotFound if the run has no results.
func (s *ResultStore) Distribution(ctx context.Context, runID string) (d Distribution, err error) {
	defer func(start time.Time) { observe("get_distribution", start, err) }(time.Now())

	err = s.conn.QueryRow(ctx, `
		SELECT simulations, mean_stake, median_stake, bankruptcy_count, max_stake
		FROM run_distribution
		WHERE run_id = ?
	`, runID).Scan(&d.Simulations, &d.Mean, &d.Median, &d.BankruptcyCount, &d.Max)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Distribution{}, storage.ErrNotFound
		}
		return Distribution{}, fmt.Errorf("get run distribution: %w", err)
	}
	return d, nil
}

// BankruptcyCount returns the bankrupt trial count from the run_distribution view.
// Returns ErrNotFound if the run has no results.
func (s *ResultStore) BankruptcyCount(ctx context.Context, runID string) (uint64, error) {
	d, err := s.Distribution(ctx, runID)
	if err != nil {
		return 0, err
	}
	return d.BankruptcyCount, nil
}

func (s *ResultStore) exists(ctx context.Context, runID string) (bool, error) {
	var count uint64
	err := s.conn.QueryRow(ctx,
		`SELECT count() FROM trial_results WHERE run_id = ?`, runID,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// trialRow is one trial_results row: trial_index is UInt64, bankrupt is 1 for a zero stake.
func trialRow(runID string, index int, stake float64) []any {
	var bankrupt uint8
	if stake == 0 {
		bankrupt = 1
	}
	return []any{runID, uint64(index), stake, bankrupt}
}
