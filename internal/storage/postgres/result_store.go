package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"wager-lab/internal/storage"
)

// ResultStore implements storage.ResultStore using PostgreSQL.
// Stakes are written with COPY in a single transaction.
type ResultStore struct {
	pool *Pool
}

// NewResultStore creates a new ResultStore.
func NewResultStore(pool *Pool) *ResultStore {
	return &ResultStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ResultStore = (*ResultStore)(nil)

// InsertBulk stores the terminal stakes of a run atomically.
// Returns ErrDuplicateKey if the run already has results and ErrNotFound
// if the run itself was never recorded.
func (s *ResultStore) InsertBulk(ctx context.Context, runID string, stakes []float64) (err error) {
	if runID == "" {
		return storage.ErrInvalidInput
	}
	defer func(start time.Time) { observe("insert_results", start, err) }(time.Now())

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	if err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM trial_results WHERE run_id = $1)`, runID,
	).Scan(&exists); err != nil {
		return fmt.Errorf("check existing results: %w", err)
	}
	if exists {
		return storage.ErrDuplicateKey
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"trial_results"},
		[]string{"run_id", "trial_index", "final_stake"},
		pgx.CopyFromSlice(len(stakes), func(i int) ([]any, error) {
			return trialRow(runID, i, stakes[i]), nil
		}),
	)
	if err != nil {
		return translate("copy trial results", runID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetByRunID retrieves the terminal stakes of a run ordered by trial index.
// Returns ErrNotFound if the run has no results.
func (s *ResultStore) GetByRunID(ctx context.Context, runID string) (stakes []float64, err error) {
	defer func(start time.Time) { observe("get_results", start, err) }(time.Now())

	rows, err := s.pool.Query(ctx,
		`SELECT final_stake FROM trial_results WHERE run_id = $1 ORDER BY trial_index ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("get trial results: %w", err)
	}
	defer rows.Close()

	stakes, err = pgx.CollectRows(rows, pgx.RowTo[float64])
	if err != nil {
		return nil, fmt.Errorf("scan trial results: %w", err)
	}
	if len(stakes) == 0 {
		return nil, storage.ErrNotFound
	}
	return stakes, nil
}

// trialRow is one trial_results row; trial_index is BIGINT.
func trialRow(runID string, index int, stake float64) []any {
	return []any{runID, int64(index), stake}
}
