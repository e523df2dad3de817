package metrics

import (
	"context"
	"errors"
	"fmt"
	"math"

	"wager-lab/internal/domain"
	"wager-lab/internal/storage"
)

// ErrNoResults is returned when a run has no stored terminal stakes.
var ErrNoResults = errors.New("no results available for aggregation")

// Aggregator recomputes run summaries from persisted terminal stakes.
type Aggregator struct {
	runStore    storage.RunStore
	resultStore storage.ResultStore
}

// NewAggregator creates a new metrics aggregator.
func NewAggregator(runStore storage.RunStore, resultStore storage.ResultStore) *Aggregator {
	return &Aggregator{
		runStore:    runStore,
		resultStore: resultStore,
	}
}

// ComputeSummary loads the stakes of runID and reduces them.
// Returns ErrNoResults if the run has no stored results.
func (a *Aggregator) ComputeSummary(ctx context.Context, runID string) (domain.Summary, []float64, error) {
	stakes, err := a.resultStore.GetByRunID(ctx, runID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.Summary{}, nil, ErrNoResults
		}
		return domain.Summary{}, nil, fmt.Errorf("load results for %s: %w", runID, err)
	}
	return Summarize(stakes), stakes, nil
}

// Verify recomputes the summary of a stored run and checks it against the
// summary persisted with the run. Returns the names of mismatching fields.
func (a *Aggregator) Verify(ctx context.Context, runID string) ([]string, error) {
	run, err := a.runStore.GetByID(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", runID, err)
	}

	got, _, err := a.ComputeSummary(ctx, runID)
	if err != nil {
		return nil, err
	}

	return diffSummaries(run.Summary, got), nil
}

// diffSummaries compares the core statistics of two summaries.
func diffSummaries(want, got domain.Summary) []string {
	var diffs []string
	if want.Simulations != got.Simulations {
		diffs = append(diffs, "simulations")
	}
	if want.BankruptcyCount != got.BankruptcyCount {
		diffs = append(diffs, "bankruptcy_count")
	}
	if !closeEnough(want.BankruptcyRate, got.BankruptcyRate) {
		diffs = append(diffs, "bankruptcy_rate")
	}
	if !closeEnough(want.Mean, got.Mean) {
		diffs = append(diffs, "mean")
	}
	if !closeEnough(want.Median, got.Median) {
		diffs = append(diffs, "median")
	}
	return diffs
}

// closeEnough compares floats with a relative tolerance, absorbing storage round-off.
func closeEnough(a, b float64) bool {
	diff := math.Abs(a - b)
	if diff <= 1e-9 {
		return true
	}
	return diff <= 1e-9*math.Max(math.Abs(a), math.Abs(b))
}
