package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"wager-lab/internal/domain"
	"wager-lab/internal/storage/memory"
)

func seedRun(t *testing.T, runs *memory.RunStore, results *memory.ResultStore, id string, stakes []float64, summary domain.Summary) {
	t.Helper()
	ctx := context.Background()

	run := &domain.SimulationRun{
		RunID:     id,
		Config:    domain.DefaultGameConfig(),
		Summary:   summary,
		StartedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := runs.Insert(ctx, run); err != nil {
		t.Fatalf("Insert run failed: %v", err)
	}
	if err := results.InsertBulk(ctx, id, stakes); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}
}

func TestAggregator_ComputeSummary(t *testing.T) {
	runs := memory.NewRunStore()
	results := memory.NewResultStore()
	stakes := []float64{0, 150, 50}
	seedRun(t, runs, results, "run-1", stakes, Summarize(stakes))

	agg := NewAggregator(runs, results)
	s, got, err := agg.ComputeSummary(context.Background(), "run-1")
	if err != nil {
		t.Fatalf("ComputeSummary failed: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("expected 3 stakes, got %d", len(got))
	}
	if s.Median != 50 || s.BankruptcyCount != 1 {
		t.Errorf("unexpected summary: %+v", s)
	}
}

func TestAggregator_NoResults(t *testing.T) {
	agg := NewAggregator(memory.NewRunStore(), memory.NewResultStore())

	_, _, err := agg.ComputeSummary(context.Background(), "missing")
	if !errors.Is(err, ErrNoResults) {
		t.Errorf("expected ErrNoResults, got %v", err)
	}
}

func TestAggregator_Verify(t *testing.T) {
	runs := memory.NewRunStore()
	results := memory.NewResultStore()
	stakes := []float64{0, 100, 200, 0}

	seedRun(t, runs, results, "good", stakes, Summarize(stakes))

	tampered := Summarize(stakes)
	tampered.Mean = 1
	tampered.BankruptcyCount = 3
	seedRun(t, runs, results, "bad", stakes, tampered)

	agg := NewAggregator(runs, results)

	diffs, err := agg.Verify(context.Background(), "good")
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if len(diffs) != 0 {
		t.Errorf("expected no diffs, got %v", diffs)
	}

	diffs, err = agg.Verify(context.Background(), "bad")
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if len(diffs) != 2 || diffs[0] != "bankruptcy_count" || diffs[1] != "mean" {
		t.Errorf("expected [bankruptcy_count mean], got %v", diffs)
	}
}
