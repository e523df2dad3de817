package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"wager-lab/internal/domain"
	"wager-lab/internal/observability"
	"wager-lab/internal/simulation"
	"wager-lab/internal/storage/memory"
)

func sweepBase() domain.GameConfig {
	cfg := domain.DefaultGameConfig()
	cfg.TotalGames = 20
	cfg.NumSimulations = 200
	return cfg
}

func newRunner(runs *memory.RunStore) *simulation.Runner {
	n := 0
	return simulation.NewRunner(simulation.RunnerOptions{
		RunStore:    runs,
		ResultStore: memory.NewResultStore(),
		Metrics:     observability.NewMetricsWith("test", prometheus.NewRegistry()),
		Clock:       func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) },
		NewID: func() string {
			n++
			return fmt.Sprintf("run-%d", n)
		},
	})
}

// failingExecutor fails for selected switch points.
type failingExecutor struct {
	inner RunExecutor
	fail  map[int]bool
}

func (f *failingExecutor) Run(ctx context.Context, req simulation.RunRequest) (*domain.SimulationRun, *domain.ResultSet, error) {
	if f.fail[req.Config.StrategySwitchPoint] {
		return nil, nil, errors.New("boom")
	}
	return f.inner.Run(ctx, req)
}

func TestSwitchPoints(t *testing.T) {
	got, err := SwitchPoints(10, 4)
	if err != nil {
		t.Fatalf("SwitchPoints failed: %v", err)
	}
	want := []int{0, 4, 8, 10}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}

	exact, _ := SwitchPoints(10, 5)
	if len(exact) != 3 || exact[2] != 10 {
		t.Errorf("expected [0 5 10], got %v", exact)
	}

	if _, err := SwitchPoints(10, 0); !errors.Is(err, ErrInvalidSweep) {
		t.Errorf("expected ErrInvalidSweep for step 0, got %v", err)
	}
}

func TestOrchestrator_Run_SortedRows(t *testing.T) {
	ctx := context.Background()
	runs := memory.NewRunStore()

	orch := New(Options{
		Runner:       newRunner(runs),
		Base:         sweepBase(),
		SwitchPoints: []int{20, 0, 10, 10},
		Seed:         42,
	})

	result, err := orch.Run(ctx)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Rows) != 3 {
		t.Fatalf("expected 3 rows (deduped), got %d", len(result.Rows))
	}
	for i, want := range []int{0, 10, 20} {
		if result.Rows[i].SwitchPoint != want {
			t.Errorf("row %d: expected switch point %d, got %d", i, want, result.Rows[i].SwitchPoint)
		}
		if result.Rows[i].Summary.Simulations != 200 {
			t.Errorf("row %d: expected 200 simulations, got %d", i, result.Rows[i].Summary.Simulations)
		}
	}

	stored, _ := runs.List(ctx, 0)
	if len(stored) != 3 {
		t.Errorf("expected 3 stored runs, got %d", len(stored))
	}
	for _, r := range stored {
		if r.Seed != 42 {
			t.Errorf("run %s: expected shared seed 42, got %d", r.RunID, r.Seed)
		}
	}
}

func TestOrchestrator_Run_SharedSeedWhenUnseeded(t *testing.T) {
	ctx := context.Background()
	runs := memory.NewRunStore()

	orch := New(Options{
		Runner:       newRunner(runs),
		Base:         sweepBase(),
		SwitchPoints: []int{0, 5},
	})

	result, err := orch.Run(ctx)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Seed == 0 {
		t.Fatal("expected a resolved seed")
	}

	stored, _ := runs.List(ctx, 0)
	for _, r := range stored {
		if r.Seed != result.Seed {
			t.Errorf("run %s: seed %d differs from sweep seed %d", r.RunID, r.Seed, result.Seed)
		}
	}
}

func TestOrchestrator_Run_CollectsVariantErrors(t *testing.T) {
	orch := New(Options{
		Runner:       &failingExecutor{inner: newRunner(memory.NewRunStore()), fail: map[int]bool{5: true}},
		Base:         sweepBase(),
		SwitchPoints: []int{0, 5, 10},
		Seed:         1,
	})

	result, err := orch.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(result.Rows) != 2 {
		t.Errorf("expected 2 rows, got %d", len(result.Rows))
	}
	if len(result.Errors) != 1 {
		t.Errorf("expected 1 error, got %v", result.Errors)
	}
}

func TestOrchestrator_Run_InvalidBase(t *testing.T) {
	base := sweepBase()
	base.BetPercent = 0

	orch := New(Options{Runner: newRunner(memory.NewRunStore()), Base: base, SwitchPoints: []int{0}})
	if _, err := orch.Run(context.Background()); !errors.Is(err, domain.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestOrchestrator_Run_InvalidPoints(t *testing.T) {
	for _, points := range [][]int{nil, {3, -1}} {
		orch := New(Options{Runner: newRunner(memory.NewRunStore()), Base: sweepBase(), SwitchPoints: points})
		if _, err := orch.Run(context.Background()); !errors.Is(err, ErrInvalidSweep) {
			t.Errorf("points %v: expected ErrInvalidSweep, got %v", points, err)
		}
	}
}

func TestOrchestrator_Run_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	orch := New(Options{Runner: newRunner(memory.NewRunStore()), Base: sweepBase(), SwitchPoints: []int{0, 5}, Seed: 1})
	if _, err := orch.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestBest(t *testing.T) {
	rows := []SweepRow{
		{SwitchPoint: 0, Summary: domain.Summary{Mean: 90, BankruptcyRate: 40}},
		{SwitchPoint: 10, Summary: domain.Summary{Mean: 110, BankruptcyRate: 20}},
		{SwitchPoint: 20, Summary: domain.Summary{Mean: 110, BankruptcyRate: 10}},
		{SwitchPoint: 30, Summary: domain.Summary{Mean: 110, BankruptcyRate: 10}},
	}

	best, ok := Best(rows)
	if !ok {
		t.Fatal("expected a best row")
	}
	if best.SwitchPoint != 20 {
		t.Errorf("expected switch point 20, got %d", best.SwitchPoint)
	}

	if _, ok := Best(nil); ok {
		t.Error("expected no best row for empty input")
	}
}
