package observability

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func gather(t *testing.T, reg *prometheus.Registry) map[string]*dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	out := make(map[string]*dto.MetricFamily, len(families))
	for _, f := range families {
		out[f.GetName()] = f
	}
	return out
}

func counterSum(f *dto.MetricFamily) float64 {
	if f == nil {
		return 0
	}
	sum := 0.0
	for _, m := range f.GetMetric() {
		sum += m.GetCounter().GetValue()
	}
	return sum
}

func TestRecordRun_Success(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetricsWith("test", reg)

	m.RecordRun(StatusSuccess, 0.5, 5000, 120)

	families := gather(t, reg)
	if got := counterSum(families["test_simulation_trials_total"]); got != 5000 {
		t.Errorf("expected 5000 trials, got %f", got)
	}
	if got := counterSum(families["test_simulation_bankruptcies_total"]); got != 120 {
		t.Errorf("expected 120 bankruptcies, got %f", got)
	}
	if got := counterSum(families["test_simulation_runs_total"]); got != 1 {
		t.Errorf("expected 1 run, got %f", got)
	}
}

func TestRecordRun_FailedSkipsTrialCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetricsWith("test", reg)

	m.RecordRun(StatusFailed, 0, 5000, 120)

	families := gather(t, reg)
	if got := counterSum(families["test_simulation_trials_total"]); got != 0 {
		t.Errorf("expected 0 trials for a failed run, got %f", got)
	}
	if got := counterSum(families["test_simulation_runs_total"]); got != 1 {
		t.Errorf("expected 1 run, got %f", got)
	}
}

func TestRecordCacheAndDB(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetricsWith("test", reg)

	m.RecordCache(true)
	m.RecordCache(false)
	m.RecordCache(false)
	m.RecordDBQuery("postgres", "insert_run", 0.01, nil)
	m.RecordDBQuery("postgres", "insert_run", 0.01, errors.New("boom"))

	families := gather(t, reg)
	if got := counterSum(families["test_cache_requests_total"]); got != 3 {
		t.Errorf("expected 3 cache lookups, got %f", got)
	}
	if got := counterSum(families["test_database_query_errors_total"]); got != 1 {
		t.Errorf("expected 1 db error, got %f", got)
	}
}
