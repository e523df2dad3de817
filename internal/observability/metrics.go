// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Run statuses used as label values.
const (
	StatusSuccess   = "success"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
	StatusCached    = "cached"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Simulation metrics
	TrialsSimulated prometheus.Counter
	Bankruptcies    prometheus.Counter
	RunsTotal       *prometheus.CounterVec
	RunDuration     prometheus.Histogram
	RunsInFlight    prometheus.Gauge

	// Cache metrics
	CacheRequests *prometheus.CounterVec

	// Reporting metrics
	ReportsGenerated prometheus.Counter

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// API metrics
	HTTPRequests  *prometheus.CounterVec
	WSConnections prometheus.Gauge

	// Health metrics
	LastSuccessfulRun prometheus.Gauge
}

// NewMetrics creates a new Metrics instance registered with the default registry.
func NewMetrics(namespace string) *Metrics {
	return NewMetricsWith(namespace, prometheus.DefaultRegisterer)
}

// NewMetricsWith creates a new Metrics instance registered with reg.
func NewMetricsWith(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "wager_lab"
	}
	factory := promauto.With(reg)

	return &Metrics{
		// Simulation metrics
		TrialsSimulated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "trials_total",
			Help:      "Total number of trials simulated",
		}),
		Bankruptcies: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "bankruptcies_total",
			Help:      "Total number of trials that ended bankrupt",
		}),
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "runs_total",
			Help:      "Total number of simulation runs by status",
		}, []string{"status"}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "run_duration_seconds",
			Help:      "Simulation run duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		}),
		RunsInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "runs_in_flight",
			Help:      "Number of simulation runs currently executing",
		}),

		// Cache metrics
		CacheRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "requests_total",
			Help:      "Summary cache lookups by result",
		}, []string{"result"}),

		// Reporting metrics
		ReportsGenerated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reporting",
			Name:      "reports_generated_total",
			Help:      "Total number of reports generated",
		}),

		// Database metrics
		DBQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// API metrics
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of API requests by route and status code",
		}, []string{"route", "code"}),
		WSConnections: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "websocket_connections",
			Help:      "Number of open progress websocket connections",
		}),

		// Health metrics
		LastSuccessfulRun: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_run_timestamp",
			Help:      "Unix timestamp of last successful simulation run",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordRun records a finished simulation run.
func (m *Metrics) RecordRun(status string, durationSeconds float64, trials, bankruptcies int) {
	m.RunsTotal.WithLabelValues(status).Inc()
	if status != StatusSuccess {
		return
	}
	m.RunDuration.Observe(durationSeconds)
	m.TrialsSimulated.Add(float64(trials))
	m.Bankruptcies.Add(float64(bankruptcies))
}

// RecordCache records a summary cache lookup.
func (m *Metrics) RecordCache(hit bool) {
	if hit {
		m.CacheRequests.WithLabelValues("hit").Inc()
		return
	}
	m.CacheRequests.WithLabelValues("miss").Inc()
}

// RecordDBQuery records database query metrics.
func (m *Metrics) RecordDBQuery(database, operation string, seconds float64, err error) {
	m.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		m.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

// RecordRun records a finished simulation run on DefaultMetrics.
func RecordRun(status string, durationSeconds float64, trials, bankruptcies int) {
	DefaultMetrics.RecordRun(status, durationSeconds, trials, bankruptcies)
}

// RecordCache records a summary cache lookup on DefaultMetrics.
func RecordCache(hit bool) {
	DefaultMetrics.RecordCache(hit)
}

// RecordDBQuery records database query metrics on DefaultMetrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.RecordDBQuery(database, operation, seconds, err)
}

// RecordReportGenerated increments the reports generated counter.
func RecordReportGenerated() {
	DefaultMetrics.ReportsGenerated.Inc()
}

// RecordHTTPRequest records an API request.
func RecordHTTPRequest(route, code string) {
	DefaultMetrics.HTTPRequests.WithLabelValues(route, code).Inc()
}
