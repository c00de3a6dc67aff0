// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Sweep metrics
	ScenariosCompleted prometheus.Counter
	ScenariosFailed    *prometheus.CounterVec
	ScenariosSkipped   prometheus.Counter
	ScenariosRetried   prometheus.Counter
	ScenarioDuration   prometheus.Histogram
	SweepDuration      prometheus.Histogram
	SweepGridSize      prometheus.Gauge
	ActiveWorkers      prometheus.Gauge

	// Simulation metrics
	YearsSimulated prometheus.Counter
	RuinsDetected  prometheus.Counter

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec
	PersistRetries  prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "portfolio_note_lab"
	}

	return &Metrics{
		// Sweep metrics
		ScenariosCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sweep",
			Name:      "scenarios_completed_total",
			Help:      "Total number of scenarios simulated to a terminal state",
		}),
		ScenariosFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sweep",
			Name:      "scenarios_failed_total",
			Help:      "Total number of scenarios marked Failed by reason",
		}, []string{"reason"}),
		ScenariosSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sweep",
			Name:      "scenarios_skipped_total",
			Help:      "Total number of scenarios skipped by resume checks",
		}),
		ScenariosRetried: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sweep",
			Name:      "scenarios_retried_total",
			Help:      "Total number of scenario retries after a timeout or failure",
		}),
		ScenarioDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sweep",
			Name:      "scenario_duration_seconds",
			Help:      "Single scenario simulation duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		SweepDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sweep",
			Name:      "duration_seconds",
			Help:      "Full sweep execution duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800},
		}),
		SweepGridSize: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sweep",
			Name:      "grid_size",
			Help:      "Number of scenarios in the expanded parameter grid",
		}),
		ActiveWorkers: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sweep",
			Name:      "active_workers",
			Help:      "Number of workers currently executing scenarios",
		}),

		// Simulation metrics
		YearsSimulated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "years_simulated_total",
			Help:      "Total number of portfolio-years simulated",
		}),
		RuinsDetected: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "ruins_detected_total",
			Help:      "Total number of scenarios terminated by ruin",
		}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"operation"}),
		PersistRetries: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "persist_retries_total",
			Help:      "Total number of persistence retries after a write failure",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordScenarioCompleted increments the completed scenarios counter.
func RecordScenarioCompleted() {
	DefaultMetrics.ScenariosCompleted.Inc()
}

// RecordScenarioFailed increments the failed scenarios counter for a reason.
func RecordScenarioFailed(reason string) {
	DefaultMetrics.ScenariosFailed.WithLabelValues(reason).Inc()
}

// RecordScenarioSkipped increments the resume-skip counter.
func RecordScenarioSkipped() {
	DefaultMetrics.ScenariosSkipped.Inc()
}
