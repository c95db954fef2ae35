// Package metrics defines sweep-specific metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Sweep counter vectors
var (
	SweepRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mean_reverter",
		Name:      "sweep_runs_total",
		Help:      "Total number of multiplier sweep runs by status",
	}, []string{"status"})

	SweepConfigFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mean_reverter",
		Name:      "sweep_config_failures_total",
		Help:      "Total number of isolated per-multiplier sweep failures",
	})
)

// Sweep gauges
var (
	SweepBestExpectancy = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "mean_reverter",
		Name:      "sweep_best_expectancy_pips",
		Help:      "Expectancy in pips of the best multiplier from the last sweep",
	})

	SweepBestMultiplier = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "mean_reverter",
		Name:      "sweep_best_multiplier",
		Help:      "Best entry multiplier from the last sweep",
	})
)

// Sweep histograms
var (
	SweepDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "mean_reverter",
		Name:      "sweep_duration_seconds",
		Help:      "Duration of multiplier sweeps in seconds",
		Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
	})
)

// RecordSweepRun records a sweep run event.
// status should be one of: "success", "failure"
func RecordSweepRun(status string, durationSeconds float64) {
	SweepRunsTotal.WithLabelValues(status).Inc()
	SweepDuration.Observe(durationSeconds)
}

// RecordSweepFailure records an isolated per-multiplier failure.
func RecordSweepFailure() {
	SweepConfigFailuresTotal.Inc()
}

// UpdateSweepBest updates the best multiplier gauges from the last sweep.
func UpdateSweepBest(multiplier, expectancy float64) {
	SweepBestMultiplier.Set(multiplier)
	SweepBestExpectancy.Set(expectancy)
}
