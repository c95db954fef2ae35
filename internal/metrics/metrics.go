// Package metrics provides the centralized Prometheus metrics registry.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	CandlesIngestedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mean_reverter",
		Name:      "candles_ingested_total",
		Help:      "Total number of candles ingested by source and status",
	}, []string{"source", "status"})
	TouchesDetectedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mean_reverter",
		Name:      "touches_detected_total",
		Help:      "Total number of EMA touches detected",
	})
	SetupsDetectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mean_reverter",
		Name:      "setups_detected_total",
		Help:      "Total number of setups detected by direction and outcome",
	}, []string{"direction", "outcome"})
	CircuitBreakerTripsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mean_reverter",
		Name:      "circuit_breaker_trips_total",
		Help:      "Total number of HTTP circuit breaker trips",
	})
)

// Gauge metrics
var (
	LastRunExpectancy = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "mean_reverter",
		Name:      "last_run_expectancy_pips",
		Help:      "Expectancy in pips of the most recent detection run",
	})
	LastRunWinRate = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "mean_reverter",
		Name:      "last_run_win_rate",
		Help:      "Win rate (0-1) of the most recent detection run",
	})
	SeriesCacheHitRatio = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "mean_reverter",
		Name:      "series_cache_hit_ratio",
		Help:      "Hit ratio of the bar series cache",
	})
	StreamConnected = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "mean_reverter",
		Name:      "stream_connected",
		Help:      "Whether the live candle stream is connected (1) or not (0)",
	})
)

// Histogram metrics
var (
	DetectionDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "mean_reverter",
		Name:      "detection_duration_seconds",
		Help:      "Duration of detection runs in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	IngestionDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "mean_reverter",
		Name:      "ingestion_duration_seconds",
		Help:      "Duration of historical ingestion runs in seconds",
		Buckets:   []float64{1, 5, 10, 30, 60, 300, 600, 1800},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(CandlesIngestedTotal)
		registry.MustRegister(TouchesDetectedTotal)
		registry.MustRegister(SetupsDetectedTotal)
		registry.MustRegister(CircuitBreakerTripsTotal)

		registry.MustRegister(LastRunExpectancy)
		registry.MustRegister(LastRunWinRate)
		registry.MustRegister(SeriesCacheHitRatio)
		registry.MustRegister(StreamConnected)

		registry.MustRegister(DetectionDuration)
		registry.MustRegister(IngestionDuration)

		registry.MustRegister(SweepRunsTotal)
		registry.MustRegister(SweepConfigFailuresTotal)
		registry.MustRegister(SweepBestExpectancy)
		registry.MustRegister(SweepBestMultiplier)
		registry.MustRegister(SweepDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordCandlesIngested records ingested candle counts by status.
// status should be one of: "stored", "skipped", "invalid"
func RecordCandlesIngested(source, status string, n int) {
	CandlesIngestedTotal.WithLabelValues(source, status).Add(float64(n))
}

// RecordTouch records an EMA touch detection.
func RecordTouch() {
	TouchesDetectedTotal.Inc()
}

// RecordSetup records a detected setup by direction and outcome.
func RecordSetup(direction, outcome string) {
	SetupsDetectedTotal.WithLabelValues(direction, outcome).Inc()
}

// RecordCircuitBreakerTrip records an HTTP circuit breaker trip.
func RecordCircuitBreakerTrip() {
	CircuitBreakerTripsTotal.Inc()
}

// RecordDetectionRun records the duration and headline stats of a detection run.
func RecordDetectionRun(durationSeconds, expectancy, winRate float64) {
	DetectionDuration.Observe(durationSeconds)
	LastRunExpectancy.Set(expectancy)
	LastRunWinRate.Set(winRate)
}

// RecordIngestionDuration records a historical ingestion duration.
func RecordIngestionDuration(durationSeconds float64) {
	IngestionDuration.Observe(durationSeconds)
}

// UpdateSeriesCacheHitRatio updates the series cache hit ratio gauge.
func UpdateSeriesCacheHitRatio(ratio float64) {
	SeriesCacheHitRatio.Set(ratio)
}

// UpdateStreamConnected updates the stream connection gauge.
func UpdateStreamConnected(connected bool) {
	if connected {
		StreamConnected.Set(1)
	} else {
		StreamConnected.Set(0)
	}
}
