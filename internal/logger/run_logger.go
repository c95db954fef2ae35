// Package logger provides detection-run-specific logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// RunLogger provides dedicated logging for detection and sweep runs.
type RunLogger struct {
	*logrus.Entry
}

// NewRunLogger creates a new run logger.
func NewRunLogger(baseLogger *logrus.Logger) *RunLogger {
	return &RunLogger{
		Entry: baseLogger.WithField("component", "detection"),
	}
}

// LogDetectionRun logs a completed detection run.
func (rl *RunLogger) LogDetectionRun(runID, symbol string, multiplier float64, touches, setups, wins, losses, open int, durationMs float64) {
	rl.WithFields(logrus.Fields{
		"run_id":      runID,
		"symbol":      symbol,
		"multiplier":  multiplier,
		"touches":     touches,
		"setups":      setups,
		"wins":        wins,
		"losses":      losses,
		"open":        open,
		"duration_ms": durationMs,
	}).Info("Detection run completed")
}

// LogSetupDetected logs a single detected setup.
func (rl *RunLogger) LogSetupDetected(runID, symbol, direction string, entryPrice, stopPrice float64, candlesToEntry int) {
	rl.WithFields(logrus.Fields{
		"run_id":           runID,
		"symbol":           symbol,
		"direction":        direction,
		"entry_price":      entryPrice,
		"stop_price":       stopPrice,
		"candles_to_entry": candlesToEntry,
	}).Info("Setup detected")
}

// LogSweepRun logs a completed multiplier sweep.
func (rl *RunLogger) LogSweepRun(runID string, configurations, failures int, bestMultiplier, bestExpectancy float64, durationMs float64) {
	rl.WithFields(logrus.Fields{
		"run_id":          runID,
		"configurations":  configurations,
		"failures":        failures,
		"best_multiplier": bestMultiplier,
		"best_expectancy": bestExpectancy,
		"duration_ms":     durationMs,
	}).Info("Multiplier sweep completed")
}

// LogSweepFailure logs an isolated per-configuration sweep failure.
func (rl *RunLogger) LogSweepFailure(runID string, multiplier float64, reason string) {
	rl.WithFields(logrus.Fields{
		"run_id":     runID,
		"multiplier": multiplier,
		"reason":     reason,
	}).Warn("Sweep configuration failed")
}
