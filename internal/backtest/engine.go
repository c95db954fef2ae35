package backtest

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/mean-reverter/internal/models"
)

// Engine orchestrates detection runs: touch scan, entry scan, outcome
// simulation and setup assembly over one bar series.
type Engine struct {
	config DetectionConfig
	logger *logrus.Logger
}

// RunResult is the output of one detection run
type RunResult struct {
	RunID  uuid.UUID
	Config DetectionConfig
	Setups []*models.Setup
	Stats  Stats
}

// NewEngine creates a new detection engine
func NewEngine(cfg DetectionConfig, logger *logrus.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Engine{config: cfg, logger: logger}, nil
}

// Config returns the detection configuration
func (e *Engine) Config() DetectionConfig {
	return e.config
}

// Run executes a full detection pass over the series and aggregates the
// resulting setups into statistics.
func (e *Engine) Run(series *models.BarSeries) (*RunResult, error) {
	if series == nil {
		return nil, fmt.Errorf("bar series is required")
	}
	if len(series.WindowIndices(e.config.StartDate, e.config.EndDate)) == 0 {
		return nil, fmt.Errorf("no bars in window %s to %s",
			e.config.StartDate.Format("2006-01-02"), e.config.EndDate.Format("2006-01-02"))
	}

	runID := uuid.New()
	e.logger.WithFields(logrus.Fields{
		"run_id":     runID,
		"symbol":     series.Symbol,
		"start":      e.config.StartDate,
		"end":        e.config.EndDate,
		"multiplier": e.config.EntryMultiplier,
	}).Info("Starting detection run")

	setups := e.Detect(series, runID)
	stats := CalculateStats(setups, e.config.StartDate, e.config.EndDate)

	e.logger.WithFields(logrus.Fields{
		"run_id": runID,
		"setups": len(setups),
		"wins":   stats.Wins,
		"losses": stats.Losses,
		"open":   stats.Open,
	}).Info("Detection run complete")

	return &RunResult{RunID: runID, Config: e.config, Setups: setups, Stats: stats}, nil
}

// Detect runs the touch → drift → entry → simulate pipeline and returns the
// setups in detection order. LONG and SHORT are scanned independently per
// touch, so a single touch can yield up to two setups.
func (e *Engine) Detect(series *models.BarSeries, runID uuid.UUID) []*models.Setup {
	touches := FindTouches(series, e.config.StartDate, e.config.EndDate)
	e.logger.WithField("touches", len(touches)).Debug("Touch scan complete")

	setups := make([]*models.Setup, 0)
	for _, touchIdx := range touches {
		if e.config.MinCandlesAway > 0 {
			valid, observed := ValidateDrift(series, touchIdx, e.config.MinCandlesAway)
			if !valid {
				e.logger.WithFields(logrus.Fields{
					"touch":    series.At(touchIdx).Time,
					"observed": observed,
				}).Debug("Touch rejected: price re-touched EMA too soon")
				continue
			}
		}

		for _, direction := range []models.Direction{models.DirectionLong, models.DirectionShort} {
			entryIdx, found := FindEntry(series, touchIdx, direction, e.config)
			if !found {
				continue
			}
			if !series.InWindow(entryIdx, e.config.StartDate, e.config.EndDate) {
				continue
			}
			setups = append(setups, BuildSetup(series, touchIdx, entryIdx, direction, e.config, runID))
		}
	}
	return setups
}
