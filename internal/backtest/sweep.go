package backtest

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/mean-reverter/internal/models"
)

// SweepConfig configures an entry-multiplier sweep
type SweepConfig struct {
	Multipliers []float64
	Baseline    float64
}

// Validate validates sweep config parameters
func (c SweepConfig) Validate() error {
	if len(c.Multipliers) == 0 {
		return fmt.Errorf("at least one multiplier is required")
	}
	for _, m := range c.Multipliers {
		if m <= 0 {
			return fmt.Errorf("multipliers must be positive, got %f", m)
		}
	}
	if c.Baseline <= 0 {
		return fmt.Errorf("baseline multiplier must be positive")
	}
	return nil
}

// Multipliers returns an inclusive range of multipliers with the given step.
func Multipliers(start, end, step float64) []float64 {
	if step <= 0 || end < start {
		return nil
	}
	out := make([]float64, 0)
	for m := start; m <= end+step/2; m += step {
		out = append(out, math.Round(m*100)/100)
	}
	return out
}

// SweepFailure records one multiplier whose run failed
type SweepFailure struct {
	Multiplier float64
	Err        error
}

// SweepReport is the outcome of a full sweep: ranked successes, isolated
// failures and the comparison of the best configuration against the baseline.
type SweepReport struct {
	RunID    uuid.UUID
	Results  []*models.SweepResult // ranked descending by expectancy
	Failures []SweepFailure
	Best     *models.SweepResult
	Baseline *models.SweepResult

	// Best-versus-baseline comparison. Improvement is a percentage of the
	// baseline expectancy, the delta is in win-rate percentage points.
	ExpectancyImprovement float64
	WinRateDelta          float64
}

// RunSweep reruns the detection pipeline once per multiplier, each run on its
// own derived band columns, and ranks the surviving results by expectancy.
// Runs are independent and execute concurrently; a failing multiplier is
// recorded and excluded without aborting the sweep.
func RunSweep(series *models.BarSeries, detection DetectionConfig, cfg SweepConfig, logger *logrus.Logger) (*SweepReport, error) {
	if series == nil {
		return nil, fmt.Errorf("bar series is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logrus.New()
	}

	runID := uuid.New()
	logger.WithFields(logrus.Fields{
		"run_id":      runID,
		"multipliers": len(cfg.Multipliers),
		"baseline":    cfg.Baseline,
	}).Info("Starting multiplier sweep")

	type outcome struct {
		result *models.SweepResult
		err    error
	}
	outcomes := make([]outcome, len(cfg.Multipliers))

	var wg sync.WaitGroup
	for i, m := range cfg.Multipliers {
		wg.Add(1)
		go func(i int, m float64) {
			defer wg.Done()
			result, err := analyzeMultiplier(series, detection, m, runID, logger)
			outcomes[i] = outcome{result: result, err: err}
		}(i, m)
	}
	wg.Wait()

	report := &SweepReport{RunID: runID}
	for i, out := range outcomes {
		if out.err != nil {
			logger.WithError(out.err).WithField("multiplier", cfg.Multipliers[i]).Warn("Sweep configuration failed")
			report.Failures = append(report.Failures, SweepFailure{Multiplier: cfg.Multipliers[i], Err: out.err})
			continue
		}
		report.Results = append(report.Results, out.result)
	}
	if len(report.Results) == 0 {
		return nil, fmt.Errorf("all %d sweep configurations failed", len(cfg.Multipliers))
	}

	rankByExpectancy(report.Results)
	report.Best = report.Results[0]
	report.Baseline = findMultiplier(report.Results, cfg.Baseline)
	if report.Baseline != nil {
		report.ExpectancyImprovement = expectancyImprovement(report.Best, report.Baseline)
		report.WinRateDelta = (report.Best.WinRate - report.Baseline.WinRate) * 100
	}

	logger.WithFields(logrus.Fields{
		"run_id":     runID,
		"ranked":     len(report.Results),
		"failed":     len(report.Failures),
		"best":       report.Best.Multiplier,
		"expectancy": report.Best.Expectancy,
	}).Info("Sweep complete")

	return report, nil
}

func analyzeMultiplier(series *models.BarSeries, detection DetectionConfig, multiplier float64, runID uuid.UUID, logger *logrus.Logger) (*models.SweepResult, error) {
	dcfg := detection
	dcfg.EntryMultiplier = multiplier

	engine, err := NewEngine(dcfg, logger)
	if err != nil {
		return nil, fmt.Errorf("multiplier %.2f: %w", multiplier, err)
	}

	derived := series.WithEntryMultiplier(multiplier)
	result, err := engine.Run(derived)
	if err != nil {
		return nil, fmt.Errorf("multiplier %.2f: %w", multiplier, err)
	}

	s := result.Stats
	return &models.SweepResult{
		ID:             uuid.New(),
		RunID:          runID,
		Multiplier:     multiplier,
		Trades:         s.Closed(),
		Wins:           s.Wins,
		Losses:         s.Losses,
		Open:           s.Open,
		WinRate:        s.WinRate,
		AvgWinPips:     s.AvgWinPips,
		AvgLossPips:    s.AvgLossPips,
		TotalPips:      s.TotalPips,
		Expectancy:     s.Expectancy,
		ExpectancyProb: s.ExpectancyProb,
		ProfitFactor:   s.ProfitFactor,
		TradesPerYear:  s.TradesPerYear,
		MaxDrawdown:    s.MaxDrawdown,
		CreatedAt:      time.Now().UTC(),
	}, nil
}

func rankByExpectancy(results []*models.SweepResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Expectancy != results[j].Expectancy {
			return results[i].Expectancy > results[j].Expectancy
		}
		return results[i].Multiplier < results[j].Multiplier
	})
	for i, r := range results {
		r.Rank = i + 1
	}
}

func findMultiplier(results []*models.SweepResult, multiplier float64) *models.SweepResult {
	for _, r := range results {
		if math.Abs(r.Multiplier-multiplier) < 1e-9 {
			return r
		}
	}
	return nil
}

func expectancyImprovement(best, baseline *models.SweepResult) float64 {
	if baseline.Expectancy == 0 {
		return 0
	}
	return (best.Expectancy - baseline.Expectancy) / math.Abs(baseline.Expectancy) * 100
}
