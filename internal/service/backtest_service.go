package service

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/mean-reverter/internal/backtest"
	"github.com/yourusername/mean-reverter/internal/config"
	"github.com/yourusername/mean-reverter/internal/metrics"
	"github.com/yourusername/mean-reverter/internal/models"
	"github.com/yourusername/mean-reverter/internal/repository"
)

// BacktestService orchestrates detection and sweep runs: load candles, build
// the enriched series, run the engine, persist and export results.
type BacktestService struct {
	cfg        *config.Config
	candleRepo repository.CandleRepository
	setupRepo  repository.SetupRepository
	sweepRepo  repository.SweepResultRepository
	builder    *SeriesBuilder
	cache      *SeriesCache
	logger     *logrus.Logger
}

// NewBacktestService creates a new backtest service. Repositories may be nil
// when persistence is disabled; candles must then come through RunDetectionOn.
func NewBacktestService(
	cfg *config.Config,
	repos *repository.Repositories,
	builder *SeriesBuilder,
	logger *logrus.Logger,
) *BacktestService {
	if logger == nil {
		logger = logrus.New()
	}

	svc := &BacktestService{
		cfg:     cfg,
		builder: builder,
		logger:  logger,
	}
	if repos != nil {
		svc.candleRepo = repos.Candle
		svc.setupRepo = repos.Setup
		svc.sweepRepo = repos.Sweep
	}
	if cfg.Features.SeriesCacheEnabled {
		svc.cache = NewSeriesCache(30*time.Minute, 64)
	}
	return svc
}

// LoadSeries loads candles from the repository and builds the enriched series
// for the configured strategy window
func (s *BacktestService) LoadSeries(ctx context.Context, detection backtest.DetectionConfig) (*models.BarSeries, error) {
	if s.candleRepo == nil {
		return nil, fmt.Errorf("candle repository is not configured")
	}

	key := SeriesCacheKey{
		Symbol:          s.cfg.Strategy.Symbol,
		Timeframe:       s.cfg.Strategy.Timeframe,
		Start:           detection.StartDate,
		End:             detection.EndDate,
		EntryMultiplier: detection.EntryMultiplier,
	}
	if s.cache != nil {
		if series := s.cache.Get(key); series != nil {
			return series, nil
		}
	}

	// Fetch extra history before the window so indicator warm-up does not eat
	// into the detection range
	warmup := time.Duration(s.cfg.Indicators.EMAPeriod+s.cfg.Indicators.ADXPeriod) * 4 * 24 * time.Hour
	candles, err := s.candleRepo.GetBySymbolAndRange(ctx,
		s.cfg.Strategy.Symbol, s.cfg.Strategy.Timeframe,
		detection.StartDate.Add(-warmup), detection.EndDate)
	if err != nil {
		return nil, fmt.Errorf("failed to load candles: %w", err)
	}
	if len(candles) == 0 {
		return nil, models.ErrEmptySeries
	}

	series, err := s.builder.Build(
		s.cfg.Strategy.Symbol, s.cfg.Strategy.Timeframe,
		candles, detection.EntryMultiplier, detection.StopMultiplier)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(key, series)
	}
	return series, nil
}

// RunDetection runs a single detection pass over candles from the repository
func (s *BacktestService) RunDetection(ctx context.Context) (*backtest.RunResult, error) {
	detection, err := backtest.FromConfig(&s.cfg.Strategy)
	if err != nil {
		return nil, err
	}

	series, err := s.LoadSeries(ctx, detection)
	if err != nil {
		return nil, err
	}
	return s.RunDetectionOn(ctx, series, detection)
}

// RunDetectionOn runs a detection pass over a prepared series, persisting and
// exporting results per configuration
func (s *BacktestService) RunDetectionOn(ctx context.Context, series *models.BarSeries, detection backtest.DetectionConfig) (*backtest.RunResult, error) {
	engine, err := backtest.NewEngine(detection, s.logger)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	result, err := engine.Run(series)
	if err != nil {
		return nil, err
	}

	metrics.RecordDetectionRun(time.Since(started).Seconds(), result.Stats.Expectancy, result.Stats.WinRate)
	for range backtest.FindTouches(series, detection.StartDate, detection.EndDate) {
		metrics.RecordTouch()
	}
	for _, setup := range result.Setups {
		metrics.RecordSetup(string(setup.Direction), string(setup.Outcome))
	}

	if s.cfg.Features.PersistenceEnabled && s.setupRepo != nil {
		if err := s.setupRepo.SaveRun(ctx, result.Setups); err != nil {
			s.logger.WithError(err).Error("Failed to persist setups")
		}
	}

	if s.cfg.Strategy.OutputPath != "" {
		path := filepath.Join(s.cfg.Strategy.OutputPath,
			fmt.Sprintf("setups_%s.csv", result.RunID))
		if err := backtest.ExportSetupsCSV(result.Setups, path); err != nil {
			s.logger.WithError(err).Error("Failed to export setups CSV")
		}
	}

	return result, nil
}

// RunSweep runs the multiplier sweep over candles from the repository
func (s *BacktestService) RunSweep(ctx context.Context) (*backtest.SweepReport, error) {
	detection, err := backtest.FromConfig(&s.cfg.Strategy)
	if err != nil {
		return nil, err
	}
	series, err := s.LoadSeries(ctx, detection)
	if err != nil {
		return nil, err
	}
	return s.RunSweepOn(ctx, series, detection)
}

// RunSweepOn runs the multiplier sweep over a prepared series
func (s *BacktestService) RunSweepOn(ctx context.Context, series *models.BarSeries, detection backtest.DetectionConfig) (*backtest.SweepReport, error) {
	multipliers := backtest.Multipliers(s.cfg.Sweep.Start, s.cfg.Sweep.End, s.cfg.Sweep.Step)
	sweepCfg := backtest.SweepConfig{
		Multipliers: multipliers,
		Baseline:    s.cfg.Sweep.Baseline,
	}

	started := time.Now()
	report, err := backtest.RunSweep(series, detection, sweepCfg, s.logger)
	if err != nil {
		metrics.RecordSweepRun("failure", time.Since(started).Seconds())
		return nil, err
	}

	metrics.RecordSweepRun("success", time.Since(started).Seconds())
	for range report.Failures {
		metrics.RecordSweepFailure()
	}
	if report.Best != nil {
		metrics.UpdateSweepBest(report.Best.Multiplier, report.Best.Expectancy)
	}

	if s.cfg.Features.PersistenceEnabled && s.sweepRepo != nil {
		if err := s.sweepRepo.SaveRun(ctx, report.Results); err != nil {
			s.logger.WithError(err).Error("Failed to persist sweep results")
		}
	}

	if s.cfg.Strategy.OutputPath != "" {
		path := filepath.Join(s.cfg.Strategy.OutputPath,
			fmt.Sprintf("sweep_%s.csv", report.RunID))
		if err := backtest.ExportSweepCSV(report.Results, path); err != nil {
			s.logger.WithError(err).Error("Failed to export sweep CSV")
		}
	}

	return report, nil
}
