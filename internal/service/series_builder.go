package service

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/mean-reverter/internal/config"
	"github.com/yourusername/mean-reverter/internal/indicators"
	"github.com/yourusername/mean-reverter/internal/models"
)

// SeriesBuilder turns raw candles into an indicator-enriched bar series ready
// for detection
type SeriesBuilder struct {
	calculator *indicators.Calculator
	logger     *logrus.Logger
}

// NewSeriesBuilder creates a series builder from indicator configuration
func NewSeriesBuilder(cfg config.IndicatorsConfig, logger *logrus.Logger) (*SeriesBuilder, error) {
	calculator, err := indicators.NewCalculator(
		cfg.EMAPeriod,
		cfg.ATRPeriod,
		cfg.ADXPeriod,
		cfg.RSIPeriod,
		cfg.ATRAdjustment,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create indicator calculator: %w", err)
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &SeriesBuilder{calculator: calculator, logger: logger}, nil
}

// Build enriches candles with indicators and band levels and returns a
// validated bar series. Warm-up rows without full indicator coverage are
// trimmed from the front.
func (b *SeriesBuilder) Build(symbol, timeframe string, candles []*models.Candle, entryMultiplier, stopMultiplier float64) (*models.BarSeries, error) {
	if len(candles) == 0 {
		return nil, models.ErrEmptySeries
	}

	flat := make([]models.Candle, len(candles))
	for i, c := range candles {
		flat[i] = *c
	}

	bars, trimmed, err := b.calculator.Enrich(flat, entryMultiplier, stopMultiplier)
	if err != nil {
		return nil, fmt.Errorf("failed to enrich candles: %w", err)
	}

	b.logger.WithFields(logrus.Fields{
		"symbol":    symbol,
		"timeframe": timeframe,
		"candles":   len(candles),
		"bars":      len(bars),
		"trimmed":   trimmed,
	}).Debug("Built bar series")

	return models.NewBarSeries(symbol, timeframe, bars)
}
