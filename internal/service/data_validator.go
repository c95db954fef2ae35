package service

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/mean-reverter/internal/models"
)

// DataValidator validates candle data before it enters the indicator pipeline
type DataValidator struct {
	logger *logrus.Logger
}

// NewDataValidator creates a new data validator
func NewDataValidator(logger *logrus.Logger) *DataValidator {
	if logger == nil {
		logger = logrus.New()
	}
	return &DataValidator{logger: logger}
}

// ValidateCandle validates a single candle for required fields and OHLC sanity
func (v *DataValidator) ValidateCandle(candle *models.Candle) []string {
	var errors []string

	if candle.Symbol == "" {
		errors = append(errors, "symbol is required")
	}
	if candle.Timeframe == "" {
		errors = append(errors, "timeframe is required")
	}
	if candle.Time.IsZero() {
		errors = append(errors, "candle_time is required")
	}

	if candle.Open <= 0 || candle.High <= 0 || candle.Low <= 0 || candle.Close <= 0 {
		errors = append(errors, "prices must be positive")
		return errors
	}

	if candle.High < candle.Low {
		errors = append(errors, fmt.Sprintf("high %.5f below low %.5f", candle.High, candle.Low))
	}
	if candle.Open > candle.High || candle.Open < candle.Low {
		errors = append(errors, fmt.Sprintf("open %.5f outside high-low range", candle.Open))
	}
	if candle.Close > candle.High || candle.Close < candle.Low {
		errors = append(errors, fmt.Sprintf("close %.5f outside high-low range", candle.Close))
	}
	if candle.Volume < 0 {
		errors = append(errors, "volume cannot be negative")
	}

	return errors
}

// ValidateSeries validates ordering across a batch of candles: timestamps must
// be strictly increasing with no duplicates
func (v *DataValidator) ValidateSeries(candles []*models.Candle) []string {
	var errors []string

	for i := 1; i < len(candles); i++ {
		prev, cur := candles[i-1], candles[i]
		if cur.Time.Equal(prev.Time) {
			errors = append(errors, fmt.Sprintf("duplicate candle at %s", cur.Time.Format(time.RFC3339)))
		} else if cur.Time.Before(prev.Time) {
			errors = append(errors, fmt.Sprintf("out-of-order candle at %s", cur.Time.Format(time.RFC3339)))
		}
	}

	return errors
}

// ValidateGapTolerance reports gaps larger than maxGap between consecutive
// candles. Weekend gaps in forex data are expected, so this only warns.
func (v *DataValidator) ValidateGapTolerance(candles []*models.Candle, maxGap time.Duration) int {
	gaps := 0
	for i := 1; i < len(candles); i++ {
		delta := candles[i].Time.Sub(candles[i-1].Time)
		if delta > maxGap {
			gaps++
			v.logger.WithFields(logrus.Fields{
				"from": candles[i-1].Time.Format(time.RFC3339),
				"to":   candles[i].Time.Format(time.RFC3339),
				"gap":  delta.String(),
			}).Debug("Gap in candle series")
		}
	}
	return gaps
}
