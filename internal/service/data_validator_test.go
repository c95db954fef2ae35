package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/mean-reverter/internal/models"
)

func validCandle() *models.Candle {
	return &models.Candle{
		Symbol:    "EURUSD",
		Timeframe: "H1",
		Time:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Open:      1.1000,
		High:      1.1010,
		Low:       1.0990,
		Close:     1.1005,
		Volume:    1200,
	}
}

func TestValidateCandleAcceptsValid(t *testing.T) {
	v := NewDataValidator(nil)
	assert.Empty(t, v.ValidateCandle(validCandle()))
}

func TestValidateCandleRequiredFields(t *testing.T) {
	v := NewDataValidator(nil)

	candle := validCandle()
	candle.Symbol = ""
	candle.Time = time.Time{}

	errs := v.ValidateCandle(candle)
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0], "symbol")
	assert.Contains(t, errs[1], "candle_time")
}

func TestValidateCandleOHLCSanity(t *testing.T) {
	v := NewDataValidator(nil)

	tests := []struct {
		name   string
		mutate func(*models.Candle)
	}{
		{"high below low", func(c *models.Candle) { c.High = 1.0980 }},
		{"open above high", func(c *models.Candle) { c.Open = 1.1020 }},
		{"close below low", func(c *models.Candle) { c.Close = 1.0980 }},
		{"negative price", func(c *models.Candle) { c.Low = -1 }},
		{"negative volume", func(c *models.Candle) { c.Volume = -5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candle := validCandle()
			tt.mutate(candle)
			assert.NotEmpty(t, v.ValidateCandle(candle))
		})
	}
}

func TestValidateSeriesOrdering(t *testing.T) {
	v := NewDataValidator(nil)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a, b, c := validCandle(), validCandle(), validCandle()
	a.Time = base
	b.Time = base.Add(time.Hour)
	c.Time = base.Add(2 * time.Hour)

	assert.Empty(t, v.ValidateSeries([]*models.Candle{a, b, c}))

	dup := validCandle()
	dup.Time = b.Time
	errs := v.ValidateSeries([]*models.Candle{a, b, dup})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "duplicate")

	errs = v.ValidateSeries([]*models.Candle{b, a})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "out-of-order")
}

func TestValidateGapTolerance(t *testing.T) {
	v := NewDataValidator(nil)

	base := time.Date(2024, 1, 5, 20, 0, 0, 0, time.UTC)
	a, b, c := validCandle(), validCandle(), validCandle()
	a.Time = base
	b.Time = base.Add(time.Hour)
	c.Time = base.Add(50 * time.Hour) // weekend gap

	gaps := v.ValidateGapTolerance([]*models.Candle{a, b, c}, 2*time.Hour)
	assert.Equal(t, 1, gaps)
}
