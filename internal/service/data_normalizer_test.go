package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/mean-reverter/internal/datasource"
)

func TestNormalizeCandleConvertsDecimals(t *testing.T) {
	n := NewDataNormalizer(nil)

	source := &datasource.CandleData{
		Symbol:    "eur/usd",
		Timeframe: "h1",
		Time:      time.Date(2024, 1, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600)),
		Open:      decimal.RequireFromString("1.100049"),
		High:      decimal.RequireFromString("1.1010"),
		Low:       decimal.RequireFromString("1.0990"),
		Close:     decimal.RequireFromString("1.1005"),
		Volume:    decimal.RequireFromString("1200"),
	}

	candle, err := n.NormalizeCandle(source)
	require.NoError(t, err)

	assert.Equal(t, "EURUSD", candle.Symbol)
	assert.Equal(t, "H1", candle.Timeframe)
	assert.Equal(t, time.UTC, candle.Time.Location())
	// Prices rounded to 5 decimal places
	assert.InDelta(t, 1.10005, candle.Open, 1e-9)
	assert.InDelta(t, 1.1010, candle.High, 1e-9)
}

func TestNormalizeCandleRejectsMissingTime(t *testing.T) {
	n := NewDataNormalizer(nil)
	_, err := n.NormalizeCandle(&datasource.CandleData{Symbol: "EURUSD"})
	require.Error(t, err)
}

func TestNormalizeSymbolAliases(t *testing.T) {
	n := NewDataNormalizer(nil)

	assert.Equal(t, "GBPUSD", n.NormalizeSymbol("cable"))
	assert.Equal(t, "EURUSD", n.NormalizeSymbol("EUR_USD"))
	assert.Equal(t, "USDJPY", n.NormalizeSymbol(" usd-jpy "))
	assert.Equal(t, "XAUUSD", n.NormalizeSymbol("XAUUSD"))
}

func TestNormalizeBatchSkipsBadRows(t *testing.T) {
	n := NewDataNormalizer(nil)

	sources := []datasource.CandleData{
		{
			Symbol:    "EURUSD",
			Timeframe: "H1",
			Time:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			Open:      decimal.RequireFromString("1.1"),
			High:      decimal.RequireFromString("1.1"),
			Low:       decimal.RequireFromString("1.1"),
			Close:     decimal.RequireFromString("1.1"),
		},
		{Symbol: "EURUSD", Timeframe: "H1"}, // no timestamp
	}

	candles, skipped := n.NormalizeBatch(sources)
	assert.Len(t, candles, 1)
	assert.Equal(t, 1, skipped)
}
