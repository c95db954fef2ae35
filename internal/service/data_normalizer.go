package service

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/mean-reverter/internal/datasource"
	"github.com/yourusername/mean-reverter/internal/models"
)

// pricePrecision is the number of decimal places kept on normalized prices.
// Five digits covers fractional pips on all major pairs.
const pricePrecision = 5

// DataNormalizer converts provider candle data to the internal model
type DataNormalizer struct {
	symbolMap map[string]string // maps provider symbol spellings to canonical names
	logger    *logrus.Logger
}

// NewDataNormalizer creates a new data normalizer
func NewDataNormalizer(logger *logrus.Logger) *DataNormalizer {
	if logger == nil {
		logger = logrus.New()
	}
	return &DataNormalizer{
		symbolMap: buildSymbolMap(),
		logger:    logger,
	}
}

// NormalizeCandle converts CandleData from any source to the internal Candle model
func (n *DataNormalizer) NormalizeCandle(source *datasource.CandleData) (*models.Candle, error) {
	if source == nil {
		return nil, fmt.Errorf("source candle is nil")
	}
	if source.Time.IsZero() {
		return nil, fmt.Errorf("source candle has no timestamp")
	}

	return &models.Candle{
		Symbol:    n.NormalizeSymbol(source.Symbol),
		Timeframe: strings.ToUpper(strings.TrimSpace(source.Timeframe)),
		Time:      source.Time.UTC(),
		Open:      roundPrice(source.Open),
		High:      roundPrice(source.High),
		Low:       roundPrice(source.Low),
		Close:     roundPrice(source.Close),
		Volume:    roundPrice(source.Volume),
	}, nil
}

// NormalizeBatch converts a slice of source candles, skipping rows that fail
// to normalize and returning the count skipped
func (n *DataNormalizer) NormalizeBatch(sources []datasource.CandleData) ([]*models.Candle, int) {
	candles := make([]*models.Candle, 0, len(sources))
	skipped := 0
	for i := range sources {
		candle, err := n.NormalizeCandle(&sources[i])
		if err != nil {
			skipped++
			n.logger.WithError(err).Warn("Skipping candle during normalization")
			continue
		}
		candles = append(candles, candle)
	}
	return candles, skipped
}

// NormalizeSymbol converts provider symbol spellings to canonical form
// (uppercase, no separators: "eur/usd" becomes "EURUSD")
func (n *DataNormalizer) NormalizeSymbol(symbol string) string {
	cleaned := strings.ToUpper(strings.TrimSpace(symbol))
	cleaned = strings.NewReplacer("/", "", "_", "", "-", "", " ", "").Replace(cleaned)

	if canonical, ok := n.symbolMap[cleaned]; ok {
		return canonical
	}
	return cleaned
}

// roundPrice converts a decimal price to float64 at fixed precision
func roundPrice(d decimal.Decimal) float64 {
	f, _ := d.Round(pricePrecision).Float64()
	return f
}

// buildSymbolMap returns mappings for provider symbol aliases
func buildSymbolMap() map[string]string {
	return map[string]string{
		"EURODOLLAR": "EURUSD",
		"CABLE":      "GBPUSD",
		"GOPHER":     "USDJPY",
		"SWISSY":     "USDCHF",
		"AUSSIE":     "AUDUSD",
		"KIWI":       "NZDUSD",
		"LOONIE":     "USDCAD",
	}
}
