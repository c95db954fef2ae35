// Package indicators computes the technical indicator columns the detection
// pipeline consumes: EMA, Wilder ATR, ADX with directional indicators, RSI
// and the ATR band levels around the EMA.
package indicators

import (
	"fmt"
	"math"

	"github.com/yourusername/mean-reverter/internal/models"
)

// Calculator enriches raw candles with indicator columns.
type Calculator struct {
	EMAPeriod     int
	ATRPeriod     int
	ADXPeriod     int
	RSIPeriod     int
	ATRAdjustment float64 // broker-calibration factor applied to ATR
}

// NewCalculator returns a calculator with the given periods. A zero
// adjustment factor is treated as 1.0.
func NewCalculator(emaPeriod, atrPeriod, adxPeriod, rsiPeriod int, atrAdjustment float64) (*Calculator, error) {
	if emaPeriod < 1 || atrPeriod < 1 || adxPeriod < 1 || rsiPeriod < 1 {
		return nil, fmt.Errorf("indicator periods must be positive")
	}
	if atrAdjustment == 0 {
		atrAdjustment = 1.0
	}
	if atrAdjustment < 0 {
		return nil, fmt.Errorf("atr adjustment must be positive, got %f", atrAdjustment)
	}
	return &Calculator{
		EMAPeriod:     emaPeriod,
		ATRPeriod:     atrPeriod,
		ADXPeriod:     adxPeriod,
		RSIPeriod:     rsiPeriod,
		ATRAdjustment: atrAdjustment,
	}, nil
}

// Enrich computes every indicator over the candles, attaches band levels at
// the given multipliers and trims the warm-up rows where any indicator is
// still undefined. Returns the enriched bars and the number of rows trimmed.
func (c *Calculator) Enrich(candles []models.Candle, entryMultiplier, stopMultiplier float64) ([]models.Bar, int, error) {
	if len(candles) == 0 {
		return nil, 0, models.ErrEmptySeries
	}

	n := len(candles)
	high := make([]float64, n)
	low := make([]float64, n)
	closes := make([]float64, n)
	for i, cd := range candles {
		high[i] = cd.High
		low[i] = cd.Low
		closes[i] = cd.Close
	}

	ema := EMA(closes, c.EMAPeriod)
	atr := ATR(high, low, closes, c.ATRPeriod, c.ATRAdjustment)
	adx, plusDI, minusDI := ADX(high, low, closes, c.ADXPeriod)
	rsi := RSI(closes, c.RSIPeriod)

	bars := make([]models.Bar, 0, n)
	trimmed := 0
	for i := 0; i < n; i++ {
		if anyNaN(ema[i], atr[i], adx[i], plusDI[i], minusDI[i], rsi[i]) {
			trimmed++
			continue
		}
		bars = append(bars, models.Bar{
			Time:       candles[i].Time,
			Open:       candles[i].Open,
			High:       candles[i].High,
			Low:        candles[i].Low,
			Close:      candles[i].Close,
			EMA:        ema[i],
			ATR:        atr[i],
			ADX:        adx[i],
			PlusDI:     plusDI[i],
			MinusDI:    minusDI[i],
			RSI:        rsi[i],
			UpperEntry: ema[i] + atr[i]*entryMultiplier,
			LowerEntry: ema[i] - atr[i]*entryMultiplier,
			UpperStop:  ema[i] + atr[i]*stopMultiplier,
			LowerStop:  ema[i] - atr[i]*stopMultiplier,
		})
	}
	if len(bars) == 0 {
		return nil, trimmed, fmt.Errorf("all %d candles fall inside the indicator warm-up period", n)
	}
	return bars, trimmed, nil
}

// EMA computes an exponential moving average seeded with the simple average
// of the first period values. Warm-up entries are NaN.
func EMA(values []float64, period int) []float64 {
	out := nanSlice(len(values))
	if len(values) < period {
		return out
	}
	sum := 0.0
	for i := 0; i < period; i++ {
		sum += values[i]
	}
	out[period-1] = sum / float64(period)
	alpha := 2.0 / (float64(period) + 1.0)
	for i := period; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// ATR computes the Average True Range with Wilder smoothing (RMA), matching
// the MT5 convention, then scales it by the adjustment factor.
func ATR(high, low, closes []float64, period int, adjustment float64) []float64 {
	tr := trueRange(high, low, closes)
	atr := rma(tr, period)
	for i := range atr {
		atr[i] *= adjustment
	}
	return atr
}

// ADX computes the Average Directional Index along with +DI and -DI, all
// Wilder-smoothed.
func ADX(high, low, closes []float64, period int) (adx, plusDI, minusDI []float64) {
	n := len(high)
	plusDM := make([]float64, n)
	minusDM := make([]float64, n)
	for i := 1; i < n; i++ {
		up := high[i] - high[i-1]
		down := low[i-1] - low[i]
		if up > down && up > 0 {
			plusDM[i] = up
		}
		if down > up && down > 0 {
			minusDM[i] = down
		}
	}

	tr := trueRange(high, low, closes)
	smTR := rma(tr, period)
	smPlus := rma(plusDM, period)
	smMinus := rma(minusDM, period)

	plusDI = nanSlice(n)
	minusDI = nanSlice(n)
	dx := nanSlice(n)
	for i := 0; i < n; i++ {
		if math.IsNaN(smTR[i]) || smTR[i] == 0 {
			continue
		}
		plusDI[i] = 100 * smPlus[i] / smTR[i]
		minusDI[i] = 100 * smMinus[i] / smTR[i]
		if sum := plusDI[i] + minusDI[i]; sum > 0 {
			dx[i] = 100 * math.Abs(plusDI[i]-minusDI[i]) / sum
		} else {
			dx[i] = 0
		}
	}
	adx = rmaSkipNaN(dx, period)
	return adx, plusDI, minusDI
}

// RSI computes the Relative Strength Index with Wilder smoothing.
func RSI(closes []float64, period int) []float64 {
	n := len(closes)
	gains := make([]float64, n)
	losses := make([]float64, n)
	for i := 1; i < n; i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains[i] = delta
		} else {
			losses[i] = -delta
		}
	}
	avgGain := rma(gains, period)
	avgLoss := rma(losses, period)

	out := nanSlice(n)
	for i := 0; i < n; i++ {
		if math.IsNaN(avgGain[i]) || math.IsNaN(avgLoss[i]) {
			continue
		}
		if avgLoss[i] == 0 {
			out[i] = 100
			continue
		}
		rs := avgGain[i] / avgLoss[i]
		out[i] = 100 - 100/(1+rs)
	}
	return out
}

// trueRange returns max(high-low, |high-prevClose|, |low-prevClose|). The
// first bar has no previous close, so its TR is just high-low.
func trueRange(high, low, closes []float64) []float64 {
	n := len(high)
	tr := make([]float64, n)
	if n == 0 {
		return tr
	}
	tr[0] = high[0] - low[0]
	for i := 1; i < n; i++ {
		hl := high[i] - low[i]
		hc := math.Abs(high[i] - closes[i-1])
		lc := math.Abs(low[i] - closes[i-1])
		tr[i] = math.Max(hl, math.Max(hc, lc))
	}
	return tr
}

// rma is Wilder's smoothed moving average: s[i] = s[i-1] + (v[i]-s[i-1])/period,
// seeded with the first value. Outputs before the period-th value are NaN.
func rma(values []float64, period int) []float64 {
	out := nanSlice(len(values))
	if len(values) == 0 {
		return out
	}
	s := values[0]
	for i := 1; i < len(values); i++ {
		s += (values[i] - s) / float64(period)
		if i >= period-1 {
			out[i] = s
		}
	}
	return out
}

// rmaSkipNaN applies Wilder smoothing over a series whose leading entries may
// be NaN (the DX series starts only once DI values exist).
func rmaSkipNaN(values []float64, period int) []float64 {
	out := nanSlice(len(values))
	start := -1
	for i, v := range values {
		if !math.IsNaN(v) {
			start = i
			break
		}
	}
	if start < 0 {
		return out
	}
	s := values[start]
	for i := start + 1; i < len(values); i++ {
		s += (values[i] - s) / float64(period)
		if i >= start+period-1 {
			out[i] = s
		}
	}
	return out
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

func anyNaN(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}
