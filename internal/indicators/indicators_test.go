package indicators

import (
	"math"
	"testing"
	"time"

	"github.com/yourusername/mean-reverter/internal/models"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestEMASeedAndRecursion(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	out := EMA(values, 3)

	if !math.IsNaN(out[0]) || !math.IsNaN(out[1]) {
		t.Fatalf("expected NaN warm-up, got %v %v", out[0], out[1])
	}
	if !almostEqual(out[2], 2.0) {
		t.Errorf("seed should be SMA of first 3 values, got %f", out[2])
	}
	// alpha = 2/(3+1) = 0.5
	if !almostEqual(out[3], 3.0) {
		t.Errorf("expected 3.0, got %f", out[3])
	}
	if !almostEqual(out[4], 4.0) {
		t.Errorf("expected 4.0, got %f", out[4])
	}
}

func TestEMAShorterThanPeriod(t *testing.T) {
	out := EMA([]float64{1, 2}, 5)
	for i, v := range out {
		if !math.IsNaN(v) {
			t.Errorf("index %d: expected NaN, got %f", i, v)
		}
	}
}

func TestATRConstantRange(t *testing.T) {
	n := 50
	high := make([]float64, n)
	low := make([]float64, n)
	closes := make([]float64, n)
	for i := 0; i < n; i++ {
		high[i] = 1.2010
		low[i] = 1.2000
		closes[i] = 1.2005
	}
	atr := ATR(high, low, closes, 14, 1.0)

	if !math.IsNaN(atr[5]) {
		t.Errorf("warm-up index should be NaN, got %f", atr[5])
	}
	// With a constant true range the smoothed value equals the range.
	if !almostEqual(atr[n-1], 0.0010) {
		t.Errorf("expected ATR 0.0010, got %f", atr[n-1])
	}
}

func TestATRAdjustmentFactor(t *testing.T) {
	n := 40
	high := make([]float64, n)
	low := make([]float64, n)
	closes := make([]float64, n)
	for i := 0; i < n; i++ {
		high[i] = 1.0010
		low[i] = 1.0000
		closes[i] = 1.0005
	}
	plain := ATR(high, low, closes, 14, 1.0)
	adjusted := ATR(high, low, closes, 14, 0.99)

	if !almostEqual(adjusted[n-1], plain[n-1]*0.99) {
		t.Errorf("adjustment not applied: %f vs %f", adjusted[n-1], plain[n-1])
	}
}

func TestRSIAllGains(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	rsi := RSI(closes, 14)
	if got := rsi[len(rsi)-1]; !almostEqual(got, 100) {
		t.Errorf("monotonic rise should give RSI 100, got %f", got)
	}
}

func TestADXBounds(t *testing.T) {
	n := 80
	high := make([]float64, n)
	low := make([]float64, n)
	closes := make([]float64, n)
	for i := 0; i < n; i++ {
		base := 1.1000 + 0.0005*math.Sin(float64(i)/4)
		high[i] = base + 0.0010
		low[i] = base - 0.0010
		closes[i] = base
	}
	adx, plusDI, minusDI := ADX(high, low, closes, 14)
	for i := n - 10; i < n; i++ {
		if math.IsNaN(adx[i]) {
			t.Fatalf("ADX still NaN at index %d", i)
		}
		if adx[i] < 0 || adx[i] > 100 {
			t.Errorf("ADX out of range at %d: %f", i, adx[i])
		}
		if plusDI[i] < 0 || minusDI[i] < 0 {
			t.Errorf("DI negative at %d: %f %f", i, plusDI[i], minusDI[i])
		}
	}
}

func TestEnrichTrimsWarmUpAndSetsBands(t *testing.T) {
	calc, err := NewCalculator(20, 14, 14, 14, 1.0)
	if err != nil {
		t.Fatal(err)
	}

	n := 120
	candles := make([]models.Candle, n)
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		base := 1.1000 + 0.0008*math.Sin(float64(i)/6)
		candles[i] = models.Candle{
			Symbol:    "EURUSD",
			Timeframe: "H1",
			Time:      start.Add(time.Duration(i) * time.Hour),
			Open:      base,
			High:      base + 0.0012,
			Low:       base - 0.0012,
			Close:     base + 0.0002,
		}
	}

	bars, trimmed, err := calc.Enrich(candles, 2.2, 3.0)
	if err != nil {
		t.Fatal(err)
	}
	if trimmed == 0 {
		t.Error("expected warm-up rows to be trimmed")
	}
	if len(bars)+trimmed != n {
		t.Errorf("bars %d + trimmed %d != %d", len(bars), trimmed, n)
	}
	for i, b := range bars {
		if b.UpperEntry <= b.EMA || b.LowerEntry >= b.EMA {
			t.Fatalf("bar %d: entry bands not around EMA", i)
		}
		if b.UpperStop <= b.UpperEntry || b.LowerStop >= b.LowerEntry {
			t.Fatalf("bar %d: stop bands not outside entry bands", i)
		}
		if !almostEqual(b.UpperEntry-b.EMA, b.ATR*2.2) {
			t.Fatalf("bar %d: entry band not ATR*2.2 from EMA", i)
		}
	}
}

func TestEnrichEmptyInput(t *testing.T) {
	calc, _ := NewCalculator(20, 14, 14, 14, 1.0)
	if _, _, err := calc.Enrich(nil, 2.2, 3.0); err == nil {
		t.Error("expected error for empty input")
	}
}
