package models

import (
	"errors"
	"testing"
	"time"
)

func seriesBar(i int) Bar {
	return Bar{
		Time: time.Date(2025, 1, 1, i, 0, 0, 0, time.UTC),
		Open: 1.1, High: 1.101, Low: 1.099, Close: 1.1,
		EMA: 1.1, ATR: 0.001, ADX: 20, PlusDI: 12, MinusDI: 10, RSI: 50,
	}
}

func TestNewBarSeriesRejectsEmpty(t *testing.T) {
	if _, err := NewBarSeries("EURUSD", "H1", nil); !errors.Is(err, ErrEmptySeries) {
		t.Errorf("expected ErrEmptySeries, got %v", err)
	}
}

func TestNewBarSeriesRejectsDuplicateTimestamps(t *testing.T) {
	bars := []Bar{seriesBar(0), seriesBar(0)}
	if _, err := NewBarSeries("EURUSD", "H1", bars); !errors.Is(err, ErrUnorderedSeries) {
		t.Errorf("expected ErrUnorderedSeries, got %v", err)
	}
}

func TestNewBarSeriesRejectsOutOfOrder(t *testing.T) {
	bars := []Bar{seriesBar(2), seriesBar(1)}
	if _, err := NewBarSeries("EURUSD", "H1", bars); !errors.Is(err, ErrUnorderedSeries) {
		t.Errorf("expected ErrUnorderedSeries, got %v", err)
	}
}

func TestNewBarSeriesRejectsMissingIndicators(t *testing.T) {
	bar := seriesBar(0)
	bar.ATR = 0
	if _, err := NewBarSeries("EURUSD", "H1", []Bar{bar}); !errors.Is(err, ErrIncompleteIndicators) {
		t.Errorf("expected ErrIncompleteIndicators, got %v", err)
	}
}

func TestWindowIndicesInclusive(t *testing.T) {
	series, err := NewBarSeries("EURUSD", "H1", []Bar{seriesBar(0), seriesBar(1), seriesBar(2), seriesBar(3)})
	if err != nil {
		t.Fatal(err)
	}
	start := time.Date(2025, 1, 1, 1, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 1, 2, 0, 0, 0, time.UTC)

	got := series.WindowIndices(start, end)
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("expected [1 2], got %v", got)
	}
}

func TestWithEntryMultiplierLeavesOriginalAlone(t *testing.T) {
	bar := seriesBar(0)
	bar.UpperEntry = bar.EMA + bar.ATR*2.2
	bar.LowerEntry = bar.EMA - bar.ATR*2.2
	bar.UpperStop = bar.EMA + bar.ATR*3.0
	bar.LowerStop = bar.EMA - bar.ATR*3.0

	series, err := NewBarSeries("EURUSD", "H1", []Bar{bar})
	if err != nil {
		t.Fatal(err)
	}
	derived := series.WithEntryMultiplier(1.8)

	if series.At(0).UpperEntry != bar.UpperEntry {
		t.Error("original series mutated by band recomputation")
	}
	if derived.At(0).UpperEntry != bar.EMA+bar.ATR*1.8 {
		t.Errorf("derived upper entry band wrong: %f", derived.At(0).UpperEntry)
	}
	if derived.At(0).UpperStop != bar.UpperStop {
		t.Error("stop band must not change")
	}
}

func TestTouchesEMA(t *testing.T) {
	bar := seriesBar(0)
	if !bar.TouchesEMA() {
		t.Error("EMA inside range should be a touch")
	}
	bar.Low, bar.High = 1.102, 1.103
	if bar.TouchesEMA() {
		t.Error("EMA below range should not be a touch")
	}
}
