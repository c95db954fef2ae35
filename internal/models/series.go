package models

import (
	"fmt"
	"time"
)

// BarSeries is an ordered, validated sequence of bars. Scan indices produced
// by the detection pipeline are positions into this array and are never
// re-derived by timestamp lookup.
type BarSeries struct {
	Symbol    string
	Timeframe string
	bars      []Bar
}

// NewBarSeries validates ordering and indicator completeness and wraps the
// bars into a series. The slice is retained, not copied.
func NewBarSeries(symbol, timeframe string, bars []Bar) (*BarSeries, error) {
	if len(bars) == 0 {
		return nil, ErrEmptySeries
	}
	for i := range bars {
		if bars[i].Time.IsZero() {
			return nil, fmt.Errorf("bar %d: %w", i, ErrMissingTimestamp)
		}
		if i > 0 && !bars[i].Time.After(bars[i-1].Time) {
			return nil, fmt.Errorf("bar %d (%s): %w", i, bars[i].Time.Format(time.RFC3339), ErrUnorderedSeries)
		}
		if bars[i].EMA == 0 || bars[i].ATR == 0 {
			return nil, fmt.Errorf("bar %d (%s): %w", i, bars[i].Time.Format(time.RFC3339), ErrIncompleteIndicators)
		}
	}
	return &BarSeries{Symbol: symbol, Timeframe: timeframe, bars: bars}, nil
}

// Len returns the number of bars in the series.
func (s *BarSeries) Len() int {
	return len(s.bars)
}

// At returns the bar at index i.
func (s *BarSeries) At(i int) *Bar {
	return &s.bars[i]
}

// Bars returns the underlying bar slice. Callers must not mutate it.
func (s *BarSeries) Bars() []Bar {
	return s.bars
}

// First and Last return the boundary bars of the series.
func (s *BarSeries) First() *Bar { return &s.bars[0] }
func (s *BarSeries) Last() *Bar  { return &s.bars[len(s.bars)-1] }

// WindowIndices returns the indices of bars whose timestamps fall inside the
// inclusive [start, end] window.
func (s *BarSeries) WindowIndices(start, end time.Time) []int {
	indices := make([]int, 0, len(s.bars))
	for i := range s.bars {
		t := s.bars[i].Time
		if t.Before(start) || t.After(end) {
			continue
		}
		indices = append(indices, i)
	}
	return indices
}

// InWindow reports whether the bar at index i lies inside [start, end].
func (s *BarSeries) InWindow(i int, start, end time.Time) bool {
	t := s.bars[i].Time
	return !t.Before(start) && !t.After(end)
}

// WithEntryMultiplier returns a copy of the series with the entry bands
// recomputed at the given multiplier. Stop bands are left untouched.
func (s *BarSeries) WithEntryMultiplier(multiplier float64) *BarSeries {
	bars := make([]Bar, len(s.bars))
	copy(bars, s.bars)
	for i := range bars {
		bars[i].UpperEntry = bars[i].EMA + bars[i].ATR*multiplier
		bars[i].LowerEntry = bars[i].EMA - bars[i].ATR*multiplier
	}
	return &BarSeries{Symbol: s.Symbol, Timeframe: s.Timeframe, bars: bars}
}
