package models

import (
	"math"
	"time"
)

// Bar is one fixed-interval price sample enriched with indicator values and
// ATR band levels. Bars are populated once by the indicator stage and never
// mutated afterwards.
type Bar struct {
	Time  time.Time `db:"bar_time" json:"time"`
	Open  float64   `db:"open" json:"open"`
	High  float64   `db:"high" json:"high"`
	Low   float64   `db:"low" json:"low"`
	Close float64   `db:"close" json:"close"`

	EMA     float64 `db:"ema" json:"ema"`
	ATR     float64 `db:"atr" json:"atr"`
	ADX     float64 `db:"adx" json:"adx"`
	PlusDI  float64 `db:"plus_di" json:"plus_di"`
	MinusDI float64 `db:"minus_di" json:"minus_di"`
	RSI     float64 `db:"rsi" json:"rsi"`

	// Band levels: EMA ± ATR·multiplier. Entry bands use the swept
	// multiplier, stop bands the fixed stop multiplier.
	UpperEntry float64 `db:"upper_entry" json:"upper_entry"`
	LowerEntry float64 `db:"lower_entry" json:"lower_entry"`
	UpperStop  float64 `db:"upper_stop" json:"upper_stop"`
	LowerStop  float64 `db:"lower_stop" json:"lower_stop"`
}

// TouchesEMA reports whether the bar's range contains its EMA value. A bar
// that gaps through the average still counts as a touch.
func (b *Bar) TouchesEMA() bool {
	return b.Low <= b.EMA && b.EMA <= b.High
}

// DISpread returns the absolute spread between the directional indicators.
func (b *Bar) DISpread() float64 {
	return math.Abs(b.PlusDI - b.MinusDI)
}
