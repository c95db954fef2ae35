package models

import (
	"time"

	"github.com/google/uuid"
)

// Direction represents the side of a simulated trade (LONG or SHORT)
type Direction string

const (
	DirectionLong  Direction = "LONG"
	DirectionShort Direction = "SHORT"
)

// Outcome represents the result of a simulated trade
type Outcome string

const (
	OutcomeWin  Outcome = "WIN"
	OutcomeLoss Outcome = "LOSS"
	OutcomeOpen Outcome = "OPEN"
)

// Setup is one detected and simulated trade. Created once by the setup
// builder and immutable thereafter. Exit fields are set iff the outcome is
// closed (WIN or LOSS).
type Setup struct {
	ID    uuid.UUID `db:"id" json:"id"`
	RunID uuid.UUID `db:"run_id" json:"run_id"`

	Symbol    string    `db:"symbol" json:"symbol"`
	Direction Direction `db:"direction" json:"direction" validate:"required,oneof=LONG SHORT"`

	TouchTime time.Time  `db:"touch_time" json:"touch_time" validate:"required"`
	EntryTime time.Time  `db:"entry_time" json:"entry_time" validate:"required"`
	ExitTime  *time.Time `db:"exit_time" json:"exit_time"`

	EntryPrice  float64  `db:"entry_price" json:"entry_price"`
	StopPrice   float64  `db:"stop_price" json:"stop_price"`
	TPReference float64  `db:"tp_reference" json:"tp_reference"` // EMA at the entry bar
	ExitPrice   *float64 `db:"exit_price" json:"exit_price"`

	StopPips    float64 `db:"stop_pips" json:"stop_pips"`
	EstTPPips   float64 `db:"est_tp_pips" json:"est_tp_pips"`
	ResultPips  float64 `db:"result_pips" json:"result_pips"`
	RREstimated float64 `db:"rr_estimated" json:"rr_estimated"`
	RRRealized  *float64 `db:"rr_realized" json:"rr_realized"`

	Outcome        Outcome `db:"outcome" json:"outcome" validate:"required,oneof=WIN LOSS OPEN"`
	CandlesToEntry int     `db:"candles_to_entry" json:"candles_to_entry"`
	BarsHeld       int     `db:"bars_held" json:"bars_held"`

	// Indicator snapshot at the entry bar
	ADX     float64 `db:"adx" json:"adx"`
	PlusDI  float64 `db:"plus_di" json:"plus_di"`
	MinusDI float64 `db:"minus_di" json:"minus_di"`
	RSI     float64 `db:"rsi" json:"rsi"`
	ATR     float64 `db:"atr" json:"atr"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// IsClosed reports whether the trade reached a terminal outcome.
func (s *Setup) IsClosed() bool {
	return s.Outcome == OutcomeWin || s.Outcome == OutcomeLoss
}

// IsWin reports whether the trade closed at take-profit.
func (s *Setup) IsWin() bool {
	return s.Outcome == OutcomeWin
}
