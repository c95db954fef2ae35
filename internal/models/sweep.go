package models

import (
	"time"

	"github.com/google/uuid"
)

// SweepResult is one row of a multiplier sweep: the aggregate performance of
// the detection pipeline run with a single entry multiplier.
type SweepResult struct {
	ID    uuid.UUID `db:"id" json:"id"`
	RunID uuid.UUID `db:"run_id" json:"run_id"`

	Multiplier float64 `db:"multiplier" json:"multiplier"`

	Trades int `db:"trades" json:"trades"`
	Wins   int `db:"wins" json:"wins"`
	Losses int `db:"losses" json:"losses"`
	Open   int `db:"open" json:"open"`

	WinRate        float64 `db:"win_rate" json:"win_rate"` // 0..1 fraction
	AvgWinPips     float64 `db:"avg_win_pips" json:"avg_win_pips"`
	AvgLossPips    float64 `db:"avg_loss_pips" json:"avg_loss_pips"` // absolute value
	TotalPips      float64 `db:"total_pips" json:"total_pips"`
	Expectancy     float64 `db:"expectancy" json:"expectancy"`
	ExpectancyProb float64 `db:"expectancy_prob" json:"expectancy_prob"`
	ProfitFactor   float64 `db:"profit_factor" json:"-"` // may be +Inf
	TradesPerYear  float64 `db:"trades_per_year" json:"trades_per_year"`
	MaxDrawdown    float64 `db:"max_drawdown" json:"max_drawdown"` // most negative single loss

	Rank      int       `db:"rank" json:"rank"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Candle is a raw OHLCV sample as delivered by a market-data source, before
// the indicator stage runs.
type Candle struct {
	Symbol    string    `db:"symbol" json:"symbol"`
	Timeframe string    `db:"timeframe" json:"timeframe"`
	Time      time.Time `db:"candle_time" json:"time"`
	Open      float64   `db:"open" json:"open"`
	High      float64   `db:"high" json:"high"`
	Low       float64   `db:"low" json:"low"`
	Close     float64   `db:"close" json:"close"`
	Volume    float64   `db:"volume" json:"volume"`
}
