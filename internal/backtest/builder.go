package backtest

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/mean-reverter/internal/models"
)

// BuildSetup assembles the immutable trade record for a touch/entry pair:
// prices from the entry bar's band levels, distance and ratio figures, the
// indicator snapshot at entry and the simulated outcome.
func BuildSetup(series *models.BarSeries, touchIdx, entryIdx int, direction models.Direction, cfg DetectionConfig, runID uuid.UUID) *models.Setup {
	entryBar := series.At(entryIdx)

	var entryPrice, stopPrice float64
	if direction == models.DirectionLong {
		entryPrice = entryBar.LowerEntry
		stopPrice = entryBar.LowerStop
	} else {
		entryPrice = entryBar.UpperEntry
		stopPrice = entryBar.UpperStop
	}
	tpReference := entryBar.EMA

	stopDistance := math.Abs(entryPrice - stopPrice)
	tpDistance := math.Abs(entryPrice - tpReference)
	rrEstimated := 0.0
	if stopDistance > 0 {
		rrEstimated = tpDistance / stopDistance
	}

	exit := SimulateOutcome(series, entryIdx, direction, entryPrice, stopPrice, cfg.PipFactor)

	setup := &models.Setup{
		ID:             uuid.New(),
		RunID:          runID,
		Symbol:         series.Symbol,
		Direction:      direction,
		TouchTime:      series.At(touchIdx).Time,
		EntryTime:      entryBar.Time,
		EntryPrice:     entryPrice,
		StopPrice:      stopPrice,
		TPReference:    tpReference,
		StopPips:       stopDistance * cfg.PipFactor,
		EstTPPips:      tpDistance * cfg.PipFactor,
		ResultPips:     exit.Pips,
		RREstimated:    rrEstimated,
		Outcome:        exit.Outcome,
		CandlesToEntry: entryIdx - touchIdx,
		BarsHeld:       exit.BarsHeld,
		ADX:            entryBar.ADX,
		PlusDI:         entryBar.PlusDI,
		MinusDI:        entryBar.MinusDI,
		RSI:            entryBar.RSI,
		ATR:            entryBar.ATR,
		CreatedAt:      time.Now().UTC(),
	}

	if exit.Outcome != models.OutcomeOpen {
		exitTime := series.At(exit.ExitIdx).Time
		exitPrice := exit.ExitPrice
		setup.ExitTime = &exitTime
		setup.ExitPrice = &exitPrice
		if stopDistance > 0 {
			rr := math.Abs(exit.Pips) / (stopDistance * cfg.PipFactor)
			setup.RRRealized = &rr
		}
	}

	return setup
}
