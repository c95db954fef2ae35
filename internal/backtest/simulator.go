package backtest

import (
	"github.com/yourusername/mean-reverter/internal/models"
)

// TradeExit is the result of simulating a trade forward from its entry bar.
// ExitIdx is -1 while the trade is still open.
type TradeExit struct {
	Outcome   models.Outcome
	ExitIdx   int
	ExitPrice float64
	Pips      float64
	BarsHeld  int
}

// SimulateOutcome walks forward from the entry bar itself until the stop or
// the EMA take-profit fires, or data runs out. The stop is checked first
// within each bar, so a bar satisfying both conditions scores as a LOSS.
func SimulateOutcome(series *models.BarSeries, entryIdx int, direction models.Direction, entryPrice, stopPrice, pipFactor float64) TradeExit {
	for i := entryIdx; i < series.Len(); i++ {
		bar := series.At(i)

		if direction == models.DirectionLong {
			if bar.Low <= stopPrice {
				return TradeExit{
					Outcome:   models.OutcomeLoss,
					ExitIdx:   i,
					ExitPrice: stopPrice,
					Pips:      (stopPrice - entryPrice) * pipFactor,
					BarsHeld:  i - entryIdx,
				}
			}
			if bar.TouchesEMA() {
				return TradeExit{
					Outcome:   models.OutcomeWin,
					ExitIdx:   i,
					ExitPrice: bar.EMA,
					Pips:      (bar.EMA - entryPrice) * pipFactor,
					BarsHeld:  i - entryIdx,
				}
			}
			continue
		}

		// SHORT
		if bar.High >= stopPrice {
			return TradeExit{
				Outcome:   models.OutcomeLoss,
				ExitIdx:   i,
				ExitPrice: stopPrice,
				Pips:      (entryPrice - stopPrice) * pipFactor,
				BarsHeld:  i - entryIdx,
			}
		}
		if bar.TouchesEMA() {
			return TradeExit{
				Outcome:   models.OutcomeWin,
				ExitIdx:   i,
				ExitPrice: bar.EMA,
				Pips:      (entryPrice - bar.EMA) * pipFactor,
				BarsHeld:  i - entryIdx,
			}
		}
	}

	return TradeExit{
		Outcome:  models.OutcomeOpen,
		ExitIdx:  -1,
		BarsHeld: series.Len() - entryIdx,
	}
}
