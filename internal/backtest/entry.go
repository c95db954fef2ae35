package backtest

import (
	"github.com/yourusername/mean-reverter/internal/models"
)

// FindEntry scans forward from a touch for the first bar that breaches the
// entry band in the given direction. The scan starts minCandlesAway bars
// after the touch (at least one bar after it). A bar that re-touches the EMA
// cancels the search for this touch and direction. When the directional
// filter is enabled, bars with a DI spread at or above the threshold are
// skipped without cancelling the search.
func FindEntry(series *models.BarSeries, touchIdx int, direction models.Direction, cfg DetectionConfig) (int, bool) {
	start := touchIdx + cfg.MinCandlesAway
	if start <= touchIdx {
		start = touchIdx + 1
	}

	for i := start; i < series.Len(); i++ {
		bar := series.At(i)

		if bar.TouchesEMA() {
			return 0, false
		}
		if cfg.UseDirectionalFilter && bar.DISpread() >= cfg.DirectionalSpreadMax {
			continue
		}

		switch direction {
		case models.DirectionLong:
			if bar.Low <= bar.LowerEntry {
				return i, true
			}
		case models.DirectionShort:
			if bar.High >= bar.UpperEntry {
				return i, true
			}
		}
	}
	return 0, false
}
