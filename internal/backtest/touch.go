package backtest

import (
	"time"

	"github.com/yourusername/mean-reverter/internal/models"
)

// FindTouches returns the indices of bars inside the inclusive analysis
// window whose range contains the EMA. Indices address the full series so
// later scans can walk past the window boundary.
func FindTouches(series *models.BarSeries, start, end time.Time) []int {
	touches := make([]int, 0)
	for _, i := range series.WindowIndices(start, end) {
		if series.At(i).TouchesEMA() {
			touches = append(touches, i)
		}
	}
	return touches
}

// ValidateDrift checks that price stays away from the EMA for at least
// minCandlesAway bars after the touch. A re-touch before the threshold
// invalidates the touch; running out of data counts as valid with whatever
// distance was reached. Returns validity and the bars observed away.
func ValidateDrift(series *models.BarSeries, touchIdx, minCandlesAway int) (bool, int) {
	if minCandlesAway <= 0 {
		return true, 0
	}
	observed := 0
	for i := touchIdx + 1; i < series.Len(); i++ {
		if series.At(i).TouchesEMA() {
			return observed >= minCandlesAway, observed
		}
		observed++
		if observed >= minCandlesAway {
			return true, observed
		}
	}
	return true, observed
}
