package backtest

import (
	"math"
	"time"

	"github.com/yourusername/mean-reverter/internal/models"
)

// Stats represents aggregate performance statistics for a setup collection
type Stats struct {
	Setups int `json:"setups"`
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Open   int `json:"open"`

	WinRate     float64 `json:"win_rate"` // 0..1 fraction of closed trades
	AvgWinPips  float64 `json:"avg_win_pips"`
	AvgLossPips float64 `json:"avg_loss_pips"` // absolute value
	TotalPips   float64 `json:"total_pips"`

	// Expectancy is the direct estimator (total pips over closed trades);
	// ExpectancyProb the probabilistic one (winRate*avgWin - lossRate*avgLoss).
	Expectancy     float64 `json:"expectancy"`
	ExpectancyProb float64 `json:"expectancy_prob"`

	ProfitFactor  float64   `json:"-"` // +Inf when wins exist and losses sum to zero
	TradesPerYear float64   `json:"trades_per_year"`
	MaxDrawdown   float64   `json:"max_drawdown"` // most negative single loss, in pips
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
}

// Closed returns the number of trades with a terminal outcome.
func (s Stats) Closed() int {
	return s.Wins + s.Losses
}

// CalculateStats derives aggregate statistics from a setup collection over
// the given analysis window. Degenerate inputs (no setups, no closed trades,
// no losses) resolve to sentinel values rather than errors.
func CalculateStats(setups []*models.Setup, start, end time.Time) Stats {
	stats := Stats{
		Setups:    len(setups),
		StartDate: start,
		EndDate:   end,
	}
	if len(setups) == 0 {
		return stats
	}

	winSum, lossSum := 0.0, 0.0
	for _, s := range setups {
		switch s.Outcome {
		case models.OutcomeWin:
			stats.Wins++
			winSum += s.ResultPips
		case models.OutcomeLoss:
			stats.Losses++
			lossSum += s.ResultPips
			if s.ResultPips < stats.MaxDrawdown {
				stats.MaxDrawdown = s.ResultPips
			}
		case models.OutcomeOpen:
			stats.Open++
		}
	}

	if stats.Wins > 0 {
		stats.AvgWinPips = winSum / float64(stats.Wins)
	}
	if stats.Losses > 0 {
		stats.AvgLossPips = math.Abs(lossSum / float64(stats.Losses))
	}
	stats.TotalPips = winSum + lossSum
	stats.WinRate = calculateWinRate(stats.Wins, stats.Closed())
	stats.Expectancy = calculateExpectancy(stats.TotalPips, stats.Closed())
	stats.ExpectancyProb = stats.WinRate*stats.AvgWinPips - (1-stats.WinRate)*stats.AvgLossPips
	stats.ProfitFactor = calculateProfitFactor(winSum, lossSum, stats.Closed())
	stats.TradesPerYear = calculateTradesPerYear(stats.Closed(), start, end)

	return stats
}

func calculateWinRate(wins, closed int) float64 {
	if closed == 0 {
		return 0
	}
	return float64(wins) / float64(closed)
}

func calculateExpectancy(totalPips float64, closed int) float64 {
	if closed == 0 {
		return 0
	}
	return totalPips / float64(closed)
}

func calculateProfitFactor(winSum, lossSum float64, closed int) float64 {
	if closed == 0 {
		return 0
	}
	if lossSum == 0 {
		if winSum > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return winSum / math.Abs(lossSum)
}

func calculateTradesPerYear(closed int, start, end time.Time) float64 {
	windowDays := end.Sub(start).Hours() / 24
	if windowDays <= 0 {
		return 0
	}
	return float64(closed) / (windowDays / 365.25)
}
