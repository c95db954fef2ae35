package backtest

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/yourusername/mean-reverter/internal/models"
)

// StatusLabel classifies a sweep row by expectancy and profit factor.
func StatusLabel(expectancy, profitFactor float64) string {
	switch {
	case expectancy > 8 && profitFactor > 1.8:
		return "EXCELLENT"
	case expectancy > 5 && profitFactor > 1.5:
		return "GOOD"
	case expectancy > 2 && profitFactor > 1.2:
		return "MARGINAL"
	default:
		return "POOR"
	}
}

// GenerateRunReport formats one detection run for terminal output
func GenerateRunReport(result *RunResult) string {
	var builder strings.Builder
	builder.WriteString("Detection Report\n")
	builder.WriteString("================\n")
	builder.WriteString(fmt.Sprintf("Window: %s to %s\n",
		result.Config.StartDate.Format("2006-01-02"), result.Config.EndDate.Format("2006-01-02")))
	builder.WriteString(fmt.Sprintf("Entry Multiplier: %.2f (stop %.2f)\n",
		result.Config.EntryMultiplier, result.Config.StopMultiplier))
	builder.WriteString(fmt.Sprintf("Setups: %d (%d wins, %d losses, %d open)\n",
		result.Stats.Setups, result.Stats.Wins, result.Stats.Losses, result.Stats.Open))
	builder.WriteString(fmt.Sprintf("Win Rate: %.2f%%\n", result.Stats.WinRate*100))
	builder.WriteString(fmt.Sprintf("Total Pips: %+.1f\n", result.Stats.TotalPips))
	builder.WriteString(fmt.Sprintf("Expectancy: %+.2f pips/trade (probabilistic %+.2f)\n",
		result.Stats.Expectancy, result.Stats.ExpectancyProb))
	builder.WriteString(fmt.Sprintf("Profit Factor: %s\n", formatProfitFactor(result.Stats.ProfitFactor)))
	builder.WriteString(fmt.Sprintf("Trades/Year: %.1f\n", result.Stats.TradesPerYear))
	builder.WriteString(fmt.Sprintf("Max Drawdown: %.1f pips\n", result.Stats.MaxDrawdown))
	return builder.String()
}

// GenerateSweepReport formats the ranked sweep table and the best-versus-
// baseline comparison for terminal output
func GenerateSweepReport(report *SweepReport) string {
	var builder strings.Builder
	builder.WriteString("Multiplier Sweep Report\n")
	builder.WriteString("=======================\n")
	builder.WriteString(fmt.Sprintf("%-5s %-6s %-7s %-7s %-8s %-8s %-8s %-6s %-7s %s\n",
		"Rank", "ATR", "Trades", "Win%", "AvgWin", "AvgLoss", "Expect", "PF", "T/Year", "Status"))
	for _, r := range report.Results {
		builder.WriteString(fmt.Sprintf("%-5d %-6.2f %-7d %-7.1f %-8.1f %-8.1f %-8.2f %-6s %-7.1f %s\n",
			r.Rank, r.Multiplier, r.Trades, r.WinRate*100, r.AvgWinPips, r.AvgLossPips,
			r.Expectancy, formatProfitFactor(r.ProfitFactor), r.TradesPerYear,
			StatusLabel(r.Expectancy, r.ProfitFactor)))
	}

	for _, f := range report.Failures {
		builder.WriteString(fmt.Sprintf("skipped %.2f: %v\n", f.Multiplier, f.Err))
	}

	if report.Best != nil {
		builder.WriteString(fmt.Sprintf("\nBest Multiplier: %.2f (expectancy %+.2f, win rate %.1f%%)\n",
			report.Best.Multiplier, report.Best.Expectancy, report.Best.WinRate*100))
	}
	if report.Baseline != nil {
		builder.WriteString(fmt.Sprintf("Baseline %.2f: expectancy %+.2f, win rate %.1f%%\n",
			report.Baseline.Multiplier, report.Baseline.Expectancy, report.Baseline.WinRate*100))
		builder.WriteString(fmt.Sprintf("Improvement: %+.1f%% expectancy, %+.1f win-rate points\n",
			report.ExpectancyImprovement, report.WinRateDelta))
	}
	return builder.String()
}

// ExportSetupsCSV writes the setup collection as CSV rows
func ExportSetupsCSV(setups []*models.Setup, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"symbol", "direction", "touch_time", "entry_time", "exit_time",
		"entry_price", "stop_price", "tp_reference", "exit_price",
		"stop_pips", "est_tp_pips", "result_pips", "rr_estimated", "rr_realized",
		"outcome", "candles_to_entry", "bars_held", "adx", "plus_di", "minus_di", "rsi", "atr",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, s := range setups {
		row := []string{
			s.Symbol,
			string(s.Direction),
			s.TouchTime.Format("2006-01-02 15:04:05"),
			s.EntryTime.Format("2006-01-02 15:04:05"),
			formatNullableTime(s.ExitTime),
			formatFloat(s.EntryPrice, 5),
			formatFloat(s.StopPrice, 5),
			formatFloat(s.TPReference, 5),
			formatNullableFloat(s.ExitPrice, 5),
			formatFloat(s.StopPips, 1),
			formatFloat(s.EstTPPips, 1),
			formatFloat(s.ResultPips, 1),
			formatFloat(s.RREstimated, 2),
			formatNullableFloat(s.RRRealized, 2),
			string(s.Outcome),
			strconv.Itoa(s.CandlesToEntry),
			strconv.Itoa(s.BarsHeld),
			formatFloat(s.ADX, 2),
			formatFloat(s.PlusDI, 2),
			formatFloat(s.MinusDI, 2),
			formatFloat(s.RSI, 2),
			formatFloat(s.ATR, 5),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// ExportSweepCSV writes the ranked sweep rows as CSV
func ExportSweepCSV(results []*models.SweepResult, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"rank", "multiplier", "trades", "wins", "losses", "open", "win_rate",
		"avg_win_pips", "avg_loss_pips", "total_pips", "expectancy",
		"expectancy_prob", "profit_factor", "trades_per_year", "max_drawdown", "status",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, r := range results {
		row := []string{
			strconv.Itoa(r.Rank),
			formatFloat(r.Multiplier, 2),
			strconv.Itoa(r.Trades),
			strconv.Itoa(r.Wins),
			strconv.Itoa(r.Losses),
			strconv.Itoa(r.Open),
			formatFloat(r.WinRate, 4),
			formatFloat(r.AvgWinPips, 2),
			formatFloat(r.AvgLossPips, 2),
			formatFloat(r.TotalPips, 2),
			formatFloat(r.Expectancy, 4),
			formatFloat(r.ExpectancyProb, 4),
			formatProfitFactor(r.ProfitFactor),
			formatFloat(r.TradesPerYear, 2),
			formatFloat(r.MaxDrawdown, 2),
			StatusLabel(r.Expectancy, r.ProfitFactor),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func formatProfitFactor(pf float64) string {
	if math.IsInf(pf, 1) {
		return "inf"
	}
	return strconv.FormatFloat(pf, 'f', 2, 64)
}

func formatFloat(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}

func formatNullableFloat(v *float64, prec int) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v, prec)
}

func formatNullableTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}
