package backtest

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/mean-reverter/internal/models"
)

var testStart = time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

// testBar builds a bar with constant EMA 1.1000, ATR 0.0010 and bands at
// entry multiplier 2.0 / stop multiplier 3.0.
func testBar(i int, low, high float64) models.Bar {
	const ema, atr = 1.1000, 0.0010
	return models.Bar{
		Time:       testStart.Add(time.Duration(i) * time.Hour),
		Open:       (low + high) / 2,
		High:       high,
		Low:        low,
		Close:      (low + high) / 2,
		EMA:        ema,
		ATR:        atr,
		ADX:        20,
		PlusDI:     12,
		MinusDI:    10,
		RSI:        50,
		UpperEntry: ema + atr*2.0,
		LowerEntry: ema - atr*2.0,
		UpperStop:  ema + atr*3.0,
		LowerStop:  ema - atr*3.0,
	}
}

func testSeries(t *testing.T, bars []models.Bar) *models.BarSeries {
	t.Helper()
	series, err := models.NewBarSeries("EURUSD", "H1", bars)
	if err != nil {
		t.Fatalf("failed to build series: %v", err)
	}
	return series
}

func closeTo(a, b float64) bool {
	diff := a - b
	return diff < 1e-9 && diff > -1e-9
}

func testConfig() DetectionConfig {
	return DetectionConfig{
		StartDate:       testStart.Add(-time.Hour),
		EndDate:         testStart.Add(24 * time.Hour),
		EntryMultiplier: 2.0,
		StopMultiplier:  3.0,
		PipFactor:       10000,
	}
}

func TestFindTouches(t *testing.T) {
	series := testSeries(t, []models.Bar{
		testBar(0, 1.0990, 1.1010), // touch: low <= ema <= high
		testBar(1, 1.1005, 1.1015), // above EMA
		testBar(2, 1.0980, 1.0995), // below EMA
		testBar(3, 1.1000, 1.1020), // touch at the boundary
	})

	touches := FindTouches(series, testStart.Add(-time.Hour), testStart.Add(24*time.Hour))
	if len(touches) != 2 || touches[0] != 0 || touches[1] != 3 {
		t.Fatalf("expected touches [0 3], got %v", touches)
	}
	for _, i := range touches {
		bar := series.At(i)
		if !(bar.Low <= bar.EMA && bar.EMA <= bar.High) {
			t.Errorf("bar %d flagged as touch but condition fails", i)
		}
	}
}

func TestFindTouchesRespectsWindow(t *testing.T) {
	series := testSeries(t, []models.Bar{
		testBar(0, 1.0990, 1.1010),
		testBar(1, 1.0990, 1.1010),
		testBar(2, 1.0990, 1.1010),
	})
	touches := FindTouches(series, testStart.Add(time.Hour), testStart.Add(time.Hour))
	if len(touches) != 1 || touches[0] != 1 {
		t.Fatalf("expected only the windowed touch, got %v", touches)
	}
}

func TestValidateDriftRetouchTooSoon(t *testing.T) {
	series := testSeries(t, []models.Bar{
		testBar(0, 1.0990, 1.1010), // touch
		testBar(1, 1.0975, 1.0985), // away
		testBar(2, 1.0995, 1.1005), // re-touch after 1 bar
		testBar(3, 1.0975, 1.0985),
	})
	valid, observed := ValidateDrift(series, 0, 3)
	if valid {
		t.Error("expected re-touch before threshold to invalidate the touch")
	}
	if observed != 1 {
		t.Errorf("expected 1 bar observed away, got %d", observed)
	}
}

func TestValidateDriftSeriesEndCountsAsValid(t *testing.T) {
	series := testSeries(t, []models.Bar{
		testBar(0, 1.0990, 1.1010),
		testBar(1, 1.0975, 1.0985),
	})
	valid, observed := ValidateDrift(series, 0, 5)
	if !valid {
		t.Error("series end before threshold should count as valid")
	}
	if observed != 1 {
		t.Errorf("expected 1 bar observed, got %d", observed)
	}
}

func TestValidateDriftDisabled(t *testing.T) {
	series := testSeries(t, []models.Bar{testBar(0, 1.0990, 1.1010)})
	if valid, _ := ValidateDrift(series, 0, 0); !valid {
		t.Error("zero threshold should always validate")
	}
}

func TestFindEntryRetouchCancels(t *testing.T) {
	series := testSeries(t, []models.Bar{
		testBar(0, 1.0990, 1.1010), // touch
		testBar(1, 1.0995, 1.1005), // re-touch cancels
		testBar(2, 1.0975, 1.0985), // band breach, but unreachable
	})
	if _, found := FindEntry(series, 0, models.DirectionLong, testConfig()); found {
		t.Error("re-touch should cancel the entry search")
	}
}

func TestFindEntryBothDirectionsIndependent(t *testing.T) {
	series := testSeries(t, []models.Bar{
		testBar(0, 1.0990, 1.1010), // touch
		testBar(1, 1.0975, 1.0985), // breaches lower entry band (1.0980)
		testBar(2, 1.1015, 1.1025), // breaches upper entry band (1.1020)
	})
	cfg := testConfig()

	longIdx, found := FindEntry(series, 0, models.DirectionLong, cfg)
	if !found || longIdx != 1 {
		t.Errorf("expected LONG entry at index 1, got %d found=%v", longIdx, found)
	}
	shortIdx, found := FindEntry(series, 0, models.DirectionShort, cfg)
	if !found || shortIdx != 2 {
		t.Errorf("expected SHORT entry at index 2, got %d found=%v", shortIdx, found)
	}
}

func TestFindEntryMinCandlesAwayOffset(t *testing.T) {
	series := testSeries(t, []models.Bar{
		testBar(0, 1.0990, 1.1010), // touch
		testBar(1, 1.0975, 1.0985), // breach, but inside the offset
		testBar(2, 1.0975, 1.0985),
		testBar(3, 1.0975, 1.0985), // first scanned bar
	})
	cfg := testConfig()
	cfg.MinCandlesAway = 3

	idx, found := FindEntry(series, 0, models.DirectionLong, cfg)
	if !found || idx != 3 {
		t.Errorf("expected entry at offset index 3, got %d found=%v", idx, found)
	}
}

// Worked example: LONG entry at 1.0980, stop at 1.0970, bar 3 low 1.0968
// hits the stop for -10 pips.
func TestScenarioLongStopLoss(t *testing.T) {
	series := testSeries(t, []models.Bar{
		testBar(0, 1.0990, 1.1010), // touch
		testBar(1, 1.0975, 1.0985), // LONG entry at lower band 1.0980
		testBar(2, 1.0968, 1.0990), // stop 1.0970 triggers
		testBar(3, 1.0985, 1.0995),
		testBar(4, 1.0985, 1.0995),
	})

	engine, err := NewEngine(testConfig(), nil)
	if err != nil {
		t.Fatal(err)
	}
	result, err := engine.Run(series)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Setups) != 1 {
		t.Fatalf("expected 1 setup, got %d", len(result.Setups))
	}

	s := result.Setups[0]
	if s.Direction != models.DirectionLong {
		t.Errorf("expected LONG, got %s", s.Direction)
	}
	if s.Outcome != models.OutcomeLoss {
		t.Errorf("expected LOSS, got %s", s.Outcome)
	}
	if !closeTo(s.EntryPrice, 1.0980) {
		t.Errorf("expected entry 1.0980, got %.5f", s.EntryPrice)
	}
	if !closeTo(s.StopPrice, 1.0970) {
		t.Errorf("expected stop 1.0970, got %.5f", s.StopPrice)
	}
	if diff := s.ResultPips - (-10.0); diff > 1e-6 || diff < -1e-6 {
		t.Errorf("expected -10.0 pips, got %.4f", s.ResultPips)
	}
	if s.ExitTime == nil || s.ExitPrice == nil {
		t.Fatal("closed setup must carry exit fields")
	}
	if !closeTo(*s.ExitPrice, 1.0970) {
		t.Errorf("expected exit at stop price, got %.5f", *s.ExitPrice)
	}
	if s.BarsHeld != 1 {
		t.Errorf("expected 1 bar held, got %d", s.BarsHeld)
	}
}

// Worked example: same entry but bar 3 touches the EMA for +20 pips.
func TestScenarioLongTakeProfit(t *testing.T) {
	series := testSeries(t, []models.Bar{
		testBar(0, 1.0990, 1.1010), // touch
		testBar(1, 1.0975, 1.0985), // LONG entry at 1.0980
		testBar(2, 1.0985, 1.1005), // touches EMA 1.1000
		testBar(3, 1.0985, 1.0995),
		testBar(4, 1.0985, 1.0995),
	})

	engine, err := NewEngine(testConfig(), nil)
	if err != nil {
		t.Fatal(err)
	}
	result, err := engine.Run(series)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Setups) != 1 {
		t.Fatalf("expected 1 setup, got %d", len(result.Setups))
	}

	s := result.Setups[0]
	if s.Outcome != models.OutcomeWin {
		t.Errorf("expected WIN, got %s", s.Outcome)
	}
	if s.ExitPrice == nil || !closeTo(*s.ExitPrice, 1.1000) {
		t.Fatalf("expected exit at EMA 1.1000, got %v", s.ExitPrice)
	}
	if diff := s.ResultPips - 20.0; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("expected +20.0 pips, got %.4f", s.ResultPips)
	}
}

// Worked example: directional filter skips a qualifying bar whose DI spread
// is at the threshold, and the next qualifying bar becomes the entry.
func TestScenarioDirectionalFilterSkipsBar(t *testing.T) {
	filtered := testBar(1, 1.0975, 1.0985)
	filtered.PlusDI = 30
	filtered.MinusDI = 10 // spread 20 >= 15, skipped

	series := testSeries(t, []models.Bar{
		testBar(0, 1.0990, 1.1010), // touch
		filtered,
		testBar(2, 1.0974, 1.0985), // spread 2, becomes entry
		testBar(3, 1.0985, 1.0995),
		testBar(4, 1.0985, 1.0995),
	})

	cfg := testConfig()
	cfg.UseDirectionalFilter = true
	cfg.DirectionalSpreadMax = 15

	idx, found := FindEntry(series, 0, models.DirectionLong, cfg)
	if !found {
		t.Fatal("expected an entry despite the filtered bar")
	}
	if idx != 2 {
		t.Errorf("expected entry at index 2, got %d", idx)
	}
}

// A bar satisfying both the stop and the EMA-touch condition scores as LOSS.
func TestStopPrecedenceOverTakeProfit(t *testing.T) {
	series := testSeries(t, []models.Bar{
		testBar(0, 1.0990, 1.1010),
		testBar(1, 1.0975, 1.0985), // entry at 1.0980
		testBar(2, 1.0965, 1.1005), // hits stop 1.0970 AND touches EMA
	})

	exit := SimulateOutcome(series, 1, models.DirectionLong, 1.0980, 1.0970, 10000)
	if exit.Outcome != models.OutcomeLoss {
		t.Errorf("stop must take precedence, got %s", exit.Outcome)
	}
}

func TestSameBarExit(t *testing.T) {
	// The entry bar itself reaches the stop level.
	series := testSeries(t, []models.Bar{
		testBar(0, 1.0990, 1.1010),
		testBar(1, 1.0965, 1.0985), // breaches entry band and stop in one bar
	})

	exit := SimulateOutcome(series, 1, models.DirectionLong, 1.0980, 1.0970, 10000)
	if exit.Outcome != models.OutcomeLoss {
		t.Fatalf("expected same-bar LOSS, got %s", exit.Outcome)
	}
	if exit.BarsHeld != 0 {
		t.Errorf("same-bar exit should hold 0 bars, got %d", exit.BarsHeld)
	}
}

func TestOpenOutcomeAtSeriesEnd(t *testing.T) {
	series := testSeries(t, []models.Bar{
		testBar(0, 1.0990, 1.1010),
		testBar(1, 1.0975, 1.0985),
		testBar(2, 1.0975, 1.0985),
		testBar(3, 1.0975, 1.0985),
	})

	exit := SimulateOutcome(series, 1, models.DirectionLong, 1.0980, 1.0970, 10000)
	if exit.Outcome != models.OutcomeOpen {
		t.Fatalf("expected OPEN, got %s", exit.Outcome)
	}
	if exit.Pips != 0 {
		t.Errorf("open trades carry zero pips, got %f", exit.Pips)
	}
	if exit.BarsHeld != 3 {
		t.Errorf("expected bars held to span to series end (3), got %d", exit.BarsHeld)
	}
	if exit.ExitIdx != -1 {
		t.Errorf("open trades have no exit index, got %d", exit.ExitIdx)
	}
}

func TestShortMirror(t *testing.T) {
	series := testSeries(t, []models.Bar{
		testBar(0, 1.0990, 1.1010), // touch
		testBar(1, 1.1015, 1.1025), // SHORT entry at upper band 1.1020
		testBar(2, 1.1010, 1.1032), // stop 1.1030 triggers
	})

	engine, err := NewEngine(testConfig(), nil)
	if err != nil {
		t.Fatal(err)
	}
	result, err := engine.Run(series)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Setups) != 1 {
		t.Fatalf("expected 1 setup, got %d", len(result.Setups))
	}

	s := result.Setups[0]
	if s.Direction != models.DirectionShort {
		t.Fatalf("expected SHORT, got %s", s.Direction)
	}
	if s.Outcome != models.OutcomeLoss {
		t.Errorf("expected LOSS, got %s", s.Outcome)
	}
	if diff := s.ResultPips - (-10.0); diff > 1e-6 || diff < -1e-6 {
		t.Errorf("expected -10.0 pips, got %.4f", s.ResultPips)
	}
}

func TestDetectEntryAfterTouchProperty(t *testing.T) {
	series := testSeries(t, []models.Bar{
		testBar(0, 1.0990, 1.1010),
		testBar(1, 1.0975, 1.0985),
		testBar(2, 1.0985, 1.1005),
		testBar(3, 1.0990, 1.1010),
		testBar(4, 1.0975, 1.0985),
		testBar(5, 1.0968, 1.0985),
	})

	engine, err := NewEngine(testConfig(), nil)
	if err != nil {
		t.Fatal(err)
	}
	setups := engine.Detect(series, uuid.New())
	if len(setups) == 0 {
		t.Fatal("expected setups")
	}
	for _, s := range setups {
		if !s.EntryTime.After(s.TouchTime) {
			t.Errorf("entry %v not after touch %v", s.EntryTime, s.TouchTime)
		}
	}
}

func TestDetectIdempotent(t *testing.T) {
	series := testSeries(t, []models.Bar{
		testBar(0, 1.0990, 1.1010),
		testBar(1, 1.0975, 1.0985),
		testBar(2, 1.0968, 1.0990),
		testBar(3, 1.0990, 1.1010),
		testBar(4, 1.1015, 1.1025),
		testBar(5, 1.1010, 1.1032),
	})

	engine, err := NewEngine(testConfig(), nil)
	if err != nil {
		t.Fatal(err)
	}
	runID := uuid.New()
	first := engine.Detect(series, runID)
	second := engine.Detect(series, runID)

	if len(first) != len(second) {
		t.Fatalf("detection not idempotent: %d vs %d setups", len(first), len(second))
	}
	for i := range first {
		a, b := first[i], second[i]
		if a.Direction != b.Direction || !a.EntryTime.Equal(b.EntryTime) ||
			a.Outcome != b.Outcome || a.ResultPips != b.ResultPips {
			t.Errorf("setup %d differs between runs", i)
		}
	}
}

func TestRunFailsOnEmptyWindow(t *testing.T) {
	series := testSeries(t, []models.Bar{testBar(0, 1.0990, 1.1010)})
	cfg := testConfig()
	cfg.StartDate = testStart.AddDate(0, 1, 0)
	cfg.EndDate = testStart.AddDate(0, 2, 0)

	engine, err := NewEngine(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := engine.Run(series); err == nil {
		t.Error("expected error for empty analysis window")
	}
}

func TestNewEngineRejectsBadConfig(t *testing.T) {
	cfg := testConfig()
	cfg.EntryMultiplier = 3.5 // above stop multiplier
	if _, err := NewEngine(cfg, nil); err == nil {
		t.Error("expected config validation error")
	}
}
