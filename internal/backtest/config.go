package backtest

import (
	"fmt"
	"time"

	"github.com/yourusername/mean-reverter/internal/config"
)

// DefaultPipFactor converts price differences to pips for 4/5-digit FX quotes.
const DefaultPipFactor = 10000.0

// DetectionConfig holds the parameters of one detection run
type DetectionConfig struct {
	StartDate            time.Time
	EndDate              time.Time
	EntryMultiplier      float64
	StopMultiplier       float64
	MinCandlesAway       int
	UseDirectionalFilter bool
	DirectionalSpreadMax float64
	PipFactor            float64
}

// FromConfig converts app strategy config to a detection config
func FromConfig(cfg *config.StrategyConfig) (DetectionConfig, error) {
	if cfg == nil {
		return DetectionConfig{}, fmt.Errorf("strategy config is required")
	}
	start, err := time.Parse("2006-01-02", cfg.StartDate)
	if err != nil {
		return DetectionConfig{}, fmt.Errorf("invalid start date: %w", err)
	}
	end, err := time.Parse("2006-01-02", cfg.EndDate)
	if err != nil {
		return DetectionConfig{}, fmt.Errorf("invalid end date: %w", err)
	}

	dc := DetectionConfig{
		StartDate:            start,
		EndDate:              end,
		EntryMultiplier:      cfg.EntryMultiplier,
		StopMultiplier:       cfg.StopMultiplier,
		MinCandlesAway:       cfg.MinCandlesAway,
		UseDirectionalFilter: cfg.UseDirectionalFilter,
		DirectionalSpreadMax: cfg.DirectionalSpreadMax,
		PipFactor:            cfg.PipFactor,
	}
	if dc.PipFactor == 0 {
		dc.PipFactor = DefaultPipFactor
	}

	return dc, dc.Validate()
}

// Validate validates detection config parameters
func (c DetectionConfig) Validate() error {
	if c.StartDate.After(c.EndDate) {
		return fmt.Errorf("start date must be before end date")
	}
	if c.EntryMultiplier <= 0 {
		return fmt.Errorf("entry multiplier must be positive")
	}
	if c.StopMultiplier <= 0 {
		return fmt.Errorf("stop multiplier must be positive")
	}
	if c.EntryMultiplier >= c.StopMultiplier {
		return fmt.Errorf("entry multiplier must be below stop multiplier")
	}
	if c.MinCandlesAway < 0 {
		return fmt.Errorf("min candles away cannot be negative")
	}
	if c.UseDirectionalFilter && c.DirectionalSpreadMax <= 0 {
		return fmt.Errorf("directional spread max must be positive when the filter is enabled")
	}
	if c.PipFactor <= 0 {
		return fmt.Errorf("pip factor must be positive")
	}
	return nil
}
