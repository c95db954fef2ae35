package datasource

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// csvColumns are required, in any order. Extra columns are ignored.
var csvRequiredColumns = []string{"time", "open", "high", "low", "close"}

// CSVSource implements DataSource over a local candle file. Used for
// historical backfills and offline detection runs.
type CSVSource struct {
	path    string
	enabled bool
}

// NewCSVSource creates a data source that reads candles from a CSV file
func NewCSVSource(path string, enabled bool) *CSVSource {
	return &CSVSource{path: path, enabled: enabled}
}

// FetchCandles reads the file and returns candles within the date range,
// sorted by time ascending
func (s *CSVSource) FetchCandles(ctx context.Context, symbol, timeframe string, start, end time.Time) ([]CandleData, error) {
	all, err := s.readAll(symbol, timeframe)
	if err != nil {
		return nil, err
	}

	var candles []CandleData
	for _, c := range all {
		if c.Time.Before(start) || c.Time.After(end) {
			continue
		}
		candles = append(candles, c)
	}
	return candles, nil
}

// FetchLatest returns the last candle in the file
func (s *CSVSource) FetchLatest(ctx context.Context, symbol, timeframe string) (*CandleData, error) {
	all, err := s.readAll(symbol, timeframe)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, NewDataSourceError(s.Name(), ErrCodeNotFound, "file contains no candles", ErrNotFound)
	}
	last := all[len(all)-1]
	return &last, nil
}

// Name returns the data source name
func (s *CSVSource) Name() string {
	return "csv"
}

// IsEnabled returns whether this data source is enabled
func (s *CSVSource) IsEnabled() bool {
	return s.enabled
}

func (s *CSVSource) readAll(symbol, timeframe string) ([]CandleData, error) {
	if !s.enabled {
		return nil, NewDataSourceError(s.Name(), ErrCodeDisabled, "data source is disabled", ErrSourceDisabled)
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, NewDataSourceError(s.Name(), ErrCodeNotFound, fmt.Sprintf("failed to open %s", s.path), err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, NewDataSourceError(s.Name(), ErrCodeInvalidData, "failed to parse CSV", err)
	}
	if len(records) == 0 {
		return nil, NewDataSourceError(s.Name(), ErrCodeInvalidData, "file is empty", ErrInvalidData)
	}

	columns, err := mapColumns(records[0])
	if err != nil {
		return nil, NewDataSourceError(s.Name(), ErrCodeInvalidData, err.Error(), ErrInvalidData)
	}

	candles := make([]CandleData, 0, len(records)-1)
	for i, record := range records[1:] {
		candle, err := parseCSVRow(symbol, timeframe, record, columns)
		if err != nil {
			return nil, NewDataSourceError(s.Name(), ErrCodeInvalidData,
				fmt.Sprintf("row %d: %v", i+2, err), ErrInvalidData)
		}
		candles = append(candles, *candle)
	}

	sort.Slice(candles, func(i, j int) bool {
		return candles[i].Time.Before(candles[j].Time)
	})
	return candles, nil
}

// mapColumns resolves header names to indices and reports the first missing
// required column by name
func mapColumns(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range csvRequiredColumns {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("missing required column: %s", required)
		}
	}
	return columns, nil
}

func parseCSVRow(symbol, timeframe string, record []string, columns map[string]int) (*CandleData, error) {
	field := func(name string) (string, bool) {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return "", false
		}
		return strings.TrimSpace(record[idx]), true
	}

	rawTime, _ := field("time")
	t, err := parseCandleTime(rawTime)
	if err != nil {
		return nil, err
	}

	prices := make(map[string]decimal.Decimal, 4)
	for _, name := range []string{"open", "high", "low", "close"} {
		raw, _ := field(name)
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s price %q", name, raw)
		}
		prices[name] = d
	}

	volume := decimal.Zero
	if raw, ok := field("volume"); ok && raw != "" {
		volume, err = decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid volume %q", raw)
		}
	}

	return &CandleData{
		Symbol:    symbol,
		Timeframe: timeframe,
		Time:      t,
		Open:      prices["open"],
		High:      prices["high"],
		Low:       prices["low"],
		Close:     prices["close"],
		Volume:    volume,
	}, nil
}

// WriteCandlesCSV writes candles to a file that round-trips through CSVSource.
// Times are RFC3339 UTC.
func WriteCandlesCSV(path string, candles []CandleData) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write([]string{"time", "open", "high", "low", "close", "volume"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, c := range candles {
		row := []string{
			c.Time.UTC().Format(time.RFC3339),
			c.Open.String(),
			c.High.String(),
			c.Low.String(),
			c.Close.String(),
			c.Volume.String(),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write candle row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// parseCandleTime accepts RFC3339 or the common "2006-01-02 15:04:05" export
// format, always in UTC
func parseCandleTime(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02 15:04:05", raw); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("invalid time %q", raw)
}
