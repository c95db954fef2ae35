package datasource

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yourusername/mean-reverter/internal/config"
)

func testHTTPClient() *RateLimitedHTTPClient {
	cfg := DefaultHTTPClientConfig()
	cfg.MaxRetries = 0
	cfg.RateLimit = 1000
	return NewRateLimitedHTTPClient(cfg, nil)
}

func TestFXAPIFetchCandles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Query().Get("symbol") != "EURUSD" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"symbol": "EURUSD",
			"timeframe": "H1",
			"candles": [
				{"time": "2024-01-01T00:00:00Z", "open": "1.1000", "high": "1.1010", "low": "1.0990", "close": "1.1005", "volume": "1200"},
				{"time": "2024-01-01T01:00:00Z", "open": "1.1005", "high": "1.1015", "low": "1.0995", "close": "1.1010", "volume": "900"},
				{"time": "not-a-time", "open": "1.1", "high": "1.1", "low": "1.1", "close": "1.1", "volume": "0"}
			]
		}`))
	}))
	defer server.Close()

	client := NewFXAPIClient(testHTTPClient(), server.URL, "test-key", true, nil)

	candles, err := client.FetchCandles(context.Background(), "EURUSD", "H1",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("FetchCandles failed: %v", err)
	}

	// The malformed row is skipped, not fatal
	if len(candles) != 2 {
		t.Fatalf("expected 2 candles, got %d", len(candles))
	}
	if !candles[0].Open.Equal(decimal.RequireFromString("1.1000")) {
		t.Errorf("expected open 1.1000, got %s", candles[0].Open.String())
	}
	if !candles[1].Time.After(candles[0].Time) {
		t.Error("expected candles in ascending time order")
	}
}

func TestFXAPIAuthenticationFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewFXAPIClient(testHTTPClient(), server.URL, "bad-key", true, nil)

	_, err := client.FetchCandles(context.Background(), "EURUSD", "H1", time.Now().Add(-time.Hour), time.Now())
	if err == nil {
		t.Fatal("expected authentication error")
	}
	if !errors.Is(err, ErrAuthenticationFailed) {
		t.Errorf("expected ErrAuthenticationFailed, got %v", err)
	}
}

func TestFXAPIDisabledSource(t *testing.T) {
	client := NewFXAPIClient(testHTTPClient(), "http://unused", "key", false, nil)

	_, err := client.FetchCandles(context.Background(), "EURUSD", "H1", time.Now().Add(-time.Hour), time.Now())
	if !errors.Is(err, ErrSourceDisabled) {
		t.Errorf("expected ErrSourceDisabled, got %v", err)
	}
}

func writeTestCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "candles.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write test CSV: %v", err)
	}
	return path
}

func TestCSVSourceFetchCandles(t *testing.T) {
	path := writeTestCSV(t, `time,open,high,low,close,volume
2024-01-01T01:00:00Z,1.1005,1.1015,1.0995,1.1010,900
2024-01-01T00:00:00Z,1.1000,1.1010,1.0990,1.1005,1200
`)

	source := NewCSVSource(path, true)
	candles, err := source.FetchCandles(context.Background(), "EURUSD", "H1",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("FetchCandles failed: %v", err)
	}
	if len(candles) != 2 {
		t.Fatalf("expected 2 candles, got %d", len(candles))
	}
	// Rows are sorted by time even when the file is not
	if !candles[0].Time.Before(candles[1].Time) {
		t.Error("expected ascending time order")
	}
}

func TestCSVSourceNamesMissingColumn(t *testing.T) {
	path := writeTestCSV(t, `time,open,high,low,volume
2024-01-01T00:00:00Z,1.1000,1.1010,1.0990,1200
`)

	source := NewCSVSource(path, true)
	_, err := source.FetchCandles(context.Background(), "EURUSD", "H1",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	if err == nil {
		t.Fatal("expected error for missing column")
	}
	var dsErr DataSourceError
	if !errors.As(err, &dsErr) {
		t.Fatalf("expected DataSourceError, got %T", err)
	}
	if dsErr.Message != "missing required column: close" {
		t.Errorf("expected missing column named in error, got %q", dsErr.Message)
	}
}

func TestCSVSourceFetchLatest(t *testing.T) {
	path := writeTestCSV(t, `time,open,high,low,close
2024-01-01 00:00:00,1.1000,1.1010,1.0990,1.1005
2024-01-01 01:00:00,1.1005,1.1015,1.0995,1.1010
`)

	source := NewCSVSource(path, true)
	latest, err := source.FetchLatest(context.Background(), "EURUSD", "H1")
	if err != nil {
		t.Fatalf("FetchLatest failed: %v", err)
	}
	want := time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC)
	if !latest.Time.Equal(want) {
		t.Errorf("expected latest candle at %v, got %v", want, latest.Time)
	}
}

func TestWriteCandlesCSVRoundTrip(t *testing.T) {
	candles := []CandleData{
		{
			Symbol:    "EURUSD",
			Timeframe: "H1",
			Time:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			Open:      decimal.RequireFromString("1.1000"),
			High:      decimal.RequireFromString("1.1010"),
			Low:       decimal.RequireFromString("1.0990"),
			Close:     decimal.RequireFromString("1.1005"),
			Volume:    decimal.RequireFromString("1200"),
		},
		{
			Symbol:    "EURUSD",
			Timeframe: "H1",
			Time:      time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC),
			Open:      decimal.RequireFromString("1.1005"),
			High:      decimal.RequireFromString("1.1015"),
			Low:       decimal.RequireFromString("1.0995"),
			Close:     decimal.RequireFromString("1.1010"),
			Volume:    decimal.Zero,
		},
	}

	path := filepath.Join(t.TempDir(), "out.csv")
	if err := WriteCandlesCSV(path, candles); err != nil {
		t.Fatalf("WriteCandlesCSV failed: %v", err)
	}

	source := NewCSVSource(path, true)
	got, err := source.FetchCandles(context.Background(), "EURUSD", "H1",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("FetchCandles failed: %v", err)
	}
	if len(got) != len(candles) {
		t.Fatalf("expected %d candles, got %d", len(candles), len(got))
	}
	for i := range got {
		if !got[i].Time.Equal(candles[i].Time) || !got[i].Close.Equal(candles[i].Close) {
			t.Errorf("candle %d did not round-trip: %+v", i, got[i])
		}
	}
}

func TestFactoryCreatesConfiguredSources(t *testing.T) {
	cfg := &config.Config{
		MarketData: config.MarketDataConfig{
			APIURL: "https://api.example.com/v1",
			APIKey: "global-key",
		},
	}
	factory := NewFactory(cfg, nil)

	ingestion := config.DataIngestionConfig{
		Sources: []config.DataSourceConfig{
			{Name: "fx_api", Enabled: true},
			{Name: "csv", Enabled: true, FilePath: "/tmp/candles.csv"},
			{Name: "fx_api", Enabled: false},
		},
	}

	sources, err := factory.NewDataSources(ingestion, testHTTPClient())
	if err != nil {
		t.Fatalf("NewDataSources failed: %v", err)
	}
	if len(sources) != 2 {
		t.Fatalf("expected 2 enabled sources, got %d", len(sources))
	}
	if sources[0].Name() != "fx_api" || sources[1].Name() != "csv" {
		t.Errorf("unexpected source order: %s, %s", sources[0].Name(), sources[1].Name())
	}
}

func TestFactoryRejectsUnknownSource(t *testing.T) {
	factory := NewFactory(&config.Config{}, nil)
	_, err := factory.NewDataSource(config.DataSourceConfig{Name: "telegraph"}, testHTTPClient())
	if err == nil {
		t.Fatal("expected error for unknown source")
	}
}
