package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// FXAPIClient implements DataSource for a JSON forex candle API
type FXAPIClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	enabled    bool
	logger     *logrus.Logger
}

// fxCandle is a single candle row as delivered by the API. Prices arrive as
// strings to preserve precision.
type fxCandle struct {
	Time   string `json:"time"`
	Open   string `json:"open"`
	High   string `json:"high"`
	Low    string `json:"low"`
	Close  string `json:"close"`
	Volume string `json:"volume"`
}

type fxCandleResponse struct {
	Symbol    string     `json:"symbol"`
	Timeframe string     `json:"timeframe"`
	Candles   []fxCandle `json:"candles"`
}

// NewFXAPIClient creates a new forex candle API client
func NewFXAPIClient(httpClient *RateLimitedHTTPClient, baseURL, apiKey string, enabled bool, logger *logrus.Logger) *FXAPIClient {
	if logger == nil {
		logger = logrus.New()
	}
	return &FXAPIClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		enabled:    enabled,
		logger:     logger,
	}
}

// FetchCandles retrieves candles for a symbol and timeframe within the date range
func (c *FXAPIClient) FetchCandles(ctx context.Context, symbol, timeframe string, start, end time.Time) ([]CandleData, error) {
	if !c.enabled {
		return nil, NewDataSourceError(c.Name(), ErrCodeDisabled, "data source is disabled", ErrSourceDisabled)
	}

	endpoint := fmt.Sprintf("%s/candles?symbol=%s&timeframe=%s&from=%s&to=%s",
		c.baseURL,
		url.QueryEscape(symbol),
		url.QueryEscape(timeframe),
		url.QueryEscape(start.UTC().Format(time.RFC3339)),
		url.QueryEscape(end.UTC().Format(time.RFC3339)),
	)

	resp, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		return nil, err
	}

	var payload fxCandleResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, NewDataSourceError(c.Name(), ErrCodeInvalidData, "failed to parse response", err)
	}

	candles := make([]CandleData, 0, len(payload.Candles))
	for _, row := range payload.Candles {
		candle, err := c.convertCandle(symbol, timeframe, row)
		if err != nil {
			c.logger.WithFields(logrus.Fields{
				"symbol": symbol,
				"time":   row.Time,
				"error":  err.Error(),
			}).Warn("Skipping malformed candle")
			continue
		}
		candles = append(candles, *candle)
	}

	return candles, nil
}

// FetchLatest retrieves the most recent candle for a symbol and timeframe
func (c *FXAPIClient) FetchLatest(ctx context.Context, symbol, timeframe string) (*CandleData, error) {
	if !c.enabled {
		return nil, NewDataSourceError(c.Name(), ErrCodeDisabled, "data source is disabled", ErrSourceDisabled)
	}

	endpoint := fmt.Sprintf("%s/candles/latest?symbol=%s&timeframe=%s",
		c.baseURL,
		url.QueryEscape(symbol),
		url.QueryEscape(timeframe),
	)

	resp, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		return nil, err
	}

	var row fxCandle
	if err := json.NewDecoder(resp.Body).Decode(&row); err != nil {
		return nil, NewDataSourceError(c.Name(), ErrCodeInvalidData, "failed to parse response", err)
	}

	return c.convertCandle(symbol, timeframe, row)
}

// Name returns the data source name
func (c *FXAPIClient) Name() string {
	return "fx_api"
}

// IsEnabled returns whether this data source is enabled
func (c *FXAPIClient) IsEnabled() bool {
	return c.enabled
}

func (c *FXAPIClient) get(ctx context.Context, endpoint string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, NewDataSourceError(c.Name(), ErrCodeNetworkError, "failed to create request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, NewDataSourceError(c.Name(), ErrCodeNetworkError, "request failed", err)
	}
	return resp, nil
}

func (c *FXAPIClient) checkStatus(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return NewDataSourceError(c.Name(), ErrCodeAuthenticationFailed, "invalid API key", ErrAuthenticationFailed)
	case http.StatusNotFound:
		return NewDataSourceError(c.Name(), ErrCodeNotFound, "symbol not found", ErrNotFound)
	case http.StatusTooManyRequests:
		return NewDataSourceError(c.Name(), ErrCodeRateLimitExceeded, "rate limit exceeded", ErrRateLimitExceeded)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return NewDataSourceError(c.Name(), ErrCodeServerError,
			fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}
}

func (c *FXAPIClient) convertCandle(symbol, timeframe string, row fxCandle) (*CandleData, error) {
	t, err := time.Parse(time.RFC3339, row.Time)
	if err != nil {
		return nil, fmt.Errorf("invalid candle time %q: %w", row.Time, err)
	}

	open, err := decimal.NewFromString(row.Open)
	if err != nil {
		return nil, fmt.Errorf("invalid open price %q: %w", row.Open, err)
	}
	high, err := decimal.NewFromString(row.High)
	if err != nil {
		return nil, fmt.Errorf("invalid high price %q: %w", row.High, err)
	}
	low, err := decimal.NewFromString(row.Low)
	if err != nil {
		return nil, fmt.Errorf("invalid low price %q: %w", row.Low, err)
	}
	closePrice, err := decimal.NewFromString(row.Close)
	if err != nil {
		return nil, fmt.Errorf("invalid close price %q: %w", row.Close, err)
	}

	volume := decimal.Zero
	if row.Volume != "" {
		volume, err = decimal.NewFromString(row.Volume)
		if err != nil {
			return nil, fmt.Errorf("invalid volume %q: %w", row.Volume, err)
		}
	}

	return &CandleData{
		Symbol:    symbol,
		Timeframe: timeframe,
		Time:      t.UTC(),
		Open:      open,
		High:      high,
		Low:       low,
		Close:     closePrice,
		Volume:    volume,
	}, nil
}
