package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/mean-reverter/internal/metrics"
)

// CandleHandler is called for every completed candle received from the stream
type CandleHandler func(candle CandleData) error

// ReconnectConfig controls reconnection behavior
type ReconnectConfig struct {
	MaxRetries        int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
}

// DefaultReconnectConfig returns default reconnection configuration
func DefaultReconnectConfig() ReconnectConfig {
	return ReconnectConfig{
		MaxRetries:        10,
		InitialBackoff:    1 * time.Second,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 1.5,
	}
}

// streamCandleMessage is a candle event on the wire. Prices arrive as strings.
type streamCandleMessage struct {
	Op        string `json:"op"`
	Symbol    string `json:"symbol"`
	Timeframe string `json:"timeframe"`
	Time      string `json:"time"`
	Open      string `json:"open"`
	High      string `json:"high"`
	Low       string `json:"low"`
	Close     string `json:"close"`
	Volume    string `json:"volume"`
	Complete  bool   `json:"complete"`
}

// StreamClient handles the WebSocket connection to the live candle feed
type StreamClient struct {
	streamURL string
	apiKey    string

	mu              sync.RWMutex
	conn            *websocket.Conn
	isConnected     bool
	handlers        []CandleHandler
	lastMessageTime time.Time

	reconnectConfig ReconnectConfig
	logger          *logrus.Logger
}

// NewStreamClient creates a new live candle stream client
func NewStreamClient(streamURL, apiKey string, logger *logrus.Logger) *StreamClient {
	if logger == nil {
		logger = logrus.New()
	}
	return &StreamClient{
		streamURL:       streamURL,
		apiKey:          apiKey,
		handlers:        make([]CandleHandler, 0),
		reconnectConfig: DefaultReconnectConfig(),
		logger:          logger,
	}
}

// Connect establishes the WebSocket connection and starts the read loop
func (s *StreamClient) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isConnected {
		return fmt.Errorf("already connected")
	}

	s.logger.WithField("url", s.streamURL).Info("Connecting to candle stream")

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, s.streamURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to stream: %w", err)
	}

	s.conn = conn
	s.isConnected = true
	s.lastMessageTime = time.Now()
	metrics.UpdateStreamConnected(true)

	go s.readMessages()

	return nil
}

// Authenticate sends the authentication message
func (s *StreamClient) Authenticate(ctx context.Context) error {
	return s.sendMessage(map[string]interface{}{
		"op":     "auth",
		"apiKey": s.apiKey,
	})
}

// Subscribe subscribes to completed candles for the given symbols
func (s *StreamClient) Subscribe(ctx context.Context, symbols []string, timeframe string) error {
	s.logger.WithFields(logrus.Fields{
		"symbols":   symbols,
		"timeframe": timeframe,
	}).Info("Subscribing to candle stream")

	return s.sendMessage(map[string]interface{}{
		"op":        "subscribe",
		"symbols":   symbols,
		"timeframe": timeframe,
		"heartbeat": true,
	})
}

// AddHandler registers a candle handler
func (s *StreamClient) AddHandler(handler CandleHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = append(s.handlers, handler)
}

// IsConnected returns whether the stream is connected
func (s *StreamClient) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isConnected
}

// LastMessageTime returns the time of the last received message
func (s *StreamClient) LastMessageTime() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastMessageTime
}

// Close closes the stream connection
func (s *StreamClient) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil
	}

	s.isConnected = false
	metrics.UpdateStreamConnected(false)
	return s.conn.Close()
}

// Ping sends a ping message to keep the connection alive
func (s *StreamClient) Ping() error {
	return s.sendMessage(map[string]interface{}{"op": "ping"})
}

func (s *StreamClient) readMessages() {
	defer s.Close()

	for {
		s.mu.RLock()
		conn := s.conn
		s.mu.RUnlock()
		if conn == nil {
			return
		}

		var raw json.RawMessage
		if err := conn.ReadJSON(&raw); err != nil {
			s.logger.WithError(err).Warn("Stream read failed")
			s.mu.Lock()
			s.isConnected = false
			s.mu.Unlock()
			return
		}

		s.mu.Lock()
		s.lastMessageTime = time.Now()
		s.mu.Unlock()

		candle, ok := s.parseCandle(raw)
		if !ok {
			continue
		}

		s.mu.RLock()
		handlers := s.handlers
		s.mu.RUnlock()

		for _, handler := range handlers {
			if err := handler(*candle); err != nil {
				s.logger.WithError(err).Warn("Candle handler failed")
			}
		}
	}
}

// parseCandle decodes a raw message and returns the candle if it is a
// completed candle event. Heartbeats and partial candles are dropped.
func (s *StreamClient) parseCandle(raw json.RawMessage) (*CandleData, bool) {
	var msg streamCandleMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		s.logger.WithError(err).Debug("Ignoring undecodable stream message")
		return nil, false
	}
	if msg.Op != "candle" || !msg.Complete {
		return nil, false
	}

	t, err := time.Parse(time.RFC3339, msg.Time)
	if err != nil {
		s.logger.WithField("time", msg.Time).Warn("Ignoring candle with invalid time")
		return nil, false
	}

	parse := func(name, raw string) (decimal.Decimal, bool) {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			s.logger.WithFields(logrus.Fields{"field": name, "value": raw}).Warn("Ignoring candle with invalid price")
			return decimal.Decimal{}, false
		}
		return d, true
	}

	open, ok := parse("open", msg.Open)
	if !ok {
		return nil, false
	}
	high, ok := parse("high", msg.High)
	if !ok {
		return nil, false
	}
	low, ok := parse("low", msg.Low)
	if !ok {
		return nil, false
	}
	closePrice, ok := parse("close", msg.Close)
	if !ok {
		return nil, false
	}

	volume := decimal.Zero
	if msg.Volume != "" {
		if volume, ok = parse("volume", msg.Volume); !ok {
			return nil, false
		}
	}

	return &CandleData{
		Symbol:    msg.Symbol,
		Timeframe: msg.Timeframe,
		Time:      t.UTC(),
		Open:      open,
		High:      high,
		Low:       low,
		Close:     closePrice,
		Volume:    volume,
	}, true
}

func (s *StreamClient) sendMessage(msg interface{}) error {
	s.mu.RLock()
	if !s.isConnected || s.conn == nil {
		s.mu.RUnlock()
		return fmt.Errorf("not connected")
	}
	conn := s.conn
	s.mu.RUnlock()

	return conn.WriteJSON(msg)
}
