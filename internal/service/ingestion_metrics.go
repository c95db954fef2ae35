package service

import (
	"fmt"
	"sync"
	"time"
)

// IngestionMetrics tracks statistics about candle ingestion
type IngestionMetrics struct {
	mu               sync.RWMutex
	StartTime        time.Time
	Duration         time.Duration
	TotalCandles     int
	StoredCandles    int
	Skipped          int
	ValidationErrors int
	Errors           int
}

// NewIngestionMetrics creates a new metrics tracker
func NewIngestionMetrics() *IngestionMetrics {
	return &IngestionMetrics{
		StartTime: time.Now(),
	}
}

// Reset resets all metrics
func (m *IngestionMetrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.StartTime = time.Now()
	m.Duration = 0
	m.TotalCandles = 0
	m.StoredCandles = 0
	m.Skipped = 0
	m.ValidationErrors = 0
	m.Errors = 0
}

// RecordFetched adds to the fetched candle count
func (m *IngestionMetrics) RecordFetched(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TotalCandles += n
}

// RecordStored adds to the stored candle count
func (m *IngestionMetrics) RecordStored(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StoredCandles += n
}

// RecordSkipped adds to the skipped candle count
func (m *IngestionMetrics) RecordSkipped(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Skipped += n
}

// RecordValidationError increments validation error count
func (m *IngestionMetrics) RecordValidationError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ValidationErrors++
}

// RecordError increments error count
func (m *IngestionMetrics) RecordError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors++
}

// Snapshot returns a copy of the current counters
func (m *IngestionMetrics) Snapshot() (total, stored, skipped, validationErrors, errors int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.TotalCandles, m.StoredCandles, m.Skipped, m.ValidationErrors, m.Errors
}

// String returns a formatted string representation of metrics
func (m *IngestionMetrics) String() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	storedRate := float64(0)
	if m.TotalCandles > 0 {
		storedRate = float64(m.StoredCandles) / float64(m.TotalCandles) * 100
	}

	return fmt.Sprintf(
		"IngestionMetrics{Fetched=%d, Stored=%d (%.1f%%), Skipped=%d, ValidationErrors=%d, Errors=%d, Duration=%v}",
		m.TotalCandles,
		m.StoredCandles,
		storedRate,
		m.Skipped,
		m.ValidationErrors,
		m.Errors,
		m.Duration,
	)
}
