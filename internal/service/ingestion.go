package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/mean-reverter/internal/datasource"
	"github.com/yourusername/mean-reverter/internal/metrics"
	"github.com/yourusername/mean-reverter/internal/models"
	"github.com/yourusername/mean-reverter/internal/repository"
)

// IngestionService handles the candle ingestion workflow:
// fetch, normalize, validate, persist.
type IngestionService struct {
	sources    []datasource.DataSource
	candleRepo repository.CandleRepository
	validator  *DataValidator
	normalizer *DataNormalizer
	metrics    *IngestionMetrics
	logger     *logrus.Logger
	batchSize  int
}

// NewIngestionService creates a new ingestion service
func NewIngestionService(
	sources []datasource.DataSource,
	candleRepo repository.CandleRepository,
	validator *DataValidator,
	normalizer *DataNormalizer,
	logger *logrus.Logger,
	batchSize int,
) *IngestionService {
	if batchSize <= 0 {
		batchSize = 500
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &IngestionService{
		sources:    sources,
		candleRepo: candleRepo,
		validator:  validator,
		normalizer: normalizer,
		metrics:    NewIngestionMetrics(),
		logger:     logger,
		batchSize:  batchSize,
	}
}

// IngestHistoricalData fetches and persists candles from a specific source
func (s *IngestionService) IngestHistoricalData(ctx context.Context, sourceName, symbol, timeframe string, start, end time.Time) (*IngestionMetrics, error) {
	s.metrics.Reset()
	startTime := time.Now()

	s.logger.WithFields(logrus.Fields{
		"source":    sourceName,
		"symbol":    symbol,
		"timeframe": timeframe,
		"from":      start.Format("2006-01-02"),
		"to":        end.Format("2006-01-02"),
	}).Info("Starting historical candle ingestion")

	source, err := s.findSource(sourceName)
	if err != nil {
		return nil, err
	}

	raw, err := source.FetchCandles(ctx, symbol, timeframe, start, end)
	if err != nil {
		s.metrics.RecordError()
		return s.metrics, fmt.Errorf("failed to fetch candles: %w", err)
	}
	s.metrics.RecordFetched(len(raw))

	candles, skipped := s.normalizer.NormalizeBatch(raw)
	s.metrics.RecordSkipped(skipped)

	candles = s.filterValid(candles)

	if seriesErrors := s.validator.ValidateSeries(candles); len(seriesErrors) > 0 {
		s.metrics.RecordValidationError()
		return s.metrics, fmt.Errorf("candle series validation failed: %v", seriesErrors)
	}

	for i := 0; i < len(candles); i += s.batchSize {
		end := i + s.batchSize
		if end > len(candles) {
			end = len(candles)
		}
		batch := candles[i:end]
		if err := s.candleRepo.InsertBatch(ctx, batch); err != nil {
			s.metrics.RecordError()
			s.logger.WithError(err).Error("Failed to store candle batch")
			continue
		}
		s.metrics.RecordStored(len(batch))
		metrics.RecordCandlesIngested(sourceName, "stored", len(batch))
	}

	s.metrics.mu.Lock()
	s.metrics.Duration = time.Since(startTime)
	s.metrics.mu.Unlock()
	metrics.RecordIngestionDuration(time.Since(startTime).Seconds())

	s.logger.WithField("metrics", s.metrics.String()).Info("Historical ingestion complete")
	return s.metrics, nil
}

// IngestLatest fetches and persists the most recent candle from a source.
// Used by the live polling schedule.
func (s *IngestionService) IngestLatest(ctx context.Context, sourceName, symbol, timeframe string) error {
	source, err := s.findSource(sourceName)
	if err != nil {
		return err
	}

	raw, err := source.FetchLatest(ctx, symbol, timeframe)
	if err != nil {
		s.metrics.RecordError()
		return fmt.Errorf("failed to fetch latest candle: %w", err)
	}

	candle, err := s.normalizer.NormalizeCandle(raw)
	if err != nil {
		s.metrics.RecordSkipped(1)
		return fmt.Errorf("failed to normalize candle: %w", err)
	}

	if validationErrors := s.validator.ValidateCandle(candle); len(validationErrors) > 0 {
		s.metrics.RecordValidationError()
		return fmt.Errorf("candle validation failed: %v", validationErrors)
	}

	if err := s.candleRepo.Insert(ctx, candle); err != nil {
		s.metrics.RecordError()
		return fmt.Errorf("failed to store candle: %w", err)
	}

	s.metrics.RecordStored(1)
	return nil
}

// HandleStreamCandle persists a completed candle delivered by the live stream
func (s *IngestionService) HandleStreamCandle(raw datasource.CandleData) error {
	candle, err := s.normalizer.NormalizeCandle(&raw)
	if err != nil {
		s.metrics.RecordSkipped(1)
		return err
	}
	if validationErrors := s.validator.ValidateCandle(candle); len(validationErrors) > 0 {
		s.metrics.RecordValidationError()
		return fmt.Errorf("stream candle validation failed: %v", validationErrors)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.candleRepo.Insert(ctx, candle); err != nil {
		s.metrics.RecordError()
		return fmt.Errorf("failed to store stream candle: %w", err)
	}
	s.metrics.RecordStored(1)
	return nil
}

// GetMetrics returns current ingestion metrics
func (s *IngestionService) GetMetrics() *IngestionMetrics {
	return s.metrics
}

func (s *IngestionService) findSource(name string) (datasource.DataSource, error) {
	for _, src := range s.sources {
		if src.Name() == name {
			return src, nil
		}
	}
	return nil, fmt.Errorf("data source not found: %s", name)
}

// filterValid drops candles that fail per-candle validation and counts them
func (s *IngestionService) filterValid(candles []*models.Candle) []*models.Candle {
	valid := candles[:0]
	for _, candle := range candles {
		if validationErrors := s.validator.ValidateCandle(candle); len(validationErrors) > 0 {
			s.metrics.RecordValidationError()
			s.logger.WithFields(logrus.Fields{
				"time":   candle.Time.Format(time.RFC3339),
				"errors": validationErrors,
			}).Warn("Dropping invalid candle")
			continue
		}
		valid = append(valid, candle)
	}
	return valid
}
