package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/mean-reverter/internal/models"
)

// CandleRepository defines operations for raw OHLCV candles
type CandleRepository interface {
	Insert(ctx context.Context, candle *models.Candle) error
	InsertBatch(ctx context.Context, candles []*models.Candle) error
	GetBySymbolAndRange(ctx context.Context, symbol, timeframe string, start, end time.Time) ([]*models.Candle, error)
	GetLatest(ctx context.Context, symbol, timeframe string) (*models.Candle, error)
	Count(ctx context.Context, symbol, timeframe string) (int64, error)
}

// SetupRepository defines operations for detected trade setups
type SetupRepository interface {
	SaveRun(ctx context.Context, setups []*models.Setup) error
	GetByRunID(ctx context.Context, runID uuid.UUID) ([]*models.Setup, error)
	GetBySymbolAndRange(ctx context.Context, symbol string, start, end time.Time) ([]*models.Setup, error)
	DeleteRun(ctx context.Context, runID uuid.UUID) error
}

// SweepResultRepository defines operations for ranked sweep rows
type SweepResultRepository interface {
	SaveRun(ctx context.Context, results []*models.SweepResult) error
	GetByRunID(ctx context.Context, runID uuid.UUID) ([]*models.SweepResult, error)
	GetLatestRun(ctx context.Context) ([]*models.SweepResult, error)
}
