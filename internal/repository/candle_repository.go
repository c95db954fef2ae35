package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/mean-reverter/internal/database"
	"github.com/yourusername/mean-reverter/internal/models"
)

type candleRepository struct {
	db *database.DB
}

// NewCandleRepository creates a new PostgreSQL-backed candle repository
func NewCandleRepository(db *database.DB) CandleRepository {
	return &candleRepository{db: db}
}

func (r *candleRepository) Insert(ctx context.Context, candle *models.Candle) error {
	query := `
		INSERT INTO candles (symbol, timeframe, candle_time, open, high, low, close, volume)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (symbol, timeframe, candle_time) DO UPDATE SET
			open = EXCLUDED.open,
			high = EXCLUDED.high,
			low = EXCLUDED.low,
			close = EXCLUDED.close,
			volume = EXCLUDED.volume`

	_, err := r.db.Exec(ctx, query,
		candle.Symbol,
		candle.Timeframe,
		candle.Time,
		candle.Open,
		candle.High,
		candle.Low,
		candle.Close,
		candle.Volume,
	)
	if err != nil {
		return fmt.Errorf("failed to insert candle: %w", err)
	}
	return nil
}

// InsertBatch uses COPY for efficient bulk insertion of candles
func (r *candleRepository) InsertBatch(ctx context.Context, candles []*models.Candle) error {
	if len(candles) == 0 {
		return nil
	}

	rows := make([][]interface{}, len(candles))
	for i, c := range candles {
		rows[i] = []interface{}{
			c.Symbol,
			c.Timeframe,
			c.Time,
			c.Open,
			c.High,
			c.Low,
			c.Close,
			c.Volume,
		}
	}

	count, err := r.db.GetPool().CopyFrom(
		ctx,
		pgx.Identifier{"candles"},
		[]string{"symbol", "timeframe", "candle_time", "open", "high", "low", "close", "volume"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to batch insert candles: %w", err)
	}
	if count != int64(len(candles)) {
		return fmt.Errorf("expected to insert %d candles, inserted %d", len(candles), count)
	}
	return nil
}

func (r *candleRepository) GetBySymbolAndRange(ctx context.Context, symbol, timeframe string, start, end time.Time) ([]*models.Candle, error) {
	query := `
		SELECT symbol, timeframe, candle_time, open, high, low, close, volume
		FROM candles
		WHERE symbol = $1 AND timeframe = $2 AND candle_time >= $3 AND candle_time <= $4
		ORDER BY candle_time ASC`

	rows, err := r.db.Query(ctx, query, symbol, timeframe, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query candles: %w", err)
	}
	defer rows.Close()

	var candles []*models.Candle
	for rows.Next() {
		c := &models.Candle{}
		if err := rows.Scan(
			&c.Symbol,
			&c.Timeframe,
			&c.Time,
			&c.Open,
			&c.High,
			&c.Low,
			&c.Close,
			&c.Volume,
		); err != nil {
			return nil, fmt.Errorf("failed to scan candle: %w", err)
		}
		candles = append(candles, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating candles: %w", err)
	}
	return candles, nil
}

func (r *candleRepository) GetLatest(ctx context.Context, symbol, timeframe string) (*models.Candle, error) {
	query := `
		SELECT symbol, timeframe, candle_time, open, high, low, close, volume
		FROM candles
		WHERE symbol = $1 AND timeframe = $2
		ORDER BY candle_time DESC
		LIMIT 1`

	c := &models.Candle{}
	err := r.db.QueryRow(ctx, query, symbol, timeframe).Scan(
		&c.Symbol,
		&c.Timeframe,
		&c.Time,
		&c.Open,
		&c.High,
		&c.Low,
		&c.Close,
		&c.Volume,
	)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest candle: %w", err)
	}
	return c, nil
}

func (r *candleRepository) Count(ctx context.Context, symbol, timeframe string) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM candles WHERE symbol = $1 AND timeframe = $2`,
		symbol, timeframe,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count candles: %w", err)
	}
	return count, nil
}
