package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/mean-reverter/internal/database"
	"github.com/yourusername/mean-reverter/internal/models"
)

type setupRepository struct {
	db *database.DB
}

// NewSetupRepository creates a new PostgreSQL-backed setup repository
func NewSetupRepository(db *database.DB) SetupRepository {
	return &setupRepository{db: db}
}

// SaveRun persists all setups of a detection run in one COPY batch
func (r *setupRepository) SaveRun(ctx context.Context, setups []*models.Setup) error {
	if len(setups) == 0 {
		return nil
	}

	rows := make([][]interface{}, len(setups))
	for i, s := range setups {
		rows[i] = []interface{}{
			s.ID,
			s.RunID,
			s.Symbol,
			string(s.Direction),
			s.TouchTime,
			s.EntryTime,
			s.ExitTime,
			s.EntryPrice,
			s.StopPrice,
			s.TPReference,
			s.ExitPrice,
			s.StopPips,
			s.EstTPPips,
			s.ResultPips,
			s.RREstimated,
			s.RRRealized,
			string(s.Outcome),
			s.CandlesToEntry,
			s.BarsHeld,
			s.ADX,
			s.PlusDI,
			s.MinusDI,
			s.RSI,
			s.ATR,
			s.CreatedAt,
		}
	}

	count, err := r.db.GetPool().CopyFrom(
		ctx,
		pgx.Identifier{"setups"},
		[]string{
			"id", "run_id", "symbol", "direction",
			"touch_time", "entry_time", "exit_time",
			"entry_price", "stop_price", "tp_reference", "exit_price",
			"stop_pips", "est_tp_pips", "result_pips", "rr_estimated", "rr_realized",
			"outcome", "candles_to_entry", "bars_held",
			"adx", "plus_di", "minus_di", "rsi", "atr",
			"created_at",
		},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to batch insert setups: %w", err)
	}
	if count != int64(len(setups)) {
		return fmt.Errorf("expected to insert %d setups, inserted %d", len(setups), count)
	}
	return nil
}

func (r *setupRepository) GetByRunID(ctx context.Context, runID uuid.UUID) ([]*models.Setup, error) {
	query := selectSetupColumns + ` WHERE run_id = $1 ORDER BY entry_time ASC`
	return r.querySetups(ctx, query, runID)
}

func (r *setupRepository) GetBySymbolAndRange(ctx context.Context, symbol string, start, end time.Time) ([]*models.Setup, error) {
	query := selectSetupColumns + ` WHERE symbol = $1 AND entry_time >= $2 AND entry_time <= $3 ORDER BY entry_time ASC`
	return r.querySetups(ctx, query, symbol, start, end)
}

func (r *setupRepository) DeleteRun(ctx context.Context, runID uuid.UUID) error {
	if runID == uuid.Nil {
		return models.ErrInvalidID
	}
	if _, err := r.db.Exec(ctx, `DELETE FROM setups WHERE run_id = $1`, runID); err != nil {
		return fmt.Errorf("failed to delete run %s: %w", runID, err)
	}
	return nil
}

const selectSetupColumns = `
	SELECT id, run_id, symbol, direction,
		touch_time, entry_time, exit_time,
		entry_price, stop_price, tp_reference, exit_price,
		stop_pips, est_tp_pips, result_pips, rr_estimated, rr_realized,
		outcome, candles_to_entry, bars_held,
		adx, plus_di, minus_di, rsi, atr,
		created_at
	FROM setups`

func (r *setupRepository) querySetups(ctx context.Context, query string, args ...interface{}) ([]*models.Setup, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query setups: %w", err)
	}
	defer rows.Close()

	var setups []*models.Setup
	for rows.Next() {
		s := &models.Setup{}
		var direction, outcome string
		if err := rows.Scan(
			&s.ID,
			&s.RunID,
			&s.Symbol,
			&direction,
			&s.TouchTime,
			&s.EntryTime,
			&s.ExitTime,
			&s.EntryPrice,
			&s.StopPrice,
			&s.TPReference,
			&s.ExitPrice,
			&s.StopPips,
			&s.EstTPPips,
			&s.ResultPips,
			&s.RREstimated,
			&s.RRRealized,
			&outcome,
			&s.CandlesToEntry,
			&s.BarsHeld,
			&s.ADX,
			&s.PlusDI,
			&s.MinusDI,
			&s.RSI,
			&s.ATR,
			&s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan setup: %w", err)
		}
		s.Direction = models.Direction(direction)
		s.Outcome = models.Outcome(outcome)
		setups = append(setups, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating setups: %w", err)
	}
	return setups, nil
}
