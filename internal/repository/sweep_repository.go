package repository

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/mean-reverter/internal/database"
	"github.com/yourusername/mean-reverter/internal/models"
)

type sweepResultRepository struct {
	db *database.DB
}

// NewSweepResultRepository creates a new PostgreSQL-backed sweep result repository
func NewSweepResultRepository(db *database.DB) SweepResultRepository {
	return &sweepResultRepository{db: db}
}

// SaveRun persists every ranked row of a sweep in one COPY batch.
// Infinite profit factors are stored as NULL.
func (r *sweepResultRepository) SaveRun(ctx context.Context, results []*models.SweepResult) error {
	if len(results) == 0 {
		return nil
	}

	rows := make([][]interface{}, len(results))
	for i, res := range results {
		var profitFactor interface{} = res.ProfitFactor
		if math.IsInf(res.ProfitFactor, 1) {
			profitFactor = nil
		}
		rows[i] = []interface{}{
			res.ID,
			res.RunID,
			res.Multiplier,
			res.Trades,
			res.Wins,
			res.Losses,
			res.Open,
			res.WinRate,
			res.AvgWinPips,
			res.AvgLossPips,
			res.TotalPips,
			res.Expectancy,
			res.ExpectancyProb,
			profitFactor,
			res.TradesPerYear,
			res.MaxDrawdown,
			res.Rank,
			res.CreatedAt,
		}
	}

	count, err := r.db.GetPool().CopyFrom(
		ctx,
		pgx.Identifier{"sweep_results"},
		[]string{
			"id", "run_id", "multiplier",
			"trades", "wins", "losses", "open",
			"win_rate", "avg_win_pips", "avg_loss_pips", "total_pips",
			"expectancy", "expectancy_prob", "profit_factor",
			"trades_per_year", "max_drawdown",
			"rank", "created_at",
		},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to batch insert sweep results: %w", err)
	}
	if count != int64(len(results)) {
		return fmt.Errorf("expected to insert %d sweep results, inserted %d", len(results), count)
	}
	return nil
}

func (r *sweepResultRepository) GetByRunID(ctx context.Context, runID uuid.UUID) ([]*models.SweepResult, error) {
	query := selectSweepColumns + ` WHERE run_id = $1 ORDER BY rank ASC`
	return r.querySweepResults(ctx, query, runID)
}

// GetLatestRun returns all rows of the most recently persisted sweep
func (r *sweepResultRepository) GetLatestRun(ctx context.Context) ([]*models.SweepResult, error) {
	var runID uuid.UUID
	err := r.db.QueryRow(ctx,
		`SELECT run_id FROM sweep_results ORDER BY created_at DESC LIMIT 1`,
	).Scan(&runID)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find latest sweep run: %w", err)
	}
	return r.GetByRunID(ctx, runID)
}

const selectSweepColumns = `
	SELECT id, run_id, multiplier,
		trades, wins, losses, open,
		win_rate, avg_win_pips, avg_loss_pips, total_pips,
		expectancy, expectancy_prob, profit_factor,
		trades_per_year, max_drawdown,
		rank, created_at
	FROM sweep_results`

func (r *sweepResultRepository) querySweepResults(ctx context.Context, query string, args ...interface{}) ([]*models.SweepResult, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sweep results: %w", err)
	}
	defer rows.Close()

	var results []*models.SweepResult
	for rows.Next() {
		res := &models.SweepResult{}
		var profitFactor *float64
		if err := rows.Scan(
			&res.ID,
			&res.RunID,
			&res.Multiplier,
			&res.Trades,
			&res.Wins,
			&res.Losses,
			&res.Open,
			&res.WinRate,
			&res.AvgWinPips,
			&res.AvgLossPips,
			&res.TotalPips,
			&res.Expectancy,
			&res.ExpectancyProb,
			&profitFactor,
			&res.TradesPerYear,
			&res.MaxDrawdown,
			&res.Rank,
			&res.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan sweep result: %w", err)
		}
		// NULL marks an infinite profit factor (wins without losses)
		if profitFactor != nil {
			res.ProfitFactor = *profitFactor
		} else {
			res.ProfitFactor = math.Inf(1)
		}
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sweep results: %w", err)
	}
	return results, nil
}
