package database

import (
	"context"
	"fmt"

	"github.com/yourusername/mean-reverter/internal/config"
)

// Initialize creates a database connection pool and verifies the schema is present
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	// Verify migrations are applied by checking for the candles table
	var tableName string
	err = db.pool.QueryRow(ctx,
		"SELECT tablename FROM pg_tables WHERE schemaname = 'public' AND tablename = 'candles'",
	).Scan(&tableName)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf(
			"candles table not found, run migrations first: migrate -path migrations -database \"%s\" up",
			cfg.GetDatabaseDSN(),
		)
	}

	return db, nil
}
