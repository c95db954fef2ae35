package repository

import (
	"fmt"

	"github.com/yourusername/mean-reverter/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Candle CandleRepository
	Setup  SetupRepository
	Sweep  SweepResultRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Candle: NewCandleRepository(db),
		Setup:  NewSetupRepository(db),
		Sweep:  NewSweepResultRepository(db),
	}, nil
}
