package repository

import (
	"testing"
)

const skipIntegrationMsg = "Integration test - requires database setup"

func TestNewRepositoriesRequiresDatabase(t *testing.T) {
	repos, err := NewRepositories(nil)
	if err == nil {
		t.Fatal("expected error for nil database")
	}
	if repos != nil {
		t.Errorf("expected nil repositories, got %v", repos)
	}
}

// TestCandleRepositoryBatchInsert tests COPY-based candle ingestion
func TestCandleRepositoryBatchInsert(t *testing.T) {
	// db := database.SetupTestDB(t)
	// defer db.Close()

	// repos, err := NewRepositories(db)
	// if err != nil {
	// 	t.Fatalf("failed to create repositories: %v", err)
	// }

	// ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	// defer cancel()

	// base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	// candles := make([]*models.Candle, 100)
	// for i := range candles {
	// 	candles[i] = &models.Candle{
	// 		Symbol:    "EURUSD",
	// 		Timeframe: "H1",
	// 		Time:      base.Add(time.Duration(i) * time.Hour),
	// 		Open:      1.1000,
	// 		High:      1.1010,
	// 		Low:       1.0990,
	// 		Close:     1.1005,
	// 		Volume:    1200,
	// 	}
	// }

	// if err := repos.Candle.InsertBatch(ctx, candles); err != nil {
	// 	t.Fatalf("failed to batch insert candles: %v", err)
	// }

	// count, err := repos.Candle.Count(ctx, "EURUSD", "H1")
	// if err != nil {
	// 	t.Fatalf("failed to count candles: %v", err)
	// }
	// if count != 100 {
	// 	t.Errorf("expected 100 candles, got %d", count)
	// }
	t.Skip(skipIntegrationMsg)
}

// TestSetupRepositoryRunRoundTrip tests saving and retrieving a detection run
func TestSetupRepositoryRunRoundTrip(t *testing.T) {
	// db := database.SetupTestDB(t)
	// defer db.Close()

	// repos, err := NewRepositories(db)
	// if err != nil {
	// 	t.Fatalf("failed to create repositories: %v", err)
	// }

	// ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	// defer cancel()

	// runID := uuid.New()
	// setups := []*models.Setup{
	// 	{
	// 		ID:        uuid.New(),
	// 		RunID:     runID,
	// 		Symbol:    "EURUSD",
	// 		Direction: models.DirectionLong,
	// 		TouchTime: time.Now().Add(-3 * time.Hour),
	// 		EntryTime: time.Now().Add(-2 * time.Hour),
	// 		Outcome:   models.OutcomeOpen,
	// 		CreatedAt: time.Now(),
	// 	},
	// }

	// if err := repos.Setup.SaveRun(ctx, setups); err != nil {
	// 	t.Fatalf("failed to save run: %v", err)
	// }

	// retrieved, err := repos.Setup.GetByRunID(ctx, runID)
	// if err != nil {
	// 	t.Fatalf("failed to retrieve run: %v", err)
	// }
	// if len(retrieved) != 1 {
	// 	t.Errorf("expected 1 setup, got %d", len(retrieved))
	// }
	t.Skip(skipIntegrationMsg)
}

// TestSweepRepositoryLatestRun tests latest-run retrieval ordering
func TestSweepRepositoryLatestRun(t *testing.T) {
	// db := database.SetupTestDB(t)
	// defer db.Close()

	// repos, err := NewRepositories(db)
	// if err != nil {
	// 	t.Fatalf("failed to create repositories: %v", err)
	// }

	// ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	// defer cancel()

	// runID := uuid.New()
	// results := []*models.SweepResult{
	// 	{ID: uuid.New(), RunID: runID, Multiplier: 2.2, Rank: 1, CreatedAt: time.Now()},
	// 	{ID: uuid.New(), RunID: runID, Multiplier: 1.8, Rank: 2, CreatedAt: time.Now()},
	// }

	// if err := repos.Sweep.SaveRun(ctx, results); err != nil {
	// 	t.Fatalf("failed to save sweep run: %v", err)
	// }

	// latest, err := repos.Sweep.GetLatestRun(ctx)
	// if err != nil {
	// 	t.Fatalf("failed to get latest run: %v", err)
	// }
	// if len(latest) != 2 {
	// 	t.Errorf("expected 2 sweep rows, got %d", len(latest))
	// }
	t.Skip(skipIntegrationMsg)
}
