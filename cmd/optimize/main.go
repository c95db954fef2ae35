// Package main provides the entry point for the multiplier sweep CLI.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/mean-reverter/internal/backtest"
	"github.com/yourusername/mean-reverter/internal/config"
	"github.com/yourusername/mean-reverter/internal/database"
	"github.com/yourusername/mean-reverter/internal/datasource"
	"github.com/yourusername/mean-reverter/internal/logger"
	"github.com/yourusername/mean-reverter/internal/models"
	"github.com/yourusername/mean-reverter/internal/repository"
	"github.com/yourusername/mean-reverter/internal/service"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile string
	csvFile    string
	startDate  string
	endDate    string

	appLog *logrus.Logger
	cfg    *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&csvFile, "csv", "", "Read candles from a CSV file instead of the database")
	rootCmd.PersistentFlags().StringVar(&startDate, "start-date", "", "Override start date (YYYY-MM-DD)")
	rootCmd.PersistentFlags().StringVar(&endDate, "end-date", "", "Override end date (YYYY-MM-DD)")
}

var rootCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Sweep entry ATR multipliers to find the best-performing configuration",
	Long:  `Runs the detection engine across a range of entry ATR multipliers, ranks the results by expectancy, and compares the best configuration against the baseline.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSweep()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig() error {
	var err error
	cfg, err = config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return fmt.Errorf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	appLog = logger.NewLogger(cfg.App.LogLevel)
	return nil
}

func runSweep() error {
	ctx := context.Background()

	detection, err := backtest.FromConfig(&cfg.Strategy)
	if err != nil {
		return err
	}
	if err := applyDateOverrides(&detection); err != nil {
		return err
	}

	builder, err := service.NewSeriesBuilder(cfg.Indicators, appLog)
	if err != nil {
		return fmt.Errorf("invalid indicator config: %w", err)
	}

	appLog.WithFields(logrus.Fields{
		"symbol":   cfg.Strategy.Symbol,
		"start":    cfg.Sweep.Start,
		"end":      cfg.Sweep.End,
		"step":     cfg.Sweep.Step,
		"baseline": cfg.Sweep.Baseline,
		"version":  Version,
	}).Info("Starting multiplier sweep")

	var report *backtest.SweepReport
	if csvFile != "" {
		svc := service.NewBacktestService(cfg, nil, builder, appLog)
		series, seriesErr := buildSeriesFromCSV(ctx, builder, detection)
		if seriesErr != nil {
			return seriesErr
		}
		report, err = svc.RunSweepOn(ctx, series, detection)
	} else {
		db, dbErr := database.Initialize(ctx, cfg)
		if dbErr != nil {
			return fmt.Errorf("failed to initialize database: %w", dbErr)
		}
		defer db.Close()

		repos, repoErr := repository.NewRepositories(db)
		if repoErr != nil {
			return fmt.Errorf("failed to initialize repositories: %w", repoErr)
		}
		svc := service.NewBacktestService(cfg, repos, builder, appLog)
		report, err = svc.RunSweep(ctx)
	}
	if err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}

	fmt.Println(backtest.GenerateSweepReport(report))
	return nil
}

func applyDateOverrides(detection *backtest.DetectionConfig) error {
	if startDate != "" {
		parsed, err := time.Parse("2006-01-02", startDate)
		if err != nil {
			return fmt.Errorf("invalid start date: %w", err)
		}
		detection.StartDate = parsed
	}
	if endDate != "" {
		parsed, err := time.Parse("2006-01-02", endDate)
		if err != nil {
			return fmt.Errorf("invalid end date: %w", err)
		}
		detection.EndDate = parsed
	}
	return nil
}

func buildSeriesFromCSV(ctx context.Context, builder *service.SeriesBuilder, detection backtest.DetectionConfig) (*models.BarSeries, error) {
	source := datasource.NewCSVSource(csvFile, true)
	raw, err := source.FetchCandles(ctx, cfg.Strategy.Symbol, cfg.Strategy.Timeframe, time.Time{}, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to read candle file: %w", err)
	}

	normalizer := service.NewDataNormalizer(appLog)
	candles, skipped := normalizer.NormalizeBatch(raw)
	if skipped > 0 {
		appLog.WithField("skipped", skipped).Warn("Skipped malformed candles from file")
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("no usable candles in %s", csvFile)
	}

	return builder.Build(cfg.Strategy.Symbol, cfg.Strategy.Timeframe, candles, detection.EntryMultiplier, detection.StopMultiplier)
}
