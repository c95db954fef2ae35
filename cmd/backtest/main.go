// Package main provides the entry point for the detection CLI tool.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/mean-reverter/internal/backtest"
	"github.com/yourusername/mean-reverter/internal/config"
	"github.com/yourusername/mean-reverter/internal/database"
	"github.com/yourusername/mean-reverter/internal/datasource"
	"github.com/yourusername/mean-reverter/internal/models"
	"github.com/yourusername/mean-reverter/internal/repository"
	"github.com/yourusername/mean-reverter/internal/service"
)

func main() {
	var (
		configPath = flag.String("config", "config/config.yaml", "Path to config file")
		csvPath    = flag.String("csv", "", "Read candles from a CSV file instead of the database")
		startDate  = flag.String("start-date", "", "Override start date (YYYY-MM-DD)")
		endDate    = flag.String("end-date", "", "Override end date (YYYY-MM-DD)")
		multiplier = flag.Float64("multiplier", 0, "Override entry ATR multiplier")
		output     = flag.String("output", "", "Override output directory for CSV exports")
	)
	flag.Parse()

	logger := newLogger()
	ctx := context.Background()

	cfg := loadConfigWithSecrets(*configPath, logger)
	if *output != "" {
		cfg.Strategy.OutputPath = *output
	}
	detection := buildDetectionConfig(cfg, *startDate, *endDate, *multiplier, logger)

	builder, err := service.NewSeriesBuilder(cfg.Indicators, logger)
	if err != nil {
		logger.Fatalf("Invalid indicator config: %v", err)
	}

	logger.WithFields(logrus.Fields{
		"symbol":           cfg.Strategy.Symbol,
		"timeframe":        cfg.Strategy.Timeframe,
		"entry_multiplier": detection.EntryMultiplier,
	}).Info("Starting detection run")

	var result *backtest.RunResult
	if *csvPath != "" {
		svc := service.NewBacktestService(cfg, nil, builder, logger)
		series := loadSeriesFromCSV(ctx, cfg, builder, detection, *csvPath, logger)
		result, err = svc.RunDetectionOn(ctx, series, detection)
	} else {
		db, dbErr := database.Initialize(ctx, cfg)
		if dbErr != nil {
			logger.Fatalf("Failed to initialize database: %v", dbErr)
		}
		defer db.Close()

		repos, repoErr := repository.NewRepositories(db)
		if repoErr != nil {
			logger.Fatalf("Failed to initialize repositories: %v", repoErr)
		}
		svc := service.NewBacktestService(cfg, repos, builder, logger)
		result, err = svc.RunDetection(ctx)
	}
	if err != nil {
		logger.Fatalf("Detection run failed: %v", err)
	}

	fmt.Println(backtest.GenerateRunReport(result))
}

func newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	return logger
}

func loadConfigWithSecrets(path string, logger *logrus.Logger) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			logger.Fatalf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			logger.Fatalf("Failed to load secrets: %v", err)
		}
	}
	if err := config.Validate(cfg); err != nil {
		logger.Fatalf("Invalid configuration: %v", err)
	}
	return cfg
}

func buildDetectionConfig(cfg *config.Config, startOverride, endOverride string, multiplier float64, logger *logrus.Logger) backtest.DetectionConfig {
	detection, err := backtest.FromConfig(&cfg.Strategy)
	if err != nil {
		logger.Fatalf("Invalid strategy config: %v", err)
	}
	if startOverride != "" {
		parsed, err := time.Parse("2006-01-02", startOverride)
		if err != nil {
			logger.Fatalf("Invalid start date: %v", err)
		}
		detection.StartDate = parsed
	}
	if endOverride != "" {
		parsed, err := time.Parse("2006-01-02", endOverride)
		if err != nil {
			logger.Fatalf("Invalid end date: %v", err)
		}
		detection.EndDate = parsed
	}
	if multiplier > 0 {
		detection.EntryMultiplier = multiplier
	}
	return detection
}

// loadSeriesFromCSV builds the enriched series from a local candle file. The
// whole file is read so indicator warm-up happens on candles before the window.
func loadSeriesFromCSV(ctx context.Context, cfg *config.Config, builder *service.SeriesBuilder, detection backtest.DetectionConfig, path string, logger *logrus.Logger) *models.BarSeries {
	source := datasource.NewCSVSource(path, true)
	raw, err := source.FetchCandles(ctx, cfg.Strategy.Symbol, cfg.Strategy.Timeframe, time.Time{}, time.Now().UTC())
	if err != nil {
		logger.Fatalf("Failed to read candle file: %v", err)
	}

	normalizer := service.NewDataNormalizer(logger)
	candles, skipped := normalizer.NormalizeBatch(raw)
	if skipped > 0 {
		logger.WithField("skipped", skipped).Warn("Skipped malformed candles from file")
	}
	if len(candles) == 0 {
		logger.Fatalf("No usable candles in %s", path)
	}

	series, err := builder.Build(cfg.Strategy.Symbol, cfg.Strategy.Timeframe, candles, detection.EntryMultiplier, detection.StopMultiplier)
	if err != nil {
		logger.Fatalf("Failed to build series: %v", err)
	}
	return series
}
