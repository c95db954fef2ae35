// Package main provides the entry point for the data ingestion service.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/mean-reverter/internal/config"
	"github.com/yourusername/mean-reverter/internal/database"
	"github.com/yourusername/mean-reverter/internal/datasource"
	"github.com/yourusername/mean-reverter/internal/health"
	"github.com/yourusername/mean-reverter/internal/logger"
	"github.com/yourusername/mean-reverter/internal/metrics"
	"github.com/yourusername/mean-reverter/internal/repository"
	"github.com/yourusername/mean-reverter/internal/scheduler"
	"github.com/yourusername/mean-reverter/internal/service"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Load AWS secrets if enabled
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			log.Fatalf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			log.Fatalf("Failed to load secrets: %v", err)
		}
	}

	// Validate configuration
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	appLog := logger.NewLogger(cfg.App.LogLevel)
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"log_level":   cfg.App.LogLevel,
		"version":     Version,
		"commit":      GitCommit,
	}).Info("Mean Reverter Data Ingestion Service starting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection
	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	appLog.Info("Database connection established")

	repos, err := repository.NewRepositories(db)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to initialize repositories")
	}

	metrics.InitRegistry()

	// Initialize data sources
	httpClient := buildHTTPClient(cfg, appLog)
	defer httpClient.Close()

	factory := datasource.NewFactory(cfg, appLog)
	sources, err := factory.NewDataSources(cfg.DataIngestion, httpClient)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to initialize data sources")
	}

	ingestionSvc := service.NewIngestionService(
		sources,
		repos.Candle,
		service.NewDataValidator(appLog),
		service.NewDataNormalizer(appLog),
		appLog,
		batchSizeFromConfig(cfg),
	)

	// Schedule recurring sync and live polling for every enabled source
	sched := scheduler.NewScheduler(ingestionSvc, appLog)
	for _, src := range cfg.DataIngestion.Sources {
		if !src.Enabled {
			continue
		}
		if err := sched.ScheduleHistoricalSync(
			cfg.DataIngestion.Schedule.HistoricalSync,
			src.Name, cfg.Strategy.Symbol, cfg.Strategy.Timeframe,
		); err != nil {
			appLog.WithError(err).WithField("source", src.Name).Fatal("Failed to schedule historical sync")
		}
		if err := sched.ScheduleLivePolling(
			cfg.DataIngestion.Schedule.LivePollingIntervalSeconds,
			src.Name, cfg.Strategy.Symbol, cfg.Strategy.Timeframe,
		); err != nil {
			appLog.WithError(err).WithField("source", src.Name).Fatal("Failed to schedule live polling")
		}
	}
	if err := sched.Start(); err != nil {
		appLog.WithError(err).Fatal("Failed to start scheduler")
	}
	defer func() {
		if err := sched.Stop(); err != nil {
			appLog.WithError(err).Error("Failed to stop scheduler")
		}
	}()

	// Connect the live candle stream when enabled
	var stream *datasource.StreamClient
	if cfg.Features.LiveStreamEnabled {
		stream = datasource.NewStreamClient(cfg.MarketData.StreamURL, cfg.MarketData.APIKey, appLog)
		stream.AddHandler(ingestionSvc.HandleStreamCandle)
		if err := connectStream(ctx, stream, cfg); err != nil {
			appLog.WithError(err).Fatal("Failed to connect candle stream")
		}
		defer stream.Close()
		appLog.WithField("url", cfg.MarketData.StreamURL).Info("Live candle stream connected")
	}

	// Start health check server with the metrics endpoint mounted
	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		metricsHandler = metrics.Handler()
	}
	healthServer := health.NewServer(health.Config{
		ServiceName: "data-ingestion",
		Version:     Version,
		Commit:      GitCommit,
		Logger:      appLog,
		DB:          db,
		Metrics:     metricsHandler,
	})
	if stream != nil {
		healthServer.RegisterCheck("stream", func(ctx context.Context) error {
			if !stream.IsConnected() {
				return fmt.Errorf("candle stream disconnected")
			}
			return nil
		})
	}
	if err := healthServer.Start(ctx); err != nil {
		appLog.WithError(err).Fatal("Failed to start health server")
	}
	healthServer.SetReady(true)
	defer healthServer.Shutdown()

	appLog.WithFields(logrus.Fields{
		"sources":  len(sources),
		"next_run": sched.GetNextRun().Format(time.RFC3339),
	}).Info("Data ingestion service running")

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan

	appLog.WithField("signal", sig).Info("Shutdown signal received")
	healthServer.SetReady(false)
	cancel()
}

func buildHTTPClient(cfg *config.Config, appLog *logrus.Logger) *datasource.RateLimitedHTTPClient {
	clientCfg := datasource.DefaultHTTPClientConfig()
	clientCfg.Timeout = time.Duration(cfg.MarketData.TimeoutSeconds) * time.Second
	clientCfg.MaxRetries = cfg.MarketData.RetryAttempts
	clientCfg.RateLimit = float64(cfg.MarketData.RequestsPerSecond)
	clientCfg.Burst = cfg.MarketData.Burst
	return datasource.NewRateLimitedHTTPClient(clientCfg, appLog)
}

// batchSizeFromConfig picks the first configured batch size among enabled
// sources. Zero falls back to the ingestion service default.
func batchSizeFromConfig(cfg *config.Config) int {
	for _, src := range cfg.DataIngestion.Sources {
		if src.Enabled && src.BatchSize > 0 {
			return src.BatchSize
		}
	}
	return 0
}

func connectStream(ctx context.Context, stream *datasource.StreamClient, cfg *config.Config) error {
	if err := stream.Connect(ctx); err != nil {
		return err
	}
	if err := stream.Authenticate(ctx); err != nil {
		return err
	}
	return stream.Subscribe(ctx, []string{cfg.Strategy.Symbol}, cfg.Strategy.Timeframe)
}
