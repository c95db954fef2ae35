// Package config provides configuration management for the Mean Reverter application.
package config

import (
	"fmt"
)

// Config represents the complete application configuration
type Config struct {
	App           AppConfig           `mapstructure:"app" validate:"required"`
	Database      DatabaseConfig      `mapstructure:"database" validate:"required"`
	MarketData    MarketDataConfig    `mapstructure:"market_data" validate:"required"`
	Indicators    IndicatorsConfig    `mapstructure:"indicators" validate:"required"`
	Strategy      StrategyConfig      `mapstructure:"strategy" validate:"required"`
	Sweep         SweepConfig         `mapstructure:"sweep" validate:"required"`
	DataIngestion DataIngestionConfig `mapstructure:"data_ingestion" validate:"required"`
	Metrics       MetricsConfig       `mapstructure:"metrics" validate:"required"`
	Features      FeaturesConfig      `mapstructure:"features"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host" validate:"required"`
	Port               int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required"`
	User               string `mapstructure:"user" validate:"required"`
	Password           string `mapstructure:"password" validate:"required"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"required,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"required,gt=0"`
}

// MarketDataConfig represents the market-data provider configuration
type MarketDataConfig struct {
	APIURL            string `mapstructure:"api_url" validate:"required,url"`
	StreamURL         string `mapstructure:"stream_url" validate:"required"`
	APIKey            string `mapstructure:"api_key"`
	TimeoutSeconds    int    `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	RequestsPerSecond int    `mapstructure:"requests_per_second" validate:"required,gt=0"`
	Burst             int    `mapstructure:"burst" validate:"required,gt=0"`
	RetryAttempts     int    `mapstructure:"retry_attempts" validate:"gte=0"`
}

// IndicatorsConfig represents indicator calculation configuration
type IndicatorsConfig struct {
	EMAPeriod     int     `mapstructure:"ema_period" validate:"required,gt=0"`
	ATRPeriod     int     `mapstructure:"atr_period" validate:"required,gt=0"`
	ADXPeriod     int     `mapstructure:"adx_period" validate:"required,gt=0"`
	RSIPeriod     int     `mapstructure:"rsi_period" validate:"required,gt=0"`
	ATRAdjustment float64 `mapstructure:"atr_adjustment" validate:"required,gt=0"`
}

// StrategyConfig represents the detection-run configuration
type StrategyConfig struct {
	Symbol               string  `mapstructure:"symbol" validate:"required"`
	Timeframe            string  `mapstructure:"timeframe" validate:"required,timeframe"`
	StartDate            string  `mapstructure:"start_date" validate:"required,datestring"`
	EndDate              string  `mapstructure:"end_date" validate:"required,datestring"`
	EntryMultiplier      float64 `mapstructure:"entry_multiplier" validate:"required,gt=0"`
	StopMultiplier       float64 `mapstructure:"stop_multiplier" validate:"required,gt=0"`
	MinCandlesAway       int     `mapstructure:"min_candles_away" validate:"gte=0"`
	UseDirectionalFilter bool    `mapstructure:"use_directional_filter"`
	DirectionalSpreadMax float64 `mapstructure:"directional_spread_max" validate:"gte=0"`
	PipFactor            float64 `mapstructure:"pip_factor" validate:"gte=0"`
	OutputPath           string  `mapstructure:"output_path" validate:"required"`
}

// SweepConfig represents the multiplier sweep configuration
type SweepConfig struct {
	Start    float64 `mapstructure:"start" validate:"required,gt=0"`
	End      float64 `mapstructure:"end" validate:"required,gt=0"`
	Step     float64 `mapstructure:"step" validate:"required,gt=0"`
	Baseline float64 `mapstructure:"baseline" validate:"required,gt=0"`
}

// DataIngestionConfig represents data ingestion configuration
type DataIngestionConfig struct {
	Sources  []DataSourceConfig `mapstructure:"sources" validate:"required,min=1"`
	Schedule ScheduleConfig     `mapstructure:"schedule" validate:"required"`
}

// DataSourceConfig represents a single data source configuration
type DataSourceConfig struct {
	Name      string `mapstructure:"name" validate:"required"`
	Enabled   bool   `mapstructure:"enabled"`
	BatchSize int    `mapstructure:"batch_size" validate:"omitempty,gt=0"`
	APIKey    string `mapstructure:"api_key"`
	FilePath  string `mapstructure:"file_path"`
}

// ScheduleConfig represents data ingestion scheduling
type ScheduleConfig struct {
	HistoricalSync             string `mapstructure:"historical_sync" validate:"required"`
	LivePollingIntervalSeconds int    `mapstructure:"live_polling_interval_seconds" validate:"required,gt=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// FeaturesConfig represents feature flags
type FeaturesConfig struct {
	PersistenceEnabled bool `mapstructure:"persistence_enabled"`
	LiveStreamEnabled  bool `mapstructure:"live_stream_enabled"`
	SeriesCacheEnabled bool `mapstructure:"series_cache_enabled"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}
