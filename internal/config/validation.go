// Package config provides configuration management for the Mean Reverter application.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	_ = v.RegisterValidation("environment", validateEnvironment)
	_ = v.RegisterValidation("loglevel", validateLogLevel)
	_ = v.RegisterValidation("datestring", validateDateString)
	_ = v.RegisterValidation("timeframe", validateTimeframe)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	cv := NewValidator()
	return cv.Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	err := cv.validator.Struct(cfg)
	if err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	return validateCrossField(cfg)
}

// validateEnvironment validates the environment field
func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

// validateLogLevel validates the log level field
func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

// validateDateString validates YYYY-MM-DD date strings
func validateDateString(fl validator.FieldLevel) bool {
	_, err := time.Parse("2006-01-02", fl.Field().String())
	return err == nil
}

// validateTimeframe validates bar timeframe identifiers
func validateTimeframe(fl validator.FieldLevel) bool {
	validTimeframes := map[string]bool{
		"M5": true, "M15": true, "M30": true,
		"H1": true, "H4": true, "D1": true,
	}
	return validTimeframes[fl.Field().String()]
}

// validateCrossField performs cross-field validations
func validateCrossField(cfg *Config) error {
	startDate, err := time.Parse("2006-01-02", cfg.Strategy.StartDate)
	if err != nil {
		return fmt.Errorf("invalid strategy start_date format: %w", err)
	}
	endDate, err := time.Parse("2006-01-02", cfg.Strategy.EndDate)
	if err != nil {
		return fmt.Errorf("invalid strategy end_date format: %w", err)
	}
	if !startDate.Before(endDate) {
		return fmt.Errorf("strategy start_date must be before end_date")
	}

	if cfg.Strategy.EntryMultiplier >= cfg.Strategy.StopMultiplier {
		return fmt.Errorf("entry_multiplier must be below stop_multiplier")
	}
	if cfg.Strategy.UseDirectionalFilter && cfg.Strategy.DirectionalSpreadMax <= 0 {
		return fmt.Errorf("directional_spread_max must be positive when use_directional_filter is set")
	}

	if cfg.Sweep.End < cfg.Sweep.Start {
		return fmt.Errorf("sweep end must not be below sweep start")
	}
	if cfg.Sweep.End >= cfg.Strategy.StopMultiplier {
		return fmt.Errorf("sweep range must stay below stop_multiplier")
	}
	if cfg.Sweep.Baseline < cfg.Sweep.Start || cfg.Sweep.Baseline > cfg.Sweep.End {
		return fmt.Errorf("sweep baseline must lie inside the swept range")
	}

	if cfg.IsProduction() && cfg.Database.SSLMode == "disable" {
		return fmt.Errorf("production environment requires SSL mode to be 'require' or 'verify-full'")
	}
	if cfg.Database.MaxIdleConnections > cfg.Database.MaxConnections {
		return fmt.Errorf("max_idle_connections cannot exceed max_connections")
	}

	return nil
}

// formatValidationErrors formats validation errors into a readable string
func formatValidationErrors(validationErrors validator.ValidationErrors) error {
	var errMsg string
	for _, fieldError := range validationErrors {
		field := fieldError.StructField()
		tag := fieldError.Tag()
		value := fieldError.Value()

		switch tag {
		case "required":
			errMsg += fmt.Sprintf("- Field '%s' is required\n", field)
		case "url":
			errMsg += fmt.Sprintf("- Field '%s' must be a valid URL, got '%v'\n", field, value)
		case "min", "max":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: %s constraint violated\n", field, tag)
		case "gt", "gte", "lt", "lte":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: numeric constraint %s violated\n", field, tag)
		case "environment":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: development, staging, production\n", field)
		case "loglevel":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: debug, info, warn, error\n", field)
		case "timeframe":
			errMsg += fmt.Sprintf("- Field '%s' must be a supported timeframe (M5-D1), got '%v'\n", field, value)
		case "datestring":
			errMsg += fmt.Sprintf("- Field '%s' must be a YYYY-MM-DD date, got '%v'\n", field, value)
		case "oneof":
			errMsg += fmt.Sprintf("- Field '%s' has invalid value '%v'\n", field, value)
		default:
			errMsg += fmt.Sprintf("- Field '%s' failed validation: %s\n", field, tag)
		}
	}
	return fmt.Errorf("configuration validation failed:\n%s", errMsg)
}
