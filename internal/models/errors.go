package models

import "errors"

// Custom errors
var (
	ErrEmptySeries          = errors.New("bar series is empty")
	ErrUnorderedSeries      = errors.New("timestamps not strictly increasing")
	ErrMissingTimestamp     = errors.New("timestamp is required")
	ErrIncompleteIndicators = errors.New("indicator fields not populated")
	ErrNotFound             = errors.New("record not found")
	ErrDuplicateKey         = errors.New("duplicate key violation")
	ErrInvalidID            = errors.New("invalid ID format")
)
