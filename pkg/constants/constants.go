package constants

import "time"

// Application constants
const (
	// Application metadata
	AppName        = "confaudit"
	AppDescription = "Configuration Data Quality Analysis Service"
	AppVersion     = "0.1.0"

	// API constants
	APIVersion = "v1"
	APIPrefix  = "/api/v1"

	// Default configuration values
	DefaultPort            = 8080
	DefaultMetricsPort     = 9090
	DefaultHost            = "0.0.0.0"
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "json"
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// Scoring: points deducted from 100 per violation, floored at 0.
	// Fixed weights keep the score a pure function of the violation list.
	MaxQualityScore      = 100
	WeightCritical       = 15
	WeightHigh           = 8
	WeightMedium         = 3
	WeightLow            = 1
	DefaultScoreThreshold = 70

	// Reader defaults
	MaxUploadSize          = 100 * 1024 * 1024 // 100MB
	HeaderDedupSuffix      = "_"
	DefaultSheetName       = "Sheet1"
	DocumentExtractionMethod = "pattern"

	// Document extraction field names
	FieldExtractionMethod = "extraction_method"
	FieldConfidence       = "confidence"
	FieldErrorText        = "error"
	FieldSolutionText     = "solution"
	FieldLineNumber       = "line_number"
)
