// Package errors provides structured error handling for ReportSeek.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: IO errors (file, disk)
//   - 3XX: Backend errors (document store, summarizer)
//   - 4XX: Validation errors (query shape)
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates file and disk I/O errors.
	CategoryIO Category = "IO"
	// CategoryBackend indicates document store or summarizer failures.
	CategoryBackend Category = "BACKEND"
	// CategoryValidation indicates query validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"

	// IO errors (200-299)
	ErrCodeFileNotFound  = "ERR_201_FILE_NOT_FOUND"
	ErrCodeCacheCorrupt  = "ERR_202_CACHE_CORRUPT"
	ErrCodeIngestLocked  = "ERR_203_INGEST_LOCKED"
	ErrCodeHistoryFailed = "ERR_204_HISTORY_FAILED"

	// Backend errors (300-399)
	ErrCodeStoreUnavailable      = "ERR_301_STORE_UNAVAILABLE"
	ErrCodeSummarizerUnavailable = "ERR_302_SUMMARIZER_UNAVAILABLE"

	// Validation errors (400-499)
	ErrCodeInvalidQuery     = "ERR_401_INVALID_QUERY"
	ErrCodeMalformedBoolean = "ERR_402_MALFORMED_BOOLEAN"
	ErrCodeInvalidRange     = "ERR_403_INVALID_RANGE"

	// Internal errors (500-599)
	ErrCodeInternal        = "ERR_501_INTERNAL"
	ErrCodeScoringDegraded = "ERR_502_SCORING_DEGRADED"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	// Extract the leading digit of the numeric portion
	// (e.g., "3" from "ERR_301_STORE_UNAVAILABLE").
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	case '3':
		return CategoryBackend
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeCacheCorrupt:
		return SeverityFatal
	case ErrCodeScoringDegraded:
		// Degraded scoring is loggable but never fatal: result quality
		// drops, the search still answers.
		return SeverityWarning
	}

	if isRetryableCode(code) {
		return SeverityWarning
	}

	return SeverityError
}

// isRetryableCode checks if an error code represents a retryable error.
// The core never retries internally; the flag tells the calling layer
// whether its own retry policy applies.
func isRetryableCode(code string) bool {
	switch code {
	case ErrCodeStoreUnavailable, ErrCodeSummarizerUnavailable, ErrCodeIngestLocked:
		return true
	default:
		return false
	}
}
