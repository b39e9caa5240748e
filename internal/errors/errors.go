package errors

import (
	"fmt"
)

// SeekError is the structured error type for ReportSeek.
// It provides rich context for error handling, logging, and user presentation.
type SeekError struct {
	// Code is the unique error code (e.g., "ERR_301_STORE_UNAVAILABLE").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, Backend, etc.).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Retryable indicates if the operation can be retried by the caller.
	Retryable bool

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *SeekError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *SeekError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with SeekError.
func (e *SeekError) Is(target error) bool {
	if t, ok := target.(*SeekError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *SeekError) WithDetail(key, value string) *SeekError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
// Returns the error for method chaining.
func (e *SeekError) WithSuggestion(suggestion string) *SeekError {
	e.Suggestion = suggestion
	return e
}

// New creates a new SeekError with the given code and message.
// Category, severity, and retryable flag are derived from the code.
func New(code string, message string, cause error) *SeekError {
	return &SeekError{
		Code:      code,
		Message:   message,
		Category:  categoryFromCode(code),
		Severity:  severityFromCode(code),
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// Wrap creates a SeekError from an existing error.
// The error's message becomes the SeekError message.
func Wrap(code string, err error) *SeekError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// InvalidQuery creates a query validation error.
// Reported to the caller immediately, before any store access.
func InvalidQuery(message string) *SeekError {
	return New(ErrCodeInvalidQuery, message, nil)
}

// MalformedBoolean creates an error for a broken term/connective sequence.
func MalformedBoolean(message string) *SeekError {
	return New(ErrCodeMalformedBoolean, message, nil)
}

// StoreUnavailable creates a document store connectivity error.
// Distinct from "zero results", which is a valid outcome.
func StoreUnavailable(cause error) *SeekError {
	return New(ErrCodeStoreUnavailable, "document store unavailable", cause)
}

// SummarizerUnavailable creates a summarizer backend error.
func SummarizerUnavailable(cause error) *SeekError {
	return New(ErrCodeSummarizerUnavailable, "summarizer unavailable", cause)
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *SeekError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *SeekError {
	return New(ErrCodeInternal, message, cause)
}

// IsRetryable checks if an error is retryable.
// Returns true if the error is a SeekError with Retryable flag set.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if se, ok := err.(*SeekError); ok {
		return se.Retryable
	}
	return false
}

// IsFatal checks if an error has fatal severity.
// Fatal errors should abort the current operation.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	if se, ok := err.(*SeekError); ok {
		return se.Severity == SeverityFatal
	}
	return false
}

// GetCode extracts the error code from a SeekError.
// Returns empty string if not a SeekError.
func GetCode(err error) string {
	if se, ok := err.(*SeekError); ok {
		return se.Code
	}
	return ""
}

// GetCategory extracts the category from a SeekError.
// Returns empty string if not a SeekError.
func GetCategory(err error) Category {
	if se, ok := err.(*SeekError); ok {
		return se.Category
	}
	return ""
}
