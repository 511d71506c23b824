// Package errors provides standardized error handling for the botaniq services.
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Plant fact store
	ErrCodeFactFileNotFound  ErrorCode = "FACT_FILE_NOT_FOUND"
	ErrCodeFactDataMalformed ErrorCode = "FACT_DATA_MALFORMED"
	ErrCodeUnexpected        ErrorCode = "UNEXPECTED_ERROR"

	// Plant identification
	ErrCodeIdentificationInputInvalid ErrorCode = "IDENTIFICATION_INPUT_INVALID"
	ErrCodeSpeciesNotFound            ErrorCode = "SPECIES_NOT_FOUND"
	ErrCodeIdentificationFailed       ErrorCode = "IDENTIFICATION_FAILED"

	// Conversational agent
	ErrCodeIntentDetectionFailed  ErrorCode = "INTENT_DETECTION_FAILED"
	ErrCodeIntentDetectionTimeout ErrorCode = "INTENT_DETECTION_TIMEOUT"
	ErrCodeChatInputInvalid       ErrorCode = "CHAT_INPUT_INVALID"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause so errors.Is keeps working on
// service sentinels wrapped into a StandardError.
func (e *StandardError) Unwrap() error {
	return e.cause
}

// ==========================
// 2. Error Constructors
// ==========================

// NewFactFileNotFoundError reports a missing plant data file.
func NewFactFileNotFoundError(path string, cause error) *StandardError {
	return &StandardError{
		Code:      ErrCodeFactFileNotFound,
		Message:   "Plant care data file not found",
		Details:   fmt.Sprintf("path: %s", path),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// NewFactDataMalformedError reports a plant data file that is not valid JSON
// or does not match the plant data schema.
func NewFactDataMalformedError(details string, cause error) *StandardError {
	return &StandardError{
		Code:      ErrCodeFactDataMalformed,
		Message:   "Could not decode plant care data",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// NewUnexpectedError is the catch-all.
func NewUnexpectedError(cause error) *StandardError {
	details := ""
	if cause != nil {
		details = cause.Error()
	}
	return &StandardError{
		Code:      ErrCodeUnexpected,
		Message:   "Unexpected error",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// NewIdentificationInputInvalidError creates a non-retryable upload validation error.
func NewIdentificationInputInvalidError(message string, cause error) *StandardError {
	return &StandardError{
		Code:      ErrCodeIdentificationInputInvalid,
		Message:   message,
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// NewSpeciesNotFoundError is returned when the identification API has no match.
func NewSpeciesNotFoundError(cause error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSpeciesNotFound,
		Message:   "Species not found",
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// NewIdentificationFailedError creates a retryable identification API error.
func NewIdentificationFailedError(cause error) *StandardError {
	return &StandardError{
		Code:      ErrCodeIdentificationFailed,
		Message:   "Plant identification API error",
		Details:   errDetails(cause),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// NewIntentDetectionFailedError creates a retryable detect-intent error.
func NewIntentDetectionFailedError(cause error) *StandardError {
	return &StandardError{
		Code:      ErrCodeIntentDetectionFailed,
		Message:   "Intent detection API error",
		Details:   errDetails(cause),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// NewIntentDetectionTimeoutError creates a retryable detect-intent timeout error.
func NewIntentDetectionTimeoutError(cause error) *StandardError {
	return &StandardError{
		Code:      ErrCodeIntentDetectionTimeout,
		Message:   "Intent detection API timeout",
		Details:   "API call exceeded timeout threshold",
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// NewChatInputInvalidError creates a non-retryable chat request error.
func NewChatInputInvalidError(message string) *StandardError {
	return &StandardError{
		Code:      ErrCodeChatInputInvalid,
		Message:   message,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func errDetails(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// ==========================
// 3. Utility Functions
// ==========================

// AsStandardError returns the first StandardError in err's chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// CodeOf returns the error code of err, or UNEXPECTED_ERROR.
func CodeOf(err error) ErrorCode {
	if stdErr, ok := AsStandardError(err); ok {
		return stdErr.Code
	}
	return ErrCodeUnexpected
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	switch code {
	case ErrCodeIdentificationFailed, ErrCodeIntentDetectionFailed, ErrCodeIntentDetectionTimeout:
		return true
	default:
		return false
	}
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "FACT_"):
		return "PLANT_DATA"
	case strings.Contains(codeStr, "IDENTIFICATION") || strings.Contains(codeStr, "SPECIES"):
		return "IDENTIFICATION"
	case strings.Contains(codeStr, "INTENT") || strings.Contains(codeStr, "CHAT"):
		return "CONVERSATION"
	default:
		return "OTHER"
	}
}
