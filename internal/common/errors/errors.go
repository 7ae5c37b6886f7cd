// Package errors provides the standardized error taxonomy of the query gateway.
package errors

import (
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
	ErrCodeInvalidInput     ErrorCode = "INVALID_INPUT"
	ErrCodeMissingQueryText ErrorCode = "MISSING_QUERY_TEXT"
	ErrCodeGenerationFailed ErrorCode = "GENERATION_FAILED"
)

// User-visible messages rendered into the response envelope.
const (
	MessageInvalidInput     = "Invalid JSON input. Please ensure your request body is properly formatted."
	MessageMissingQueryText = "Missing 'input.text' in request body."
	messageErrorPrefix      = "Error: "
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// UserMessage returns the text placed in the response envelope for this error.
func (e *StandardError) UserMessage() string {
	switch e.Code {
	case ErrCodeInvalidInput:
		return MessageInvalidInput
	case ErrCodeMissingQueryText:
		return MessageMissingQueryText
	default:
		return messageErrorPrefix + e.Details
	}
}

// IsExpected reports whether the error is an ordinary outcome rather than a fault.
// Expected outcomes are logged at info level only.
func (e *StandardError) IsExpected() bool {
	return e.Code == ErrCodeMissingQueryText
}

// ==========================
// 2. Error Constructors
// ==========================

// NewInvalidInputError wraps a decode or schema failure of the incoming payload.
func NewInvalidInputError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInput,
		Message:   "Request payload is not a valid query document",
		Details:   err.Error(),
		Timestamp: time.Now().UTC(),
	}
}

// NewMissingQueryTextError is returned when input.text is absent or blank.
func NewMissingQueryTextError() *StandardError {
	return &StandardError{
		Code:      ErrCodeMissingQueryText,
		Message:   "Query text is missing",
		Timestamp: time.Now().UTC(),
	}
}

// NewGenerationFailedError wraps any failure during or after the generation call.
// Details carry the failure text verbatim; it is shown to the caller.
func NewGenerationFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeGenerationFailed,
		Message:   "Knowledge base generation failed",
		Details:   err.Error(),
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "MISSING"):
		return "VALIDATION"
	case strings.Contains(codeStr, "GENERATION"):
		return "AI"
	default:
		return "OTHER"
	}
}
