// internal/common/errors/handler.go
package errors

import (
	stderrors "errors"
	"time"
)

// ErrorHandler normalizes pipeline errors and logs them according to the taxonomy.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Info(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle normalizes err, logs it and returns the StandardError to render.
func (h *ErrorHandler) Handle(err error, fields map[string]interface{}) *StandardError {
	stdErr := Normalize(err)
	h.logError(stdErr, fields)
	return stdErr
}

// Normalize ensures we always have a StandardError. Anything that is not already
// classified is treated as a generation failure.
func Normalize(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeGenerationFailed,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Timestamp: time.Now().UTC(),
	}
}

func (h *ErrorHandler) logError(stdErr *StandardError, fields map[string]interface{}) {
	out := make(map[string]interface{}, len(fields)+4)
	for k, v := range fields {
		out[k] = v
	}
	out["errorCode"] = string(stdErr.Code)
	out["errorCategory"] = GetErrorCategory(stdErr.Code)

	if stdErr.IsExpected() {
		h.logger.Info("Request rejected", out)
		return
	}

	out["message"] = stdErr.Message
	out["details"] = stdErr.Details
	h.logger.Error("Request failed", out)
}
