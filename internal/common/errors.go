package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors. Message is the string shown
// to the user; Cause carries the sentinel plus any underlying detail.
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Failure taxonomy. Wrap these so errors.Is works across package boundaries.
var (
	ErrUnsupportedFileType   = errors.New("unsupported file type")
	ErrDependencyUnavailable = errors.New("extraction dependency unavailable")
	ErrExtractionFailed      = errors.New("extraction failed")
	ErrAnalysisRateLimited   = errors.New("analysis rate limited")
	ErrAnalysisFailed        = errors.New("analysis failed")
	ErrMatrixParse           = errors.New("matrix response is not a valid JSON array")
	ErrConversionFailed      = errors.New("citation conversion failed")
)

// NewAppError builds an AppError whose chain includes the given sentinel.
func NewAppError(code, message string, sentinel, cause error) *AppError {
	wrapped := sentinel
	if cause != nil {
		wrapped = fmt.Errorf("%w: %w", sentinel, cause)
	}
	return &AppError{Code: code, Message: message, Cause: wrapped}
}

// UserMessage returns the display string for an error: the AppError message
// when present, otherwise the raw error text.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var ae *AppError
	if errors.As(err, &ae) && ae.Message != "" {
		return ae.Message
	}
	return err.Error()
}
