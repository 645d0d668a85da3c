package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAppErrorKeepsSentinelInChain(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewAppError("ANALYSIS_FAILED", "Không thể phân tích tài liệu.", ErrAnalysisFailed, cause)

	assert.True(t, errors.Is(err, ErrAnalysisFailed))
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "ANALYSIS_FAILED")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestNewAppErrorWithoutCause(t *testing.T) {
	err := NewAppError("UNSUPPORTED_FILE_TYPE", "Loại tệp không được hỗ trợ.", ErrUnsupportedFileType, nil)

	assert.True(t, errors.Is(err, ErrUnsupportedFileType))
	assert.Equal(t, "UNSUPPORTED_FILE_TYPE: Loại tệp không được hỗ trợ.", err.Error())
}

func TestUserMessage(t *testing.T) {
	appErr := NewAppError("RATE_LIMITED", "Vui lòng đợi và thử lại sau.", ErrAnalysisRateLimited, nil)

	assert.Equal(t, "Vui lòng đợi và thử lại sau.", UserMessage(appErr))
	assert.Equal(t, "Vui lòng đợi và thử lại sau.", UserMessage(fmt.Errorf("analyze: %w", appErr)))
	assert.Equal(t, "plain failure", UserMessage(errors.New("plain failure")))
	assert.Equal(t, "", UserMessage(nil))
}

func TestUserMessageEmptyAppErrorMessage(t *testing.T) {
	err := &AppError{Code: "X", Cause: ErrExtractionFailed}
	require.NotEmpty(t, err.Error())
	assert.Equal(t, err.Error(), UserMessage(err))
}
