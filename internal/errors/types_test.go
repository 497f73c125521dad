package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorType_String(t *testing.T) {
	tests := []struct {
		name      string
		errorType ErrorType
		expected  string
	}{
		{"Validation", ErrorTypeValidation, "validation"},
		{"NotFound", ErrorTypeNotFound, "not_found"},
		{"Database", ErrorTypeDatabase, "database"},
		{"InvalidInput", ErrorTypeInvalidInput, "invalid_input"},
		{"Timeout", ErrorTypeTimeout, "timeout"},
		{"Permission", ErrorTypePermission, "permission"},
		{"Conflict", ErrorTypeConflict, "conflict"},
		{"Unknown", ErrorType(999), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.errorType.String())
		})
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appError *AppError
		expected string
	}{
		{
			name:     "error without cause",
			appError: &AppError{Type: ErrorTypeConflict, Message: "entry is already running"},
			expected: "conflict: entry is already running",
		},
		{
			name: "error with cause",
			appError: &AppError{
				Type:    ErrorTypeDatabase,
				Message: "connection failed",
				Cause:   errors.New("disk full"),
			},
			expected: "database: connection failed (caused by: disk full)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.appError.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("original error")
	appError := &AppError{Type: ErrorTypeDatabase, Message: "wrapped", Cause: cause}

	assert.Same(t, cause, appError.Unwrap())
	assert.ErrorIs(t, appError, cause)
}

func TestAppError_Is(t *testing.T) {
	err := NewNoRunningTimerError(7)

	assert.True(t, errors.Is(err, &AppError{Type: ErrorTypeNotFound, Code: CodeNoRunningTimer}))
	assert.False(t, errors.Is(err, &AppError{Type: ErrorTypeNotFound, Code: "NOT_FOUND"}))
	assert.False(t, errors.Is(err, errors.New("no running timer")))
}

func TestAppError_Context(t *testing.T) {
	appError := &AppError{Type: ErrorTypeConflict}

	_, ok := appError.GetContext("entry_id")
	assert.False(t, ok)

	appError.WithContext("entry_id", int64(42))
	value, ok := appError.GetContext("entry_id")
	assert.True(t, ok)
	assert.Equal(t, int64(42), value)
}
