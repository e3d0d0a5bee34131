// Package errors defines the coded application errors shared across packages.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrCode represents an error code
type ErrCode string

const (
	ErrCodeInvalidConfig   ErrCode = "INVALID_CONFIG"
	ErrCodeMalformedRecord ErrCode = "MALFORMED_RECORD"
	ErrCodeFetchFailed     ErrCode = "FETCH_FAILED"
	ErrCodeRenderFailed    ErrCode = "RENDER_FAILED"
)

// AppError represents an application error
type AppError struct {
	Code    ErrCode
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewInvalidConfigError creates an error for a rejected configuration value.
// field names the offending setting (flag, env var or config key).
func NewInvalidConfigError(field, message string) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidConfig,
		Message: fmt.Sprintf("%s: %s", field, message),
	}
}

// NewMalformedRecordError creates an error for a record missing a field the
// metric computation depends on.
func NewMalformedRecordError(kind, id, field string) *AppError {
	return &AppError{
		Code:    ErrCodeMalformedRecord,
		Message: fmt.Sprintf("%s %s is missing %s", kind, id, field),
	}
}

// NewFetchError wraps a failure of the record source.
func NewFetchError(message string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeFetchFailed,
		Message: message,
		Err:     err,
	}
}

// NewRenderError wraps a failure while writing a report.
func NewRenderError(message string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeRenderFailed,
		Message: message,
		Err:     err,
	}
}

func hasCode(err error, code ErrCode) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// IsInvalidConfig checks if the error is an invalid configuration error
func IsInvalidConfig(err error) bool {
	return hasCode(err, ErrCodeInvalidConfig)
}

// IsMalformedRecord checks if the error is a malformed record error
func IsMalformedRecord(err error) bool {
	return hasCode(err, ErrCodeMalformedRecord)
}

// IsFetchFailed checks if the error came from the record source
func IsFetchFailed(err error) bool {
	return hasCode(err, ErrCodeFetchFailed)
}
