package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"solardash/domain/core"
	"solardash/domain/dataset"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   appErr,
		}
	}
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode adds an error code to an existing error
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    code,
			Message: appErr.Message,
			Cause:   appErr.Cause,
		}
	}
	return &AppError{
		Code:    code,
		Message: err.Error(),
		Cause:   err,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetCode returns the error code if it's an AppError, otherwise returns "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// Classify maps domain errors onto error codes
func Classify(err error) string {
	switch {
	case err == nil:
		return ""
	case stderrors.Is(err, dataset.ErrLoad):
		return CodeLoadError
	case stderrors.Is(err, dataset.ErrInvalidSelection):
		return CodeInvalidSelection
	case stderrors.Is(err, core.ErrSessionNotFound):
		return CodeSessionNotFound
	case stderrors.Is(err, core.ErrCatalogDisabled):
		return CodeCatalogDisabled
	case stderrors.Is(err, core.ErrNoDataset):
		return CodeNotFound
	case stderrors.Is(err, core.ErrNotFound):
		return CodeNotFound
	case stderrors.Is(err, core.ErrUnsupportedInput):
		return CodeInvalidInput
	}
	if code := GetCode(err); code != "UNKNOWN" {
		return code
	}
	return CodeInternalError
}

// HTTPStatus maps an error to the status code returned to clients
func HTTPStatus(err error) int {
	switch Classify(err) {
	case "":
		return http.StatusOK
	case CodeLoadError, CodeInvalidSelection, CodeInvalidInput, CodeValidationError:
		return http.StatusBadRequest
	case CodeNotFound, CodeSessionNotFound, CodeCatalogDisabled:
		return http.StatusNotFound
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// Predefined error codes
const (
	CodeConfigInvalid    = "CONFIG_INVALID"
	CodeDatabaseError    = "DATABASE_ERROR"
	CodeValidationError  = "VALIDATION_ERROR"
	CodeNotFound         = "NOT_FOUND"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeInternalError    = "INTERNAL_ERROR"
	CodeInvalidInput     = "INVALID_INPUT"
	CodeLoadError        = "LOAD_ERROR"
	CodeInvalidSelection = "INVALID_SELECTION"
	CodeSessionNotFound  = "SESSION_NOT_FOUND"
	CodeCatalogDisabled  = "CATALOG_DISABLED"
	CodeTooLarge         = "PAYLOAD_TOO_LARGE"
)

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func DatabaseError(message string) *AppError {
	return New(CodeDatabaseError, message)
}

func ValidationError(message string) *AppError {
	return New(CodeValidationError, message)
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func Unauthorized(message string) *AppError {
	return New(CodeUnauthorized, message)
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

func TooLarge(limit int64) *AppError {
	return New(CodeTooLarge, fmt.Sprintf("upload exceeds %d bytes", limit))
}
