// Package errors provides custom error types for the Fluxo API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Account errors.
var (
	ErrAccountNotFound = &AppError{Code: "ACCOUNT_NOT_FOUND", Message: "Account not found", StatusCode: http.StatusNotFound}
)

// Transaction errors.
var (
	ErrTransactionNotFound = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
)

// Forecast rule errors.
var (
	ErrRuleNotFound      = &AppError{Code: "RULE_NOT_FOUND", Message: "Forecast rule not found", StatusCode: http.StatusNotFound}
	ErrInvalidRuleConfig = &AppError{Code: "INVALID_RULE_CONFIG", Message: "Forecast rule configuration is invalid", StatusCode: http.StatusBadRequest}
)

// Forecast instance errors.
var (
	ErrInstanceNotFound     = &AppError{Code: "INSTANCE_NOT_FOUND", Message: "Forecast instance not found", StatusCode: http.StatusNotFound}
	ErrInstanceNotProjected = &AppError{Code: "INSTANCE_NOT_PROJECTED", Message: "Only projected instances can be edited", StatusCode: http.StatusConflict}
	ErrInvalidStatus        = &AppError{Code: "INVALID_STATUS", Message: "Unsupported instance status", StatusCode: http.StatusBadRequest}
)

// Cycle errors.
var (
	ErrCycleNotFound   = &AppError{Code: "CYCLE_NOT_FOUND", Message: "Cycle override not found", StatusCode: http.StatusNotFound}
	ErrInvalidCycle    = &AppError{Code: "INVALID_CYCLE", Message: "Cycle override range is invalid", StatusCode: http.StatusBadRequest}
	ErrInvalidPeriod   = &AppError{Code: "INVALID_PERIOD", Message: "Malformed period key", StatusCode: http.StatusBadRequest}
	ErrInvalidHorizon  = &AppError{Code: "INVALID_HORIZON", Message: "Generation horizon must be positive", StatusCode: http.StatusBadRequest}
	ErrCategoryMissing = &AppError{Code: "CATEGORY_REQUIRED", Message: "Category is required", StatusCode: http.StatusBadRequest}
)
