// Package errors defines the fixed error shape returned across the HTTP
// edge, generalized from src/errors/errors.go's APIError to this service's
// own error codes (SPEC_FULL.md §7).
package errors

import "net/http"

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
}

func (e APIError) Error() string {
	return e.Message
}

const (
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeInternalServer    = "INTERNAL_SERVER_ERROR"
	ErrCodeInsufficientFunds = "INSUFFICIENT_FUNDS"
)

func NewValidationError(message string) APIError {
	return APIError{Code: ErrCodeValidation, Message: message, Status: http.StatusBadRequest}
}

func NewAccountNotFoundError() APIError {
	return APIError{Code: ErrCodeNotFound, Message: "account not found", Status: http.StatusNotFound}
}

func NewInsufficientFundsError(message string) APIError {
	return APIError{Code: ErrCodeInsufficientFunds, Message: message, Status: http.StatusBadRequest}
}

func NewInternalServerError(message string) APIError {
	return APIError{Code: ErrCodeInternalServer, Message: message, Status: http.StatusInternalServerError}
}
