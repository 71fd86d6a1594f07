package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/KXX-Hub/kxx-digital-album/internal/domain"
)

// ErrorCode represents a standardized error code
type ErrorCode string

const (
	// Client errors (4xx)
	ErrCodeBadRequest          ErrorCode = "bad_request"
	ErrCodeNotFound            ErrorCode = "not_found"
	ErrCodeValidationFailed    ErrorCode = "validation_failed"
	ErrCodeUnauthorized        ErrorCode = "unauthorized"
	ErrCodeForbidden           ErrorCode = "forbidden"
	ErrCodeCapacityExceeded    ErrorCode = "capacity_exceeded"
	ErrCodeNotForSale          ErrorCode = "not_for_sale"
	ErrCodeSelfPurchase        ErrorCode = "self_purchase"
	ErrCodeInsufficientPayment ErrorCode = "insufficient_payment"
	ErrCodeConflict            ErrorCode = "conflict"

	// Server errors (5xx)
	ErrCodeInternalError   ErrorCode = "internal_error"
	ErrCodeSystemPaused    ErrorCode = "system_paused"
	ErrCodePaymentDispatch ErrorCode = "payment_dispatch_failed"
	ErrCodeRateLimited     ErrorCode = "rate_limited"
)

// APIError represents a structured API error that carries error code and details
type APIError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	jsonErr, _ := json.Marshal(e)
	return string(jsonErr)
}

// Error constructors for common error types
func NewBadRequestError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeBadRequest,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

func NewNotFoundError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeNotFound,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

func NewValidationError(details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeValidationFailed,
		Message: "Validation failed",
		Details: strings.Join(details, ", "),
	}
}

func NewUnauthorizedError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeUnauthorized,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

func NewForbiddenError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeForbidden,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

func NewRateLimitedError(details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeRateLimited,
		Message: "Too many requests",
		Details: strings.Join(details, ", "),
	}
}

func NewInternalError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeInternalError,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

// ledgerErrors maps ledger sentinels to their status and code, in match order
var ledgerErrors = []struct {
	sentinel error
	status   int
	code     ErrorCode
	message  string
}{
	{domain.ErrValidation, http.StatusUnprocessableEntity, ErrCodeValidationFailed, "Validation failed"},
	{domain.ErrNotFound, http.StatusNotFound, ErrCodeNotFound, "Resource not found"},
	{domain.ErrUnauthorized, http.StatusForbidden, ErrCodeForbidden, "Caller is not allowed to perform this operation"},
	{domain.ErrSystemPaused, http.StatusServiceUnavailable, ErrCodeSystemPaused, "Ledger is paused"},
	{domain.ErrCapacityExceeded, http.StatusConflict, ErrCodeCapacityExceeded, "Supply cap reached"},
	{domain.ErrNotForSale, http.StatusConflict, ErrCodeNotForSale, "Track is not for sale"},
	{domain.ErrSelfPurchase, http.StatusConflict, ErrCodeSelfPurchase, "Buyer already owns the token"},
	{domain.ErrInsufficientPayment, http.StatusPaymentRequired, ErrCodeInsufficientPayment, "Payment is below the minimum price"},
	{domain.ErrPaymentDispatch, http.StatusBadGateway, ErrCodePaymentDispatch, "Payment dispatch failed"},
	{domain.ErrReentrancy, http.StatusConflict, ErrCodeConflict, "Another operation is in progress"},
}

// FromError converts an error returned by the ledger into an HTTP status and API error.
// Errors that are not ledger failures become internal errors without details.
func FromError(err error) (int, *APIError) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return statusOf(apiErr.Code), apiErr
	}

	for _, le := range ledgerErrors {
		if errors.Is(err, le.sentinel) {
			return le.status, &APIError{
				Code:    le.code,
				Message: le.message,
				Details: err.Error(),
			}
		}
	}

	return http.StatusInternalServerError, NewInternalError("Internal server error")
}

func statusOf(code ErrorCode) int {
	switch code {
	case ErrCodeBadRequest:
		return http.StatusBadRequest
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeValidationFailed:
		return http.StatusUnprocessableEntity
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	}
	for _, le := range ledgerErrors {
		if le.code == code {
			return le.status
		}
	}
	return http.StatusInternalServerError
}
