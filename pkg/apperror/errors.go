package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"error"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// Machine-readable codes surfaced to API clients.
const (
	CodeMissingType          = "MISSING_TYPE"
	CodeMissingRecipientName = "MISSING_RECIPIENT_NAME"
	CodeMissingAmount        = "MISSING_AMOUNT"
	CodeMissingStatus        = "MISSING_STATUS"
	CodeMissingChannel       = "MISSING_CHANNEL"
	CodeMissingUserID        = "MISSING_USER_ID"
	CodeMissingParticipant   = "MISSING_PARTICIPANT"
	CodeInvalidType          = "INVALID_TYPE"
	CodeInvalidStatus        = "INVALID_STATUS"
	CodeInvalidChannel       = "INVALID_CHANNEL"
	CodeInvalidAmount        = "INVALID_AMOUNT"
	CodeInvalidDestination   = "INVALID_DESTINATION"
	CodeInvalidID            = "INVALID_ID"
	CodeInvalidRequest       = "INVALID_REQUEST"

	CodeInsufficientBalance = "INSUFFICIENT_BALANCE"
	CodeNotFound            = "NOT_FOUND"
	CodeIdempotencyConflict = "IDEMPOTENCY_CONFLICT"
	CodeRateLimitExceeded   = "RATE_LIMIT_EXCEEDED"

	CodeReferenceExhausted = "REFERENCE_EXHAUSTED"
	CodeInternal           = "INTERNAL_ERROR"
)

// ---- Validation ----

// Validation returns a 400 error carrying a stable validation code.
func Validation(code, message string) *AppError {
	return New(code, message, http.StatusBadRequest)
}

// ErrInvalidRequest is returned when the body cannot be decoded at all.
func ErrInvalidRequest(err error) *AppError {
	return Wrap(CodeInvalidRequest, "Invalid request body", http.StatusBadRequest, err)
}

func ErrInvalidID() *AppError {
	return New(CodeInvalidID, "Valid merchant ID is required", http.StatusBadRequest)
}

func ErrMissingUserID() *AppError {
	return New(CodeMissingUserID, "User ID is required", http.StatusBadRequest)
}

// ---- Ledger ----

func ErrInsufficientBalance() *AppError {
	return New(CodeInsufficientBalance, "Insufficient balance", http.StatusBadRequest)
}

// ErrNotFound reports a missing entity.
func ErrNotFound(entity string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

func ErrWalletNotFound() *AppError {
	return New(CodeNotFound, "Wallet not found for user", http.StatusNotFound)
}

func ErrMerchantNotFound() *AppError {
	return ErrNotFound("Merchant")
}

// ErrBalanceLimit is returned when a credit would overflow the wallet.
func ErrBalanceLimit() *AppError {
	return New(CodeInvalidAmount, "Amount exceeds the maximum wallet balance", http.StatusBadRequest)
}

func ErrIdempotencyConflict() *AppError {
	return New(CodeIdempotencyConflict, "A request with this Idempotency-Key is already being processed", http.StatusConflict)
}

// ---- Rate limiting ----

func ErrRateLimitExceeded() *AppError {
	return New(CodeRateLimitExceeded, "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & infrastructure ----

// ErrReferenceExhausted is returned once every reference attempt collided.
func ErrReferenceExhausted(err error) *AppError {
	return Wrap(CodeReferenceExhausted, "Internal server error", http.StatusInternalServerError, err)
}

func ErrDatabaseError(err error) *AppError {
	return Wrap(CodeInternal, "Internal server error", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a generic 500.
func InternalError(err error) *AppError {
	return Wrap(CodeInternal, "Internal server error", http.StatusInternalServerError, err)
}
