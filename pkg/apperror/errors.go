package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
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

// CodeOf returns the AppError code carried by err, or "" if there is none.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// Is reports whether err carries an AppError with the given code.
func Is(err error, code string) bool {
	return CodeOf(err) == code
}

// Error codes
const (
	CodeInvalidPhone        = "VAL_001"
	CodeInvalidRequest      = "VAL_002"
	CodePricingMissing      = "CFG_001"
	CodeGatewayInvalidBody  = "GW_001"
	CodeGatewayFailure      = "GW_002"
	CodePaymentFailed       = "PAY_001"
	CodeVerificationTimeout = "PAY_002"
	CodeInvalidAmount       = "PAY_003"
	CodeNotFound            = "PAY_004"
	CodeInvalidTransition   = "PAY_005"
	CodeConfirmRequired     = "PAY_006"
	CodeNotAuthorized       = "PAY_007"
	CodeInternal            = "SYS_001"
	CodeStoreUnavailable    = "SYS_002"
	CodeInvalidToken        = "AUTH_003"
	CodeRateLimit           = "RATE_001"
)

// ---- Validation (VAL) ----

func ErrInvalidPhone() *AppError {
	return New(CodeInvalidPhone, "Enter a valid M-Pesa phone number (at least 9 digits)", http.StatusBadRequest)
}

// Validation returns a VAL_002 request validation error.
func Validation(message string) *AppError {
	return New(CodeInvalidRequest, message, http.StatusBadRequest)
}

// ---- Configuration (CFG) ----

// ErrPricingMissing is returned when no pricing record exists after retries.
// Payment must never be bypassed because of it.
func ErrPricingMissing(serviceType string) *AppError {
	return New(CodePricingMissing,
		fmt.Sprintf("No pricing configured for service type %q. Please contact support.", serviceType),
		http.StatusUnprocessableEntity)
}

// ---- Gateway (GW) ----

func ErrGatewayInvalidBody(err error) *AppError {
	return Wrap(CodeGatewayInvalidBody, "Payment server returned an empty or invalid response. Please try again.", http.StatusBadGateway, err)
}

func ErrGatewayFailure(err error) *AppError {
	return Wrap(CodeGatewayFailure, "Payment request failed. Please try again.", http.StatusBadGateway, err)
}

// ---- Payment Business Logic (PAY) ----

// ErrPaymentFailed carries the gateway's own result description.
func ErrPaymentFailed(resultDesc string) *AppError {
	if resultDesc == "" {
		resultDesc = "Payment was not completed"
	}
	return New(CodePaymentFailed, resultDesc, http.StatusPaymentRequired)
}

func ErrVerificationTimeout() *AppError {
	return New(CodeVerificationTimeout,
		"We could not confirm your payment in time. Check your M-Pesa messages to see whether you were charged before trying again.",
		http.StatusGatewayTimeout)
}

func ErrInvalidAmount() *AppError {
	return New(CodeInvalidAmount, "Invalid amount", http.StatusBadRequest)
}

func ErrNotFound(entity string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

func ErrInvalidTransition(from, action string) *AppError {
	return New(CodeInvalidTransition, fmt.Sprintf("cannot %s while dialog is %s", action, from), http.StatusConflict)
}

func ErrConfirmRequired() *AppError {
	return New(CodeConfirmRequired, "Payment may still be processing. Confirm to close anyway.", http.StatusConflict)
}

// ErrNotAuthorized is returned when a completion cannot unlock its purpose.
func ErrNotAuthorized(reason string) *AppError {
	return New(CodeNotAuthorized, reason, http.StatusForbidden)
}

// ---- Authentication (AUTH) ----

func ErrInvalidToken() *AppError {
	return New(CodeInvalidToken, "Invalid or expired token", http.StatusUnauthorized)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New(CodeRateLimit, "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// ErrStoreUnavailable wraps a transient backing store failure.
func ErrStoreUnavailable(err error) *AppError {
	return Wrap(CodeStoreUnavailable, "Payment store temporarily unavailable", http.StatusServiceUnavailable, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap(CodeInternal, "Internal server error", http.StatusInternalServerError, err)
}
