package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without wrapped error",
			appErr:   New("PAY_001", "Request cancelled by user", http.StatusPaymentRequired),
			expected: "[PAY_001] Request cancelled by user",
		},
		{
			name:     "with wrapped error",
			appErr:   Wrap("SYS_001", "DB error", http.StatusInternalServerError, fmt.Errorf("connection refused")),
			expected: "[SYS_001] DB error: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.appErr.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("inner error")
	appErr := Wrap("SYS_001", "wrapped", http.StatusInternalServerError, inner)

	assert.True(t, errors.Is(appErr, inner))
}

func TestAppError_IsNilUnwrap(t *testing.T) {
	appErr := New("PAY_001", "test", http.StatusBadRequest)
	assert.Nil(t, appErr.Unwrap())
}

func TestCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("initiate: %w", ErrGatewayInvalidBody(errors.New("unexpected EOF")))

	assert.Equal(t, CodeGatewayInvalidBody, CodeOf(wrapped))
	assert.True(t, Is(wrapped, CodeGatewayInvalidBody))
	assert.False(t, Is(wrapped, CodeGatewayFailure))
	assert.Equal(t, "", CodeOf(errors.New("plain")))
}

func TestTaxonomy(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"InvalidPhone", ErrInvalidPhone(), "VAL_001", 400},
		{"Validation", Validation("bad"), "VAL_002", 400},
		{"PricingMissing", ErrPricingMissing("jobs"), "CFG_001", 422},
		{"GatewayInvalidBody", ErrGatewayInvalidBody(nil), "GW_001", 502},
		{"GatewayFailure", ErrGatewayFailure(nil), "GW_002", 502},
		{"PaymentFailed", ErrPaymentFailed("Insufficient balance"), "PAY_001", 402},
		{"VerificationTimeout", ErrVerificationTimeout(), "PAY_002", 504},
		{"InvalidAmount", ErrInvalidAmount(), "PAY_003", 400},
		{"NotFound", ErrNotFound("dialog"), "PAY_004", 404},
		{"InvalidTransition", ErrInvalidTransition("processing", "submit"), "PAY_005", 409},
		{"ConfirmRequired", ErrConfirmRequired(), "PAY_006", 409},
		{"NotAuthorized", ErrNotAuthorized("paid session"), "PAY_007", 403},
		{"InvalidToken", ErrInvalidToken(), "AUTH_003", 401},
		{"RateLimit", ErrRateLimitExceeded(), "RATE_001", 429},
		{"StoreUnavailable", ErrStoreUnavailable(errors.New("timeout")), "SYS_002", 503},
		{"Internal", InternalError(errors.New("boom")), "SYS_001", 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
			assert.NotEmpty(t, tt.err.Message)
		})
	}
}

func TestTerminalMessagesAreDistinct(t *testing.T) {
	msgs := []string{
		ErrPaymentFailed("Request cancelled by user").Message,
		ErrVerificationTimeout().Message,
		ErrPricingMissing("blog").Message,
		ErrGatewayFailure(nil).Message,
	}
	seen := map[string]bool{}
	for _, m := range msgs {
		assert.False(t, seen[m], "duplicate message %q", m)
		seen[m] = true
	}
}

func TestErrPricingMissing_NamesServiceType(t *testing.T) {
	assert.Contains(t, ErrPricingMissing("jobs").Message, `"jobs"`)
}

func TestErrPaymentFailed_DefaultMessage(t *testing.T) {
	assert.Equal(t, "Payment was not completed", ErrPaymentFailed("").Message)
}
