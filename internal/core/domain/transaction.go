package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ActionType is the paid action a transaction unlocks.
type ActionType string

const (
	ActionContinueAccess ActionType = "continue_access"
	ActionViewVideos     ActionType = "view_videos"
	ActionPostService    ActionType = "post_service"
	ActionJobApplication ActionType = "job_application"
)

// Valid reports whether a is one of the known actions.
func (a ActionType) Valid() bool {
	switch a {
	case ActionContinueAccess, ActionViewVideos, ActionPostService, ActionJobApplication:
		return true
	}
	return false
}

// HasDedicatedPricing reports whether the amount for a lives in its own
// pricing field and is looked up directly rather than through the generic
// continue/videos resolver.
func (a ActionType) HasDedicatedPricing() bool {
	return a == ActionPostService || a == ActionJobApplication
}

// ParseActionType accepts both snake_case and the CamelCase names used by
// the web client (ContinueAccess, ViewVideos, ...).
func ParseActionType(s string) (ActionType, bool) {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", ""))
	switch key {
	case "continueaccess", "continue":
		return ActionContinueAccess, true
	case "viewvideos", "videos":
		return ActionViewVideos, true
	case "postservice", "post":
		return ActionPostService, true
	case "jobapplication":
		return ActionJobApplication, true
	}
	return "", false
}

// TransactionStatus represents the lifecycle state of a pending transaction.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusSuccess   TransactionStatus = "success"
	TransactionStatusFailed    TransactionStatus = "failed"
	TransactionStatusCancelled TransactionStatus = "cancelled"
)

// PendingTransaction is one attempted STK push payment.
// CheckoutRequestID is empty until the gateway answers; until then the
// record is only addressable by ID.
type PendingTransaction struct {
	ID                 uuid.UUID         `json:"id"`
	MerchantRequestID  string            `json:"merchant_request_id,omitempty"`
	CheckoutRequestID  string            `json:"checkout_request_id,omitempty"`
	PhoneNumber        string            `json:"phone_number"`
	Amount             int64             `json:"amount"`
	ServiceType        string            `json:"service_type"`
	ActionType         ActionType        `json:"action_type"`
	UserID             *string           `json:"user_id,omitempty"`
	UserEmail          *string           `json:"user_email,omitempty"`
	Status             TransactionStatus `json:"status"`
	ResultCode         *int              `json:"result_code,omitempty"`
	ResultDesc         *string           `json:"result_desc,omitempty"`
	MpesaReceiptNumber *string           `json:"mpesa_receipt_number,omitempty"`
	TransactionDate    *string           `json:"transaction_date,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

// IsTerminal returns true if the transaction is in a final state.
func (t *PendingTransaction) IsTerminal() bool {
	return t.Status == TransactionStatusSuccess ||
		t.Status == TransactionStatusFailed ||
		t.Status == TransactionStatusCancelled
}

// HasGatewayIDs reports whether the checkout id has been attached.
func (t *PendingTransaction) HasGatewayIDs() bool {
	return t.CheckoutRequestID != ""
}

// TransactionResult is the field-level update applied when a terminal
// callback is reconciled.
type TransactionResult struct {
	Status             TransactionStatus
	ResultCode         *int
	ResultDesc         string
	MpesaReceiptNumber string
	TransactionDate    string
}
