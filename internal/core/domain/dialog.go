package domain

import (
	"time"

	"github.com/google/uuid"
)

// DialogState is a payment dialog's position in its state machine.
type DialogState string

const (
	DialogStateInput       DialogState = "input"
	DialogStateProcessing  DialogState = "processing"
	DialogStateSuccess     DialogState = "success"
	DialogStateFailed      DialogState = "failed"
	DialogStateTimeout     DialogState = "verification_timeout"
	DialogStateConfigError DialogState = "configuration_error"
	DialogStateClosed      DialogState = "closed"
)

// IsTerminal reports whether no further payment work happens in s.
// Failed is terminal for the attempt but may go back to Input.
func (s DialogState) IsTerminal() bool {
	switch s {
	case DialogStateSuccess, DialogStateFailed, DialogStateTimeout, DialogStateConfigError, DialogStateClosed:
		return true
	}
	return false
}

// BypassReason explains why a dialog succeeded without charging.
type BypassReason string

const (
	BypassNone           BypassReason = ""
	BypassPaidSession    BypassReason = "paid_session"
	BypassWhitelistEmail BypassReason = "whitelisted_email"
	BypassWhitelistPhone BypassReason = "whitelisted_phone"
	BypassPaused         BypassReason = "payments_paused"
	BypassFree           BypassReason = "free"
)

// PurposeKind names what the invoking page does once payment succeeds.
type PurposeKind string

const (
	PurposeNone           PurposeKind = ""
	PurposeAdvertisement  PurposeKind = "advertisement"
	PurposeJobApplication PurposeKind = "job_application"
)

// Purpose binds a dialog to the record it unlocks.
type Purpose struct {
	Kind        PurposeKind `json:"kind,omitempty"`
	ReferenceID string      `json:"reference_id,omitempty"`
}

// Payer identifies who is paying. Every field is optional.
type Payer struct {
	ClientID  string
	UserID    string
	UserEmail string
}

// Completion is handed to the success hook when a dialog closes after success.
type Completion struct {
	DialogID      uuid.UUID
	ServiceType   string
	ActionType    ActionType
	Amount        int64
	Bypass        BypassReason
	TransactionID *uuid.UUID
	PhoneNumber   string
	Payer         Payer
	Purpose       Purpose

	// ClientPriced is set when the caller supplied the amount.
	ClientPriced bool
}

// Charged reports whether money moved for this completion.
func (c *Completion) Charged() bool {
	return c.Bypass == BypassNone && c.TransactionID != nil
}

// Authorizes reports whether the completion may unlock a server-side record.
// A paid session only proves an earlier payment for some other record, and
// a caller-supplied amount was never checked against pricing.
func (c *Completion) Authorizes() bool {
	if c.ClientPriced {
		return false
	}
	switch c.Bypass {
	case BypassNone:
		return c.TransactionID != nil
	case BypassWhitelistEmail, BypassWhitelistPhone, BypassPaused, BypassFree:
		return true
	default:
		return false
	}
}

// OutcomeKind is how one poll run ended.
type OutcomeKind string

const (
	OutcomeSuccess OutcomeKind = "success"
	OutcomeFailed  OutcomeKind = "failed"
	OutcomeTimeout OutcomeKind = "timeout"
)

// Outcome is the reconciler's verdict for one checkout id.
type Outcome struct {
	Kind               OutcomeKind
	ResultDesc         string
	MpesaReceiptNumber string
	Attempts           int
}

// DialogView is a snapshot of a dialog for callers.
type DialogView struct {
	ID                uuid.UUID    `json:"id"`
	State             DialogState  `json:"state"`
	ServiceType       string       `json:"service_type"`
	ActionType        ActionType   `json:"action_type"`
	Amount            int64        `json:"amount"`
	Bypass            BypassReason `json:"bypass_reason,omitempty"`
	Message           string       `json:"message,omitempty"`
	ErrorCode         string       `json:"error_code,omitempty"`
	FieldError        string       `json:"field_error,omitempty"`
	Retryable         bool         `json:"retryable"`
	TransactionID     *uuid.UUID   `json:"transaction_id,omitempty"`
	CheckoutRequestID string       `json:"checkout_request_id,omitempty"`
	ReceiptNumber     string       `json:"receipt_number,omitempty"`
	UpdatedAt         time.Time    `json:"updated_at"`
}
