package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of audited action.
type AuditAction string

const (
	AuditActionDialogOpen       AuditAction = "DIALOG_OPEN"
	AuditActionPaymentSubmit    AuditAction = "PAYMENT_SUBMIT"
	AuditActionDialogClose      AuditAction = "DIALOG_CLOSE"
	AuditActionCallbackReceived AuditAction = "CALLBACK_RECEIVED"
	AuditActionPaymentBypassed  AuditAction = "PAYMENT_BYPASSED"
	AuditActionPaymentSettled   AuditAction = "PAYMENT_SETTLED"
	AuditActionDialogRetry      AuditAction = "DIALOG_RETRY"
	AuditActionTransactionView  AuditAction = "TRANSACTION_VIEW"
)

// AuditLog records a single audited action in the system.
type AuditLog struct {
	ID           uuid.UUID   `json:"id"`
	UserID       *string     `json:"user_id,omitempty"`
	ClientID     string      `json:"client_id,omitempty"`
	Action       AuditAction `json:"action"`
	ResourceType string      `json:"resource_type"`
	ResourceID   string      `json:"resource_id,omitempty"`
	Details      string      `json:"details,omitempty"` // JSON string
	IPAddress    string      `json:"ip_address"`
	CreatedAt    time.Time   `json:"created_at"`
}
