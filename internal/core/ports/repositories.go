package ports

//go:generate mockgen -source=repositories.go -destination=mocks/mock_repositories.go -package=mocks

import (
	"context"
	"time"

	"mpesa-paywall/internal/core/domain"

	"github.com/google/uuid"
)

// TransactionRepository defines persistence operations for pending transactions.
// Updates are field-level; no method rewrites a whole record.
type TransactionRepository interface {
	Create(ctx context.Context, txn *domain.PendingTransaction) error
	// AttachGatewayIDs sets the gateway correlation ids. Calling it again with
	// the same ids is a no-op overwrite.
	AttachGatewayIDs(ctx context.Context, id uuid.UUID, merchantRequestID, checkoutRequestID string) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.PendingTransaction, error)
	GetByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*domain.PendingTransaction, error)
	// ApplyResult moves a pending transaction to a terminal status. It only
	// touches rows still in pending status and reports whether a row changed.
	ApplyResult(ctx context.Context, id uuid.UUID, result domain.TransactionResult) (bool, error)
	// ListStalePending returns pending transactions with gateway ids created
	// before olderThan that already have a stored callback, oldest first.
	ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]domain.PendingTransaction, error)
}

// CallbackRepository stores gateway callback results keyed by checkout id.
type CallbackRepository interface {
	// Save inserts the callback unless one already exists for its checkout id.
	// Returns false when the callback was a duplicate.
	Save(ctx context.Context, cb *domain.CallbackResult) (bool, error)
	// GetByCheckoutRequestID returns nil, nil when no callback has arrived.
	GetByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*domain.CallbackResult, error)
}

// WhitelistRepository reads payment exemptions.
type WhitelistRepository interface {
	// ListActive returns non-deleted entries of the given type.
	ListActive(ctx context.Context, entryType domain.WhitelistType) ([]domain.WhitelistEntry, error)
}

// PricingRepository reads per-service pricing.
type PricingRepository interface {
	// GetByServiceType returns nil, nil when no pricing record exists.
	GetByServiceType(ctx context.Context, serviceType string) (*domain.ServicePricing, error)
	// GetDedicatedAmount reads only the column backing a dedicated-pricing
	// action. Returns nil when the record or the column is missing.
	GetDedicatedAmount(ctx context.Context, serviceType string, action domain.ActionType) (*int64, error)
}

// SettingsRepository reads the global payment switch.
type SettingsRepository interface {
	// Get may return nil, nil when the settings row is not visible yet.
	Get(ctx context.Context) (*domain.GlobalPaymentSettings, error)
}

// AuditRepository defines persistence for audit logs.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
}

// FulfillmentRepository writes the records a successful payment unlocks.
type FulfillmentRepository interface {
	// ActivateAdvertisement marks the ad paid and live.
	ActivateAdvertisement(ctx context.Context, adID string, transactionID *uuid.UUID) error
	// RecordJobApplication stores an application with the fee actually charged.
	RecordJobApplication(ctx context.Context, app *domain.JobApplication) error
}
