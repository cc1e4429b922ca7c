package ports

//go:generate mockgen -source=services.go -destination=mocks/mock_services.go -package=mocks

import (
	"context"
	"time"

	"mpesa-paywall/internal/core/domain"

	"github.com/google/uuid"
)

// --- Infrastructure Ports ---

// SessionStore persists paid-session markers with a TTL.
type SessionStore interface {
	Save(ctx context.Context, session *domain.PaidSession, ttl time.Duration) error
	// Get returns nil, nil when no marker exists.
	Get(ctx context.Context, clientID, serviceType string, action domain.ActionType) (*domain.PaidSession, error)
}

// PollLock guarantees a single poller per transaction.
type PollLock interface {
	// Acquire returns false if another poller already holds the lock.
	Acquire(ctx context.Context, transactionID string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, transactionID string) error
}

// PaymentGateway triggers STK push payments.
type PaymentGateway interface {
	InitiateSTKPush(ctx context.Context, req STKPushRequest) (*STKPushResponse, error)
}

// STKPushRequest is the body sent to the push-payment trigger.
type STKPushRequest struct {
	PhoneNumber   string            `json:"phoneNumber"`
	Amount        int64             `json:"amount"`
	ServiceType   string            `json:"serviceType"`
	ActionType    domain.ActionType `json:"actionType"`
	UserID        string            `json:"userId,omitempty"`
	TransactionID string            `json:"transactionId"`
}

// STKPushResponse holds the gateway's correlation ids.
type STKPushResponse struct {
	CheckoutRequestID string
	MerchantRequestID string
}

// TokenService validates marketplace user tokens.
type TokenService interface {
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	UserID string
	Email  string
}

// SignatureService handles HMAC-SHA256 signing and verification.
type SignatureService interface {
	Sign(secretKey string, payload string) string
	Verify(secretKey string, payload string, signature string) bool
}

// --- Service Ports (Business Logic) ---

// WhitelistService decides payment exemptions. It never returns an error:
// any lookup failure means "not whitelisted".
type WhitelistService interface {
	IsWhitelisted(ctx context.Context, identifier string) bool
}

// SessionService manages advisory paid-session markers.
type SessionService interface {
	HasActivePaidSession(ctx context.Context, clientID, serviceType string, action domain.ActionType) bool
	RecordPaymentSession(ctx context.Context, clientID, serviceType string, action domain.ActionType, phoneNumber, transactionID string) error
}

// PricingService resolves what an action costs.
type PricingService interface {
	GetServicePricing(ctx context.Context, serviceType string) (*domain.ServicePricing, error)
	GetSettings(ctx context.Context) (*domain.GlobalPaymentSettings, error)
	// Quote fetches pricing and settings together with retries. A missing
	// pricing record yields CFG_001, never a free quote.
	Quote(ctx context.Context, serviceType string, action domain.ActionType) (*domain.Quote, error)
}

// PaymentService starts STK push payments.
type PaymentService interface {
	InitiatePayment(ctx context.Context, req InitiateRequest) (*InitiateResult, error)
	GetTransaction(ctx context.Context, id uuid.UUID) (*domain.PendingTransaction, error)
}

// InitiateRequest holds validated input for starting a payment.
type InitiateRequest struct {
	PhoneNumber string
	Amount      int64
	ServiceType string
	ActionType  domain.ActionType
	UserID      string
	UserEmail   string
}

// InitiateResult is returned once the gateway ids are persisted.
type InitiateResult struct {
	TransactionID     uuid.UUID
	CheckoutRequestID string
	MerchantRequestID string
}

// Reconciler polls for a callback and settles the transaction.
type Reconciler interface {
	PollForResult(ctx context.Context, req PollRequest) (*domain.Outcome, error)
}

// PollRequest identifies what to poll for and whom to credit on success.
type PollRequest struct {
	TransactionID     uuid.UUID
	CheckoutRequestID string
	ClientID          string
	ServiceType       string
	ActionType        domain.ActionType
	PhoneNumber       string
}

// CallbackService ingests gateway webhooks.
type CallbackService interface {
	HandleCallback(ctx context.Context, cb *domain.CallbackResult) error
}

// FulfillmentService runs the post-payment step for a dialog's purpose.
type FulfillmentService interface {
	Fulfill(ctx context.Context, completion *domain.Completion) error
}

// AuditService records paywall actions.
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}
