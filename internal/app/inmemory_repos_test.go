package app_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"mpesa-paywall/internal/core/domain"
	"mpesa-paywall/internal/core/ports"

	"github.com/google/uuid"
)

// --- In-Memory Transaction Repo ---

type inMemoryTransactionRepo struct {
	mu        sync.RWMutex
	txs       map[uuid.UUID]*domain.PendingTransaction
	callbacks *inMemoryCallbackRepo
}

var _ ports.TransactionRepository = (*inMemoryTransactionRepo)(nil)

func newInMemoryTransactionRepo(callbacks *inMemoryCallbackRepo) *inMemoryTransactionRepo {
	return &inMemoryTransactionRepo{txs: make(map[uuid.UUID]*domain.PendingTransaction), callbacks: callbacks}
}

func (r *inMemoryTransactionRepo) Create(ctx context.Context, t *domain.PendingTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.txs[t.ID]; ok {
		return fmt.Errorf("duplicate transaction %s", t.ID)
	}
	cp := *t
	r.txs[t.ID] = &cp
	return nil
}

func (r *inMemoryTransactionRepo) AttachGatewayIDs(ctx context.Context, id uuid.UUID, merchantRequestID, checkoutRequestID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.txs[id]
	if !ok {
		return fmt.Errorf("transaction %s not found", id)
	}
	t.MerchantRequestID = merchantRequestID
	t.CheckoutRequestID = checkoutRequestID
	t.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *inMemoryTransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.PendingTransaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.txs[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *inMemoryTransactionRepo) GetByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*domain.PendingTransaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.txs {
		if t.CheckoutRequestID == checkoutRequestID {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryTransactionRepo) ApplyResult(ctx context.Context, id uuid.UUID, res domain.TransactionResult) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.txs[id]
	if !ok || t.Status != domain.TransactionStatusPending {
		return false, nil
	}
	t.Status = res.Status
	t.ResultCode = res.ResultCode
	if res.ResultDesc != "" {
		t.ResultDesc = &res.ResultDesc
	}
	if res.MpesaReceiptNumber != "" {
		t.MpesaReceiptNumber = &res.MpesaReceiptNumber
	}
	if res.TransactionDate != "" {
		t.TransactionDate = &res.TransactionDate
	}
	t.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (r *inMemoryTransactionRepo) ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]domain.PendingTransaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.PendingTransaction
	for _, t := range r.txs {
		if t.Status == domain.TransactionStatusPending && t.HasGatewayIDs() && t.CreatedAt.Before(olderThan) &&
			r.callbacks.has(t.CheckoutRequestID) {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *inMemoryTransactionRepo) put(t domain.PendingTransaction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.txs[t.ID] = &t
}

func (r *inMemoryTransactionRepo) all() []domain.PendingTransaction {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.PendingTransaction, 0, len(r.txs))
	for _, t := range r.txs {
		out = append(out, *t)
	}
	return out
}

// --- In-Memory Callback Repo ---

type inMemoryCallbackRepo struct {
	mu        sync.RWMutex
	callbacks map[string]*domain.CallbackResult
}

var _ ports.CallbackRepository = (*inMemoryCallbackRepo)(nil)

func newInMemoryCallbackRepo() *inMemoryCallbackRepo {
	return &inMemoryCallbackRepo{callbacks: make(map[string]*domain.CallbackResult)}
}

func (r *inMemoryCallbackRepo) Save(ctx context.Context, cb *domain.CallbackResult) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.callbacks[cb.CheckoutRequestID]; ok {
		return false, nil
	}
	cp := *cb
	r.callbacks[cb.CheckoutRequestID] = &cp
	return true, nil
}

func (r *inMemoryCallbackRepo) has(checkoutRequestID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.callbacks[checkoutRequestID]
	return ok
}

func (r *inMemoryCallbackRepo) GetByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*domain.CallbackResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cb, ok := r.callbacks[checkoutRequestID]
	if !ok {
		return nil, nil
	}
	cp := *cb
	return &cp, nil
}

// --- In-Memory Whitelist Repo ---

type inMemoryWhitelistRepo struct {
	mu      sync.RWMutex
	entries []domain.WhitelistEntry
}

func (r *inMemoryWhitelistRepo) ListActive(ctx context.Context, entryType domain.WhitelistType) ([]domain.WhitelistEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.WhitelistEntry
	for _, e := range r.entries {
		if e.Type == entryType && !e.IsDeleted {
			out = append(out, e)
		}
	}
	return out, nil
}

// --- In-Memory Pricing + Settings Repo ---

type inMemoryPricingRepo struct {
	mu       sync.RWMutex
	pricing  map[string]domain.ServicePricing
	settings *domain.GlobalPaymentSettings
}

var (
	_ ports.PricingRepository  = (*inMemoryPricingRepo)(nil)
	_ ports.SettingsRepository = (*inMemoryPricingRepo)(nil)
)

func newInMemoryPricingRepo() *inMemoryPricingRepo {
	return &inMemoryPricingRepo{
		pricing:  make(map[string]domain.ServicePricing),
		settings: &domain.GlobalPaymentSettings{},
	}
}

func (r *inMemoryPricingRepo) set(p domain.ServicePricing) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pricing[p.ServiceType] = p
}

func (r *inMemoryPricingRepo) GetByServiceType(ctx context.Context, serviceType string) (*domain.ServicePricing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.pricing[serviceType]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *inMemoryPricingRepo) GetDedicatedAmount(ctx context.Context, serviceType string, action domain.ActionType) (*int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.pricing[serviceType]
	if !ok {
		return nil, nil
	}
	amount, ok := p.AmountFor(action)
	if !ok {
		return nil, nil
	}
	return &amount, nil
}

func (r *inMemoryPricingRepo) Get(ctx context.Context) (*domain.GlobalPaymentSettings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.settings == nil {
		return nil, nil
	}
	s := *r.settings
	return &s, nil
}

// --- In-Memory Audit Repo ---

type inMemoryAuditRepo struct {
	mu   sync.Mutex
	logs []domain.AuditLog
}

func (r *inMemoryAuditRepo) Create(ctx context.Context, l *domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, *l)
	return nil
}

func (r *inMemoryAuditRepo) actions() []domain.AuditAction {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.AuditAction, 0, len(r.logs))
	for _, l := range r.logs {
		out = append(out, l.Action)
	}
	return out
}

// --- In-Memory Fulfillment Repo ---

type inMemoryFulfillmentRepo struct {
	mu           sync.RWMutex
	activeAds    map[string]*uuid.UUID
	applications []domain.JobApplication
}

var _ ports.FulfillmentRepository = (*inMemoryFulfillmentRepo)(nil)

func newInMemoryFulfillmentRepo() *inMemoryFulfillmentRepo {
	return &inMemoryFulfillmentRepo{activeAds: make(map[string]*uuid.UUID)}
}

func (r *inMemoryFulfillmentRepo) ActivateAdvertisement(ctx context.Context, adID string, transactionID *uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.activeAds[adID] = transactionID
	return nil
}

func (r *inMemoryFulfillmentRepo) RecordJobApplication(ctx context.Context, app *domain.JobApplication) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.applications = append(r.applications, *app)
	return nil
}

func (r *inMemoryFulfillmentRepo) adActive(adID string) (*uuid.UUID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	txID, ok := r.activeAds[adID]
	return txID, ok
}

func (r *inMemoryFulfillmentRepo) jobApplications() []domain.JobApplication {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.JobApplication(nil), r.applications...)
}
