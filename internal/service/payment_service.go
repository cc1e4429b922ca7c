package service

import (
	"context"
	"fmt"
	"time"

	"mpesa-paywall/internal/core/domain"
	"mpesa-paywall/internal/core/ports"
	"mpesa-paywall/internal/metrics"
	"mpesa-paywall/pkg/apperror"
	"mpesa-paywall/pkg/retry"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	defaultMinPhoneDigits = 9
	attachAttempts        = 3
	attachRetryDelay      = 250 * time.Millisecond
)

// PaymentServiceImpl implements ports.PaymentService.
type PaymentServiceImpl struct {
	txRepo         ports.TransactionRepository
	gateway        ports.PaymentGateway
	minPhoneDigits int
	attachPolicy   retry.Policy
	metrics        *metrics.Metrics
	now            func() time.Time
	log            zerolog.Logger
}

// NewPaymentService creates a new PaymentServiceImpl.
func NewPaymentService(
	txRepo ports.TransactionRepository,
	gateway ports.PaymentGateway,
	minPhoneDigits int,
	m *metrics.Metrics,
	log zerolog.Logger,
) *PaymentServiceImpl {
	if minPhoneDigits <= 0 {
		minPhoneDigits = defaultMinPhoneDigits
	}
	return &PaymentServiceImpl{
		txRepo:         txRepo,
		gateway:        gateway,
		minPhoneDigits: minPhoneDigits,
		attachPolicy: retry.Policy{
			MaxAttempts: attachAttempts,
			Backoff:     retry.Constant(attachRetryDelay),
			Sleep:       retry.ContextSleep,
		},
		metrics: m,
		now:     time.Now,
		log:     log,
	}
}

// InitiatePayment creates the pending record, triggers the STK push and
// persists the gateway ids onto the record before returning. A caller that
// starts polling right after this returns will always find the ids.
func (s *PaymentServiceImpl) InitiatePayment(ctx context.Context, req ports.InitiateRequest) (*ports.InitiateResult, error) {
	if len(domain.PhoneDigits(req.PhoneNumber)) < s.minPhoneDigits {
		return nil, apperror.ErrInvalidPhone()
	}
	if req.Amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}
	if !req.ActionType.Valid() {
		return nil, apperror.Validation(fmt.Sprintf("unknown action type %q", req.ActionType))
	}

	msisdn := domain.ToMSISDN(req.PhoneNumber)
	now := s.now().UTC()
	txn := &domain.PendingTransaction{
		ID:          uuid.New(),
		PhoneNumber: msisdn,
		Amount:      req.Amount,
		ServiceType: req.ServiceType,
		ActionType:  req.ActionType,
		UserID:      optional(req.UserID),
		UserEmail:   optional(req.UserEmail),
		Status:      domain.TransactionStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	// Step 1: pending record, addressable only by id for now
	if err := s.txRepo.Create(ctx, txn); err != nil {
		return nil, apperror.ErrStoreUnavailable(fmt.Errorf("create pending transaction: %w", err))
	}

	log := s.log.With().Str("transaction_id", txn.ID.String()).Logger()

	// Step 2: trigger the push with our id as correlation token
	resp, err := s.gateway.InitiateSTKPush(ctx, ports.STKPushRequest{
		PhoneNumber:   msisdn,
		Amount:        req.Amount,
		ServiceType:   req.ServiceType,
		ActionType:    req.ActionType,
		UserID:        req.UserID,
		TransactionID: txn.ID.String(),
	})
	if err != nil {
		log.Warn().Err(err).Msg("stk push failed")
		if apperror.CodeOf(err) != "" {
			return nil, err
		}
		return nil, apperror.ErrGatewayFailure(err)
	}

	// Step 3: attach ids before anyone can poll. Overwrites are idempotent.
	_, err = retry.Do(ctx, s.attachPolicy, func(ctx context.Context, attempt int) (bool, error) {
		if err := s.txRepo.AttachGatewayIDs(ctx, txn.ID, resp.MerchantRequestID, resp.CheckoutRequestID); err != nil {
			log.Warn().Err(err).Int("attempt", attempt+1).Msg("attach gateway ids failed")
			return false, err
		}
		return true, nil
	})
	if err != nil {
		log.Error().Err(err).Str("checkout_request_id", resp.CheckoutRequestID).Msg("gateway ids not persisted")
		return nil, apperror.ErrStoreUnavailable(fmt.Errorf("attach gateway ids: %w", err))
	}

	s.metrics.ObserveInitiated(req.ServiceType, string(req.ActionType))
	log.Info().
		Str("checkout_request_id", resp.CheckoutRequestID).
		Int64("amount", req.Amount).
		Str("service_type", req.ServiceType).
		Str("action_type", string(req.ActionType)).
		Msg("stk push initiated")

	return &ports.InitiateResult{
		TransactionID:     txn.ID,
		CheckoutRequestID: resp.CheckoutRequestID,
		MerchantRequestID: resp.MerchantRequestID,
	}, nil
}

// GetTransaction retrieves a pending transaction by its internal id.
func (s *PaymentServiceImpl) GetTransaction(ctx context.Context, id uuid.UUID) (*domain.PendingTransaction, error) {
	txn, err := s.txRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get transaction: %w", err))
	}
	if txn == nil {
		return nil, apperror.ErrNotFound("transaction")
	}
	return txn, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
