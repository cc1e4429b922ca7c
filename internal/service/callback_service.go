package service

import (
	"context"
	"fmt"
	"time"

	"mpesa-paywall/internal/core/domain"
	"mpesa-paywall/internal/core/ports"
	"mpesa-paywall/internal/metrics"
	"mpesa-paywall/pkg/apperror"

	"github.com/rs/zerolog"
)

// CallbackServiceImpl implements ports.CallbackService.
type CallbackServiceImpl struct {
	cbRepo  ports.CallbackRepository
	txRepo  ports.TransactionRepository
	audit   ports.AuditService
	metrics *metrics.Metrics
	now     func() time.Time
	log     zerolog.Logger
}

// NewCallbackService creates a new CallbackServiceImpl.
func NewCallbackService(
	cbRepo ports.CallbackRepository,
	txRepo ports.TransactionRepository,
	audit ports.AuditService,
	m *metrics.Metrics,
	log zerolog.Logger,
) *CallbackServiceImpl {
	return &CallbackServiceImpl{
		cbRepo:  cbRepo,
		txRepo:  txRepo,
		audit:   audit,
		metrics: m,
		now:     time.Now,
		log:     log,
	}
}

// HandleCallback stores the gateway's result for a checkout id. The first
// callback per checkout id wins; redeliveries are accepted and ignored.
//
// Once stored, the matching pending transaction is settled right away so the
// record is correct even when no dialog is polling any more. Failing that
// step is not an error: the poller or the sweeper settles it later.
func (s *CallbackServiceImpl) HandleCallback(ctx context.Context, cb *domain.CallbackResult) error {
	if cb == nil || cb.CheckoutRequestID == "" {
		return apperror.Validation("callback has no CheckoutRequestID")
	}
	if cb.ReceivedAt.IsZero() {
		cb.ReceivedAt = s.now().UTC()
	}

	log := s.log.With().Str("checkout_request_id", cb.CheckoutRequestID).Logger()

	saved, err := s.cbRepo.Save(ctx, cb)
	if err != nil {
		return apperror.ErrStoreUnavailable(fmt.Errorf("save callback: %w", err))
	}
	if !saved {
		s.metrics.ObserveCallback("duplicate")
		log.Info().Msg("duplicate callback ignored")
		return nil
	}

	result := cb.ToResult()
	if cb.StatusConflicts() {
		log.Warn().
			Int("result_code", *cb.ResultCode).
			Str("callback_status", cb.Status).
			Str("status", string(result.Status)).
			Msg("callback status disagrees with result code, using result code")
	}
	s.metrics.ObserveCallback(string(result.Status))
	log.Info().
		Str("status", string(result.Status)).
		Str("result_desc", cb.ResultDesc).
		Str("receipt", cb.MpesaReceiptNumber).
		Msg("callback stored")

	if s.audit != nil {
		s.audit.Log(ctx, &domain.AuditLog{
			Action:       domain.AuditActionCallbackReceived,
			ResourceType: "callback",
			ResourceID:   cb.CheckoutRequestID,
			Details:      fmt.Sprintf(`{"status":%q}`, result.Status),
		})
	}

	txn, err := s.txRepo.GetByCheckoutRequestID(ctx, cb.CheckoutRequestID)
	if err != nil {
		log.Warn().Err(err).Msg("lookup transaction for callback failed")
		return nil
	}
	if txn == nil {
		// Ids not attached yet; the poller will pick the callback up.
		log.Info().Msg("no transaction for callback yet")
		return nil
	}
	if txn.IsTerminal() {
		return nil
	}

	changed, err := s.txRepo.ApplyResult(ctx, txn.ID, result)
	if err != nil {
		log.Warn().Err(err).Str("transaction_id", txn.ID.String()).Msg("settle transaction from callback failed")
		return nil
	}
	if changed {
		log.Info().Str("transaction_id", txn.ID.String()).Str("status", string(result.Status)).Msg("transaction settled from callback")
	}
	return nil
}
