package service

import (
	"context"
	"errors"
	"time"

	"mpesa-paywall/internal/core/domain"
	"mpesa-paywall/internal/core/ports"
	"mpesa-paywall/internal/metrics"
	"mpesa-paywall/pkg/apperror"
	"mpesa-paywall/pkg/retry"

	"github.com/rs/zerolog"
)

const (
	defaultPollInterval = 3 * time.Second
	defaultMaxPolls     = 40
	pollLockMargin      = 30 * time.Second
)

// ErrAlreadyPolling is returned when another poller holds the transaction.
var ErrAlreadyPolling = errors.New("reconciler: transaction is already being polled")

// ReconcilerImpl implements ports.Reconciler.
type ReconcilerImpl struct {
	txRepo   ports.TransactionRepository
	cbRepo   ports.CallbackRepository
	sessions ports.SessionService
	lock     ports.PollLock
	policy   retry.Policy
	lockTTL  time.Duration
	metrics  *metrics.Metrics
	log      zerolog.Logger
}

// NewReconciler creates a new ReconcilerImpl polling every interval for at
// most maxPolls attempts. The first poll happens one interval after start.
func NewReconciler(
	txRepo ports.TransactionRepository,
	cbRepo ports.CallbackRepository,
	sessions ports.SessionService,
	lock ports.PollLock,
	interval time.Duration,
	maxPolls int,
	m *metrics.Metrics,
	log zerolog.Logger,
) *ReconcilerImpl {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if maxPolls <= 0 {
		maxPolls = defaultMaxPolls
	}
	return &ReconcilerImpl{
		txRepo:   txRepo,
		cbRepo:   cbRepo,
		sessions: sessions,
		lock:     lock,
		policy: retry.Policy{
			MaxAttempts: maxPolls,
			Backoff:     retry.Fixed(interval),
			Sleep:       retry.ContextSleep,
		},
		lockTTL: time.Duration(maxPolls)*interval + pollLockMargin,
		metrics: m,
		log:     log,
	}
}

// PollForResult looks for the callback of req.CheckoutRequestID until one
// arrives, the poll budget runs out, or ctx is cancelled.
//
// A callback settles the transaction and, on success, records a paid session
// for the client. Running out of polls yields OutcomeTimeout and leaves the
// transaction pending. Cancellation returns ctx.Err() and writes nothing.
func (r *ReconcilerImpl) PollForResult(ctx context.Context, req ports.PollRequest) (*domain.Outcome, error) {
	if req.CheckoutRequestID == "" {
		return nil, apperror.Validation("checkout request id is required to poll")
	}

	log := r.log.With().
		Str("transaction_id", req.TransactionID.String()).
		Str("checkout_request_id", req.CheckoutRequestID).
		Logger()

	lockKey := req.TransactionID.String()
	acquired, err := r.lock.Acquire(ctx, lockKey, r.lockTTL)
	switch {
	case err != nil:
		// ApplyResult only moves pending rows, so a duplicate poller is harmless.
		log.Warn().Err(err).Msg("poll lock unavailable, polling without it")
	case !acquired:
		return nil, ErrAlreadyPolling
	default:
		defer func() {
			if err := r.lock.Release(context.WithoutCancel(ctx), lockKey); err != nil {
				log.Warn().Err(err).Msg("release poll lock")
			}
		}()
	}

	var cb *domain.CallbackResult
	attempts, err := retry.Do(ctx, r.policy, func(ctx context.Context, attempt int) (bool, error) {
		found, err := r.cbRepo.GetByCheckoutRequestID(ctx, req.CheckoutRequestID)
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt+1).Msg("callback lookup failed")
			return false, err
		}
		if found == nil {
			return false, nil
		}
		cb = found
		return true, nil
	})

	if ctxErr := ctx.Err(); ctxErr != nil {
		log.Info().Int("attempts", attempts).Msg("polling cancelled")
		return nil, ctxErr
	}

	if cb == nil {
		log.Warn().Err(err).Int("attempts", attempts).Msg("no callback within poll budget, leaving transaction pending")
		r.metrics.ObserveOutcome(string(domain.OutcomeTimeout), attempts)
		return &domain.Outcome{Kind: domain.OutcomeTimeout, Attempts: attempts}, nil
	}

	outcome := r.settle(ctx, req, cb, log)
	outcome.Attempts = attempts
	r.metrics.ObserveOutcome(string(outcome.Kind), attempts)
	return outcome, nil
}

// settle applies the callback to the transaction. The callback decides the
// outcome; a failed write is logged and left for the sweeper.
func (r *ReconcilerImpl) settle(ctx context.Context, req ports.PollRequest, cb *domain.CallbackResult, log zerolog.Logger) *domain.Outcome {
	result := cb.ToResult()

	changed, err := r.txRepo.ApplyResult(ctx, req.TransactionID, result)
	switch {
	case err != nil:
		log.Error().Err(err).Str("status", string(result.Status)).Msg("apply callback result failed")
	case !changed:
		log.Info().Str("status", string(result.Status)).Msg("transaction already settled")
	default:
		log.Info().Str("status", string(result.Status)).Str("receipt", result.MpesaReceiptNumber).Msg("transaction settled")
	}

	if result.Status != domain.TransactionStatusSuccess {
		return &domain.Outcome{Kind: domain.OutcomeFailed, ResultDesc: cb.ResultDesc}
	}

	if req.ClientID != "" {
		if err := r.sessions.RecordPaymentSession(ctx, req.ClientID, req.ServiceType, req.ActionType,
			req.PhoneNumber, req.TransactionID.String()); err != nil {
			log.Warn().Err(err).Str("action_type", string(req.ActionType)).Msg("record paid session failed")
		}
	}

	return &domain.Outcome{
		Kind:               domain.OutcomeSuccess,
		ResultDesc:         cb.ResultDesc,
		MpesaReceiptNumber: cb.MpesaReceiptNumber,
	}
}
