package service

import (
	"context"
	"time"

	"mpesa-paywall/internal/core/ports"
	"mpesa-paywall/internal/metrics"

	"github.com/rs/zerolog"
)

const (
	defaultSweepInterval  = time.Minute
	defaultSweepMinAge    = 3 * time.Minute
	defaultSweepBatchSize = 100
)

// Sweeper periodically settles pending transactions whose callback arrived
// after every poller gave up (dialog closed, timeout, crash). It never
// records paid sessions: those belong to the client that was polling.
type Sweeper struct {
	txRepo    ports.TransactionRepository
	cbRepo    ports.CallbackRepository
	interval  time.Duration
	minAge    time.Duration
	batchSize int
	now       func() time.Time
	metrics   *metrics.Metrics
	log       zerolog.Logger
}

// NewSweeper creates a new Sweeper. Zero values fall back to defaults.
func NewSweeper(
	txRepo ports.TransactionRepository,
	cbRepo ports.CallbackRepository,
	interval, minAge time.Duration,
	batchSize int,
	m *metrics.Metrics,
	log zerolog.Logger,
) *Sweeper {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	if minAge <= 0 {
		minAge = defaultSweepMinAge
	}
	if batchSize <= 0 {
		batchSize = defaultSweepBatchSize
	}
	return &Sweeper{
		txRepo:    txRepo,
		cbRepo:    cbRepo,
		interval:  interval,
		minAge:    minAge,
		batchSize: batchSize,
		now:       time.Now,
		metrics:   m,
		log:       log,
	}
}

// Start runs the sweep loop until ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	s.log.Info().Dur("interval", s.interval).Dur("min_age", s.minAge).Msg("late-callback sweeper started")

	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("late-callback sweeper stopped")
			return
		case <-t.C:
			if _, err := s.SweepOnce(ctx); err != nil {
				s.log.Error().Err(err).Msg("sweep failed")
			}
		}
	}
}

// SweepOnce settles one batch and returns how many transactions changed.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.minAge)
	pending, err := s.txRepo.ListStalePending(ctx, cutoff, s.batchSize)
	if err != nil {
		return 0, err
	}

	settled := 0
	for i := range pending {
		if ctx.Err() != nil {
			return settled, ctx.Err()
		}
		txn := &pending[i]
		if !txn.HasGatewayIDs() {
			continue
		}

		log := s.log.With().
			Str("transaction_id", txn.ID.String()).
			Str("checkout_request_id", txn.CheckoutRequestID).
			Logger()

		cb, err := s.cbRepo.GetByCheckoutRequestID(ctx, txn.CheckoutRequestID)
		if err != nil {
			log.Warn().Err(err).Msg("sweeper: callback lookup failed")
			continue
		}
		if cb == nil {
			continue
		}

		result := cb.ToResult()
		changed, err := s.txRepo.ApplyResult(ctx, txn.ID, result)
		if err != nil {
			log.Warn().Err(err).Msg("sweeper: apply result failed")
			continue
		}
		if !changed {
			continue
		}

		settled++
		s.metrics.ObserveSweep(string(result.Status))
		log.Info().Str("status", string(result.Status)).Msg("sweeper: reconciled late callback")
	}

	if settled > 0 || len(pending) > 0 {
		s.log.Debug().Int("scanned", len(pending)).Int("settled", settled).Msg("sweep complete")
	}
	return settled, nil
}
