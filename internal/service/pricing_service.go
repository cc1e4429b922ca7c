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

	"github.com/rs/zerolog"
)

const (
	defaultPricingAttempts = 5
	defaultPricingBackoff  = time.Second
)

// PricingServiceImpl implements ports.PricingService.
type PricingServiceImpl struct {
	pricing  ports.PricingRepository
	settings ports.SettingsRepository
	policy   retry.Policy
	metrics  *metrics.Metrics
	log      zerolog.Logger
}

// NewPricingService creates a new PricingServiceImpl. Quote retries up to
// attempts times, waiting attempt*backoff before each attempt.
func NewPricingService(
	pricing ports.PricingRepository,
	settings ports.SettingsRepository,
	attempts int,
	backoff time.Duration,
	m *metrics.Metrics,
	log zerolog.Logger,
) *PricingServiceImpl {
	if attempts <= 0 {
		attempts = defaultPricingAttempts
	}
	if backoff <= 0 {
		backoff = defaultPricingBackoff
	}
	return &PricingServiceImpl{
		pricing:  pricing,
		settings: settings,
		policy: retry.Policy{
			MaxAttempts: attempts,
			Backoff:     retry.Linear(backoff),
			Sleep:       retry.ContextSleep,
		},
		metrics: m,
		log:     log,
	}
}

// GetServicePricing returns the pricing record, or nil if none exists.
func (s *PricingServiceImpl) GetServicePricing(ctx context.Context, serviceType string) (*domain.ServicePricing, error) {
	p, err := s.pricing.GetByServiceType(ctx, serviceType)
	if err != nil {
		return nil, apperror.ErrStoreUnavailable(err)
	}
	return p, nil
}

// GetSettings returns the global switch, or nil if it was never created.
func (s *PricingServiceImpl) GetSettings(ctx context.Context) (*domain.GlobalPaymentSettings, error) {
	st, err := s.settings.Get(ctx)
	if err != nil {
		return nil, apperror.ErrStoreUnavailable(err)
	}
	return st, nil
}

// Quote resolves the amount due for (serviceType, action) together with the
// pause flag. Both are re-read on every attempt; the loop stops as soon as
// both are present.
//
// A pause wins over everything, including missing pricing. Otherwise missing
// pricing after the last attempt is CFG_001 and never a free quote. A settings
// row that never shows up reads as not paused.
func (s *PricingServiceImpl) Quote(ctx context.Context, serviceType string, action domain.ActionType) (*domain.Quote, error) {
	if !action.Valid() {
		return nil, apperror.Validation(fmt.Sprintf("unknown action type %q", action))
	}

	var (
		amount   *int64
		settings *domain.GlobalPaymentSettings
	)

	attempts, err := retry.Do(ctx, s.policy, func(ctx context.Context, attempt int) (bool, error) {
		var lastErr error

		st, err := s.settings.Get(ctx)
		if err != nil {
			lastErr = fmt.Errorf("settings: %w", err)
		} else if st != nil {
			settings = st
		}

		a, err := s.lookupAmount(ctx, serviceType, action)
		if err != nil {
			lastErr = fmt.Errorf("pricing: %w", err)
		} else if a != nil {
			amount = a
		}

		if lastErr != nil || amount == nil || settings == nil {
			s.log.Debug().
				Err(lastErr).
				Str("service_type", serviceType).
				Int("attempt", attempt+1).
				Bool("pricing_found", amount != nil).
				Bool("settings_found", settings != nil).
				Msg("pricing not ready, retrying")
		}
		return amount != nil && settings != nil, lastErr
	})
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	quote := &domain.Quote{ServiceType: serviceType, ActionType: action, Attempts: attempts}

	if settings != nil && settings.IsPaused {
		quote.Paused = true
		if amount != nil {
			quote.Amount = *amount
		}
		return quote, nil
	}

	if amount == nil {
		s.metrics.ObservePricingMissing(serviceType)
		s.log.Error().
			Err(err).
			Str("service_type", serviceType).
			Str("action_type", string(action)).
			Int("attempts", attempts).
			Msg("no pricing configured, refusing to bypass payment")
		return nil, apperror.ErrPricingMissing(serviceType)
	}
	if *amount < 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	quote.Amount = *amount
	return quote, nil
}

// lookupAmount uses the dedicated column for post/job actions and the
// generic continue/videos selection otherwise.
func (s *PricingServiceImpl) lookupAmount(ctx context.Context, serviceType string, action domain.ActionType) (*int64, error) {
	if action.HasDedicatedPricing() {
		return s.pricing.GetDedicatedAmount(ctx, serviceType, action)
	}

	p, err := s.pricing.GetByServiceType(ctx, serviceType)
	if err != nil || p == nil {
		return nil, err
	}
	a, ok := p.AmountFor(action)
	if !ok {
		return nil, nil
	}
	return &a, nil
}
