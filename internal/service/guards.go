package service

import (
	"context"

	"mpesa-paywall/internal/core/domain"
	"mpesa-paywall/internal/core/ports"
	"mpesa-paywall/pkg/apperror"
)

const fixedAmountGuardName = "fixed_amount"

// GuardInput is what every entry guard sees when a dialog opens.
type GuardInput struct {
	ServiceType string
	ActionType  domain.ActionType
	FixedAmount *int64
	Payer       domain.Payer
	Purpose     domain.Purpose
}

// GuardResult ends guard evaluation. Bypass is empty when the payer must be
// charged Amount.
type GuardResult struct {
	Guard  string
	Bypass domain.BypassReason
	Amount int64
}

// PaymentRequired reports whether the dialog must collect a phone number.
func (r *GuardResult) PaymentRequired() bool {
	return r.Bypass == domain.BypassNone && r.Amount > 0
}

// Guard returns nil to pass evaluation on to the next guard.
type Guard struct {
	Name  string
	Check func(ctx context.Context, in *GuardInput) (*GuardResult, error)
}

// EntryGuards returns the guards in precedence order:
// fixed amount, paid session, whitelisted email, pricing (pause, free, price).
// The paid session never applies to a dialog with a purpose.
func EntryGuards(whitelist ports.WhitelistService, sessions ports.SessionService, pricing ports.PricingService) []Guard {
	return []Guard{
		{Name: fixedAmountGuardName, Check: fixedAmountGuard},
		{Name: "paid_session", Check: paidSessionGuard(sessions)},
		{Name: "whitelisted_email", Check: whitelistedEmailGuard(whitelist)},
		{Name: "pricing", Check: pricingGuard(pricing)},
	}
}

// RunGuards evaluates guards top to bottom and returns the first decision.
func RunGuards(ctx context.Context, guards []Guard, in *GuardInput) (*GuardResult, error) {
	for _, g := range guards {
		res, err := g.Check(ctx, in)
		if err != nil {
			return nil, err
		}
		if res != nil {
			res.Guard = g.Name
			return res, nil
		}
	}
	// The pricing guard always decides; getting here means it was left out.
	return nil, apperror.ErrPricingMissing(in.ServiceType)
}

// fixedAmountGuard skips every pricing lookup when the caller already knows
// the price, as advertisement tiers do.
func fixedAmountGuard(_ context.Context, in *GuardInput) (*GuardResult, error) {
	if in.FixedAmount == nil {
		return nil, nil
	}
	switch amount := *in.FixedAmount; {
	case amount < 0:
		return nil, apperror.ErrInvalidAmount()
	case amount == 0:
		return &GuardResult{Bypass: domain.BypassFree}, nil
	default:
		return &GuardResult{Amount: amount}, nil
	}
}

func paidSessionGuard(sessions ports.SessionService) func(context.Context, *GuardInput) (*GuardResult, error) {
	return func(ctx context.Context, in *GuardInput) (*GuardResult, error) {
		if in.Payer.ClientID == "" || in.Purpose.Kind != domain.PurposeNone {
			return nil, nil
		}
		if sessions.HasActivePaidSession(ctx, in.Payer.ClientID, in.ServiceType, in.ActionType) {
			return &GuardResult{Bypass: domain.BypassPaidSession}, nil
		}
		return nil, nil
	}
}

func whitelistedEmailGuard(whitelist ports.WhitelistService) func(context.Context, *GuardInput) (*GuardResult, error) {
	return func(ctx context.Context, in *GuardInput) (*GuardResult, error) {
		if in.Payer.UserEmail == "" {
			return nil, nil
		}
		if whitelist.IsWhitelisted(ctx, in.Payer.UserEmail) {
			return &GuardResult{Bypass: domain.BypassWhitelistEmail}, nil
		}
		return nil, nil
	}
}

func pricingGuard(pricing ports.PricingService) func(context.Context, *GuardInput) (*GuardResult, error) {
	return func(ctx context.Context, in *GuardInput) (*GuardResult, error) {
		q, err := pricing.Quote(ctx, in.ServiceType, in.ActionType)
		if err != nil {
			return nil, err
		}
		switch {
		case q.Paused:
			return &GuardResult{Bypass: domain.BypassPaused, Amount: q.Amount}, nil
		case q.Amount == 0:
			return &GuardResult{Bypass: domain.BypassFree}, nil
		default:
			return &GuardResult{Amount: q.Amount}, nil
		}
	}
}
