package postgres

import (
	"context"
	"errors"
	"fmt"

	"mpesa-paywall/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// PricingRepo implements ports.PricingRepository and ports.SettingsRepository.
type PricingRepo struct {
	pool Pool
}

// NewPricingRepo creates a new PricingRepo.
func NewPricingRepo(pool Pool) *PricingRepo {
	return &PricingRepo{pool: pool}
}

// GetByServiceType returns the pricing row or nil, nil.
func (r *PricingRepo) GetByServiceType(ctx context.Context, serviceType string) (*domain.ServicePricing, error) {
	query := `SELECT service_type, continue_amount, videos_amount, post_amount, job_application_amount,
		updated_at, updated_by FROM service_pricing WHERE service_type = $1`

	p := &domain.ServicePricing{}
	err := r.pool.QueryRow(ctx, query, serviceType).Scan(
		&p.ServiceType, &p.ContinueAmount, &p.VideosAmount, &p.PostAmount, &p.JobApplicationAmount,
		&p.UpdatedAt, &p.UpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get service pricing: %w", err)
	}
	return p, nil
}

// dedicatedColumns maps actions with their own pricing field to the column.
var dedicatedColumns = map[domain.ActionType]string{
	domain.ActionPostService:    "post_amount",
	domain.ActionJobApplication: "job_application_amount",
}

// GetDedicatedAmount reads a single amount column for post/job actions.
func (r *PricingRepo) GetDedicatedAmount(ctx context.Context, serviceType string, action domain.ActionType) (*int64, error) {
	column, ok := dedicatedColumns[action]
	if !ok {
		return nil, fmt.Errorf("action %q has no dedicated pricing", action)
	}

	query := fmt.Sprintf(`SELECT %s FROM service_pricing WHERE service_type = $1`, column)

	var amount *int64
	if err := r.pool.QueryRow(ctx, query, serviceType).Scan(&amount); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get %s: %w", column, err)
	}
	return amount, nil
}

// Get reads the singleton payment settings row. The migration seeds it; if
// it was deleted anyway payments are reported as not paused.
func (r *PricingRepo) Get(ctx context.Context) (*domain.GlobalPaymentSettings, error) {
	query := `SELECT is_paused, updated_at, updated_by FROM payment_settings WHERE id = 1`

	s := &domain.GlobalPaymentSettings{}
	if err := r.pool.QueryRow(ctx, query).Scan(&s.IsPaused, &s.UpdatedAt, &s.UpdatedBy); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &domain.GlobalPaymentSettings{}, nil
		}
		return nil, fmt.Errorf("get payment settings: %w", err)
	}
	return s, nil
}
