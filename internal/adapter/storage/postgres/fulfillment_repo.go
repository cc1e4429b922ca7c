package postgres

import (
	"context"
	"fmt"
	"time"

	"mpesa-paywall/internal/core/domain"

	"github.com/google/uuid"
)

// FulfillmentRepo implements ports.FulfillmentRepository.
type FulfillmentRepo struct {
	pool Pool
	now  func() time.Time
}

// NewFulfillmentRepo creates a new FulfillmentRepo.
func NewFulfillmentRepo(pool Pool) *FulfillmentRepo {
	return &FulfillmentRepo{pool: pool, now: time.Now}
}

// ActivateAdvertisement marks the advertisement paid and live.
func (r *FulfillmentRepo) ActivateAdvertisement(ctx context.Context, adID string, transactionID *uuid.UUID) error {
	query := `UPDATE advertisements
		SET payment_status = 'completed', status = 'active', transaction_id = $1, activated_at = $2
		WHERE id = $3`

	tag, err := r.pool.Exec(ctx, query, transactionID, r.now().UTC(), adID)
	if err != nil {
		return fmt.Errorf("activate advertisement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("advertisement not found: %s", adID)
	}
	return nil
}

// RecordJobApplication inserts the application with the fee charged.
func (r *FulfillmentRepo) RecordJobApplication(ctx context.Context, app *domain.JobApplication) error {
	query := `INSERT INTO job_applications (id, job_id, applicant_id, applicant_email, application_fee, transaction_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		app.ID, app.JobID, app.ApplicantID, app.ApplicantEmail, app.ApplicationFee, app.TransactionID, app.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert job application: %w", err)
	}
	return nil
}
