package service

import (
	"context"
	"fmt"
	"time"

	"mpesa-paywall/internal/core/domain"
	"mpesa-paywall/internal/core/ports"
	"mpesa-paywall/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// FulfillmentServiceImpl implements ports.FulfillmentService.
type FulfillmentServiceImpl struct {
	repo  ports.FulfillmentRepository
	audit ports.AuditService
	now   func() time.Time
	log   zerolog.Logger
}

// NewFulfillmentService creates a new FulfillmentServiceImpl.
func NewFulfillmentService(repo ports.FulfillmentRepository, audit ports.AuditService, log zerolog.Logger) *FulfillmentServiceImpl {
	return &FulfillmentServiceImpl{repo: repo, audit: audit, now: time.Now, log: log}
}

// Fulfill performs the post-payment write for the dialog's purpose.
// Dialogs without a purpose unlock content on the client and need nothing.
func (s *FulfillmentServiceImpl) Fulfill(ctx context.Context, c *domain.Completion) error {
	switch c.Purpose.Kind {
	case domain.PurposeNone:
		return nil
	case domain.PurposeAdvertisement, domain.PurposeJobApplication:
	default:
		return apperror.Validation(fmt.Sprintf("unknown purpose %q", c.Purpose.Kind))
	}
	if c.Purpose.ReferenceID == "" {
		return apperror.Validation("purpose reference id is required")
	}
	if !c.Authorizes() {
		return apperror.ErrNotAuthorized(fmt.Sprintf("completion with bypass %q does not pay for %s", c.Bypass, c.Purpose.Kind))
	}

	log := s.log.With().
		Str("dialog_id", c.DialogID.String()).
		Str("purpose", string(c.Purpose.Kind)).
		Str("reference_id", c.Purpose.ReferenceID).
		Logger()

	switch c.Purpose.Kind {
	case domain.PurposeAdvertisement:
		if err := s.repo.ActivateAdvertisement(ctx, c.Purpose.ReferenceID, c.TransactionID); err != nil {
			return apperror.ErrStoreUnavailable(err)
		}
		log.Info().Bool("charged", c.Charged()).Msg("advertisement activated")

	case domain.PurposeJobApplication:
		var fee int64
		if c.Charged() {
			fee = c.Amount
		}
		app := &domain.JobApplication{
			ID:             uuid.New(),
			JobID:          c.Purpose.ReferenceID,
			ApplicantID:    optional(c.Payer.UserID),
			ApplicantEmail: optional(c.Payer.UserEmail),
			ApplicationFee: fee,
			TransactionID:  c.TransactionID,
			CreatedAt:      s.now().UTC(),
		}
		if err := s.repo.RecordJobApplication(ctx, app); err != nil {
			return apperror.ErrStoreUnavailable(err)
		}
		log.Info().Int64("application_fee", fee).Msg("job application recorded")
	}

	if s.audit != nil {
		var userID *string
		if c.Payer.UserID != "" {
			userID = &c.Payer.UserID
		}
		s.audit.Log(ctx, &domain.AuditLog{
			UserID:       userID,
			ClientID:     c.Payer.ClientID,
			Action:       domain.AuditActionPaymentSettled,
			ResourceType: string(c.Purpose.Kind),
			ResourceID:   c.Purpose.ReferenceID,
			Details:      fmt.Sprintf(`{"amount":%d,"bypass":%q}`, c.Amount, c.Bypass),
		})
	}
	return nil
}
