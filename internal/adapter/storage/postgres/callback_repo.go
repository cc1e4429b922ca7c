package postgres

import (
	"context"
	"errors"
	"fmt"

	"mpesa-paywall/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// CallbackRepo implements ports.CallbackRepository.
type CallbackRepo struct {
	pool Pool
}

// NewCallbackRepo creates a new CallbackRepo.
func NewCallbackRepo(pool Pool) *CallbackRepo {
	return &CallbackRepo{pool: pool}
}

// Save stores the first callback per checkout id and ignores later ones.
func (r *CallbackRepo) Save(ctx context.Context, cb *domain.CallbackResult) (bool, error) {
	query := `INSERT INTO mpesa_callbacks (checkout_request_id, merchant_request_id, result_code, status,
		result_desc, mpesa_receipt_number, transaction_date, phone_number, amount, raw_payload, received_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (checkout_request_id) DO NOTHING`

	var raw any
	if len(cb.RawPayload) > 0 {
		raw = cb.RawPayload
	}

	tag, err := r.pool.Exec(ctx, query,
		cb.CheckoutRequestID, nullIfEmpty(cb.MerchantRequestID), cb.ResultCode, nullIfEmpty(cb.Status),
		cb.ResultDesc, nullIfEmpty(cb.MpesaReceiptNumber), nullIfEmpty(cb.TransactionDate),
		nullIfEmpty(cb.PhoneNumber), cb.Amount, raw, cb.ReceivedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert callback: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// GetByCheckoutRequestID returns the stored callback or nil, nil.
func (r *CallbackRepo) GetByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*domain.CallbackResult, error) {
	query := `SELECT checkout_request_id, merchant_request_id, result_code, status, result_desc,
		mpesa_receipt_number, transaction_date, phone_number, amount, received_at
		FROM mpesa_callbacks WHERE checkout_request_id = $1`

	cb := &domain.CallbackResult{}
	var merchantReqID, status, receipt, txDate, phone *string
	err := r.pool.QueryRow(ctx, query, checkoutRequestID).Scan(
		&cb.CheckoutRequestID, &merchantReqID, &cb.ResultCode, &status, &cb.ResultDesc,
		&receipt, &txDate, &phone, &cb.Amount, &cb.ReceivedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get callback: %w", err)
	}

	cb.MerchantRequestID = deref(merchantReqID)
	cb.Status = deref(status)
	cb.MpesaReceiptNumber = deref(receipt)
	cb.TransactionDate = deref(txDate)
	cb.PhoneNumber = deref(phone)
	return cb, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
