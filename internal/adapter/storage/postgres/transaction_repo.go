package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mpesa-paywall/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const txSelectColumns = `id, merchant_request_id, checkout_request_id, phone_number, amount,
	service_type, action_type, user_id, user_email, status, result_code, result_desc,
	mpesa_receipt_number, transaction_date, created_at, updated_at`

// TransactionRepo implements ports.TransactionRepository.
type TransactionRepo struct {
	pool Pool
	now  func() time.Time
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool, now: time.Now}
}

// Create inserts a new pending transaction. Gateway ids are left NULL.
func (r *TransactionRepo) Create(ctx context.Context, t *domain.PendingTransaction) error {
	query := `INSERT INTO pending_transactions (id, phone_number, amount, service_type, action_type,
		user_id, user_email, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.pool.Exec(ctx, query,
		t.ID, t.PhoneNumber, t.Amount, t.ServiceType, t.ActionType,
		t.UserID, t.UserEmail, t.Status, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert pending transaction: %w", err)
	}
	return nil
}

// AttachGatewayIDs stores the gateway correlation ids on an existing record.
func (r *TransactionRepo) AttachGatewayIDs(ctx context.Context, id uuid.UUID, merchantRequestID, checkoutRequestID string) error {
	query := `UPDATE pending_transactions
		SET merchant_request_id = $1, checkout_request_id = $2, updated_at = $3
		WHERE id = $4`

	tag, err := r.pool.Exec(ctx, query, merchantRequestID, checkoutRequestID, r.now().UTC(), id)
	if err != nil {
		return fmt.Errorf("attach gateway ids: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("pending transaction not found: %s", id)
	}
	return nil
}

// GetByID fetches a transaction by internal id.
func (r *TransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.PendingTransaction, error) {
	query := `SELECT ` + txSelectColumns + ` FROM pending_transactions WHERE id = $1`
	return scanPendingTransaction(r.pool.QueryRow(ctx, query, id))
}

// GetByCheckoutRequestID fetches a transaction by the gateway checkout id.
func (r *TransactionRepo) GetByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*domain.PendingTransaction, error) {
	query := `SELECT ` + txSelectColumns + ` FROM pending_transactions WHERE checkout_request_id = $1`
	return scanPendingTransaction(r.pool.QueryRow(ctx, query, checkoutRequestID))
}

// ApplyResult writes the terminal fields. The status guard makes a second
// writer (late sweeper, duplicate poller) a no-op.
func (r *TransactionRepo) ApplyResult(ctx context.Context, id uuid.UUID, res domain.TransactionResult) (bool, error) {
	query := `UPDATE pending_transactions
		SET status = $1, result_code = $2, result_desc = $3,
			mpesa_receipt_number = COALESCE($4, mpesa_receipt_number),
			transaction_date = COALESCE($5, transaction_date),
			updated_at = $6
		WHERE id = $7 AND status = 'pending'`

	tag, err := r.pool.Exec(ctx, query,
		res.Status, res.ResultCode, nullIfEmpty(res.ResultDesc),
		nullIfEmpty(res.MpesaReceiptNumber), nullIfEmpty(res.TransactionDate),
		r.now().UTC(), id,
	)
	if err != nil {
		return false, fmt.Errorf("apply transaction result: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListStalePending returns pending transactions created before olderThan
// whose callback has been stored. Rows still waiting for a callback are left
// out so they cannot fill every batch.
func (r *TransactionRepo) ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]domain.PendingTransaction, error) {
	query := `SELECT ` + txSelectColumns + ` FROM pending_transactions
		WHERE status = 'pending' AND checkout_request_id IS NOT NULL AND created_at < $1
			AND EXISTS (SELECT 1 FROM mpesa_callbacks c WHERE c.checkout_request_id = pending_transactions.checkout_request_id)
		ORDER BY created_at ASC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, olderThan, limit)
	if err != nil {
		return nil, fmt.Errorf("list stale pending: %w", err)
	}
	defer rows.Close()

	var txns []domain.PendingTransaction
	for rows.Next() {
		t, err := scanPendingTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending rows: %w", err)
	}
	return txns, nil
}

// scanPendingTransaction scans one row; a missing row yields nil, nil.
func scanPendingTransaction(row pgx.Row) (*domain.PendingTransaction, error) {
	t := &domain.PendingTransaction{}
	var merchantReqID, checkoutReqID *string
	err := row.Scan(
		&t.ID, &merchantReqID, &checkoutReqID, &t.PhoneNumber, &t.Amount,
		&t.ServiceType, &t.ActionType, &t.UserID, &t.UserEmail, &t.Status,
		&t.ResultCode, &t.ResultDesc, &t.MpesaReceiptNumber, &t.TransactionDate,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan pending transaction: %w", err)
	}
	if merchantReqID != nil {
		t.MerchantRequestID = *merchantReqID
	}
	if checkoutReqID != nil {
		t.CheckoutRequestID = *checkoutReqID
	}
	return t, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
