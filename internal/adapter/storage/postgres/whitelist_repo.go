package postgres

import (
	"context"
	"fmt"

	"mpesa-paywall/internal/core/domain"
)

// WhitelistRepo implements ports.WhitelistRepository.
type WhitelistRepo struct {
	pool Pool
}

// NewWhitelistRepo creates a new WhitelistRepo.
func NewWhitelistRepo(pool Pool) *WhitelistRepo {
	return &WhitelistRepo{pool: pool}
}

// ListActive returns every non-deleted entry of entryType.
func (r *WhitelistRepo) ListActive(ctx context.Context, entryType domain.WhitelistType) ([]domain.WhitelistEntry, error) {
	query := `SELECT id, entry_type, value, added_at, added_by, is_deleted
		FROM payment_whitelist WHERE entry_type = $1 AND NOT is_deleted`

	rows, err := r.pool.Query(ctx, query, entryType)
	if err != nil {
		return nil, fmt.Errorf("list whitelist: %w", err)
	}
	defer rows.Close()

	var entries []domain.WhitelistEntry
	for rows.Next() {
		var e domain.WhitelistEntry
		if err := rows.Scan(&e.ID, &e.Type, &e.Value, &e.AddedAt, &e.AddedBy, &e.IsDeleted); err != nil {
			return nil, fmt.Errorf("scan whitelist row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate whitelist rows: %w", err)
	}
	return entries, nil
}
