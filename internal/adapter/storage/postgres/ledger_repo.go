package postgres

import (
	"context"
	"fmt"
	"time"

	"school-points-backend/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// LedgerRepo implements ports.LedgerRepository. Entries are append-only;
// there is no update or delete path.
type LedgerRepo struct {
	pool Pool
}

// NewLedgerRepo creates a new LedgerRepo.
func NewLedgerRepo(pool Pool) *LedgerRepo {
	return &LedgerRepo{pool: pool}
}

// Create appends a ledger entry within a transaction.
func (r *LedgerRepo) Create(ctx context.Context, tx pgx.Tx, entry *domain.LedgerEntry) error {
	query := `INSERT INTO ledger_entries (id, wallet_id, amount, transaction_type, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := tx.Exec(ctx, query,
		entry.ID, entry.WalletID, entry.Amount, entry.Kind, entry.Description, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

// ListByWallet returns a wallet's entries newest first, bounded by limit.
func (r *LedgerRepo) ListByWallet(ctx context.Context, walletID uuid.UUID, limit int) ([]domain.LedgerEntry, error) {
	query := `SELECT id, wallet_id, amount, transaction_type, description, created_at
		FROM ledger_entries WHERE wallet_id = $1 ORDER BY created_at DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, walletID, limit)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()

	entries := []domain.LedgerEntry{}
	for rows.Next() {
		var e domain.LedgerEntry
		if err := rows.Scan(&e.ID, &e.WalletID, &e.Amount, &e.Kind, &e.Description, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger entries: %w", err)
	}
	return entries, nil
}

// CountByKindBetween counts entries of a kind in the [from, to) window.
func (r *LedgerRepo) CountByKindBetween(ctx context.Context, kind domain.EntryKind, from, to time.Time) (int64, error) {
	query := `SELECT COUNT(*) FROM ledger_entries
		WHERE transaction_type = $1 AND created_at >= $2 AND created_at < $3`

	var count int64
	if err := r.pool.QueryRow(ctx, query, kind, from, to).Scan(&count); err != nil {
		return 0, fmt.Errorf("count ledger entries: %w", err)
	}
	return count, nil
}
