package postgres

import (
	"context"
	"errors"
	"fmt"

	"school-points-backend/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// WalletRepo implements ports.WalletRepository.
type WalletRepo struct {
	pool Pool
}

// NewWalletRepo creates a new WalletRepo.
func NewWalletRepo(pool Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

// GetByAccountID fetches a wallet by owning account (non-locking read).
func (r *WalletRepo) GetByAccountID(ctx context.Context, accountID uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT id, account_id, balance, last_updated FROM wallets WHERE account_id = $1`

	w := &domain.Wallet{}
	err := r.pool.QueryRow(ctx, query, accountID).Scan(
		&w.ID, &w.AccountID, &w.Balance, &w.LastUpdated,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wallet by account id: %w", err)
	}
	return w, nil
}

// GetOrCreate fetches the account's wallet, creating an empty one if absent.
// The ON CONFLICT DO NOTHING insert means two concurrent first-reads cannot
// produce two wallets for the same account.
func (r *WalletRepo) GetOrCreate(ctx context.Context, accountID uuid.UUID) (*domain.Wallet, error) {
	insert := `INSERT INTO wallets (id, account_id, balance, last_updated)
		VALUES ($1, $2, 0, NOW()) ON CONFLICT (account_id) DO NOTHING`

	if _, err := r.pool.Exec(ctx, insert, uuid.New(), accountID); err != nil {
		return nil, fmt.Errorf("ensure wallet: %w", err)
	}

	query := `SELECT id, account_id, balance, last_updated FROM wallets WHERE account_id = $1`

	w := &domain.Wallet{}
	err := r.pool.QueryRow(ctx, query, accountID).Scan(
		&w.ID, &w.AccountID, &w.Balance, &w.LastUpdated,
	)
	if err != nil {
		return nil, fmt.Errorf("get wallet after ensure: %w", err)
	}
	return w, nil
}

// GetOrCreateForUpdate is GetOrCreate inside a transaction, returning the
// wallet row locked with FOR UPDATE for the remainder of the transaction.
// This MUST be called within a transaction.
func (r *WalletRepo) GetOrCreateForUpdate(ctx context.Context, tx pgx.Tx, accountID uuid.UUID) (*domain.Wallet, error) {
	insert := `INSERT INTO wallets (id, account_id, balance, last_updated)
		VALUES ($1, $2, 0, NOW()) ON CONFLICT (account_id) DO NOTHING`

	if _, err := tx.Exec(ctx, insert, uuid.New(), accountID); err != nil {
		return nil, fmt.Errorf("ensure wallet: %w", err)
	}

	query := `SELECT id, account_id, balance, last_updated FROM wallets WHERE account_id = $1 FOR UPDATE`

	w := &domain.Wallet{}
	err := tx.QueryRow(ctx, query, accountID).Scan(
		&w.ID, &w.AccountID, &w.Balance, &w.LastUpdated,
	)
	if err != nil {
		return nil, fmt.Errorf("get wallet for update: %w", err)
	}
	return w, nil
}

// UpdateBalance sets a wallet's balance within a transaction.
func (r *WalletRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, newBalance int) error {
	query := `UPDATE wallets SET balance = $1, last_updated = NOW() WHERE id = $2`

	tag, err := tx.Exec(ctx, query, newBalance, walletID)
	if err != nil {
		return fmt.Errorf("update wallet balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update wallet balance: wallet %s not found", walletID)
	}
	return nil
}

// AverageBalanceByRole returns the mean wallet balance across accounts of a
// role. Accounts without a wallet do not contribute to the average.
func (r *WalletRepo) AverageBalanceByRole(ctx context.Context, role domain.Role) (float64, error) {
	query := `SELECT COALESCE(AVG(w.balance), 0)
		FROM wallets w JOIN accounts a ON a.id = w.account_id
		WHERE a.role = $1`

	var avg float64
	if err := r.pool.QueryRow(ctx, query, role).Scan(&avg); err != nil {
		return 0, fmt.Errorf("average balance by role: %w", err)
	}
	return avg, nil
}
