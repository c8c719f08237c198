package ports

import (
	"context"
	"time"

	"school-points-backend/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// AccountRepository defines persistence operations for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	// GetByIDAndRole returns nil when the account exists with a different
	// role; the role constraint is part of the lookup, not a post-check.
	GetByIDAndRole(ctx context.Context, id uuid.UUID, role domain.Role) (*domain.Account, error)
	// GetByQRCode resolves a scan code restricted to the given role.
	GetByQRCode(ctx context.Context, code string, role domain.Role) (*domain.Account, error)
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)
	CountByRole(ctx context.Context, role domain.Role) (int64, error)
}

// WalletRepository defines persistence operations for wallets.
// Methods accepting pgx.Tx run inside transaction blocks; the FOR UPDATE
// variants serialize concurrent awards against the same wallet row.
type WalletRepository interface {
	GetByAccountID(ctx context.Context, accountID uuid.UUID) (*domain.Wallet, error)
	// GetOrCreate lazily repairs a missing wallet on read paths (QR scan).
	// The insert-if-absent and the read are race-safe against concurrent
	// first-scans: at most one wallet per account ever exists.
	GetOrCreate(ctx context.Context, accountID uuid.UUID) (*domain.Wallet, error)
	// GetOrCreateForUpdate does the same inside a transaction and returns
	// the row locked for the remainder of the transaction.
	GetOrCreateForUpdate(ctx context.Context, tx pgx.Tx, accountID uuid.UUID) (*domain.Wallet, error)
	UpdateBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, newBalance int) error
	AverageBalanceByRole(ctx context.Context, role domain.Role) (float64, error)
}

// LedgerRepository defines persistence for append-only ledger entries.
type LedgerRepository interface {
	Create(ctx context.Context, tx pgx.Tx, entry *domain.LedgerEntry) error
	// ListByWallet returns entries newest first, bounded by limit.
	ListByWallet(ctx context.Context, walletID uuid.UUID, limit int) ([]domain.LedgerEntry, error)
	CountByKindBetween(ctx context.Context, kind domain.EntryKind, from, to time.Time) (int64, error)
}

// ScanRow is a scan log joined with the scanned student's name.
type ScanRow struct {
	domain.ScanLog
	StudentName string
}

// ScanLogRepository defines persistence for the award audit trail.
type ScanLogRepository interface {
	Create(ctx context.Context, tx pgx.Tx, log *domain.ScanLog) error
	SumPointsByTeacherBetween(ctx context.Context, teacherID uuid.UUID, from, to time.Time) (int64, error)
	// ListRecentByTeacher returns this teacher's scans newest first.
	ListRecentByTeacher(ctx context.Context, teacherID uuid.UUID, limit int) ([]ScanRow, error)
}

// StudentProfileRepository defines persistence for student progression state.
type StudentProfileRepository interface {
	Create(ctx context.Context, profile *domain.StudentProfile) error
	GetByAccountID(ctx context.Context, accountID uuid.UUID) (*domain.StudentProfile, error)
	// TouchLastActivity sets last_activity; returns false when no profile
	// exists for the account (callers treat that as a no-op, not an error).
	TouchLastActivity(ctx context.Context, accountID uuid.UUID, at time.Time) (bool, error)
	CountActiveBetween(ctx context.Context, from, to time.Time) (int64, error)
}

// ProductRepository defines persistence for the store catalog.
type ProductRepository interface {
	List(ctx context.Context) ([]domain.Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Product, error)
	DecrementStock(ctx context.Context, tx pgx.Tx, id uuid.UUID, qty int) error
}

// OrderRepository defines persistence for store orders.
type OrderRepository interface {
	Create(ctx context.Context, tx pgx.Tx, order *domain.Order) error
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]domain.Order, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
