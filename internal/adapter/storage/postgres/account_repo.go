package postgres

import (
	"context"
	"errors"
	"fmt"

	"school-points-backend/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const accountColumns = `id, username, password_hash, email, first_name, last_name,
		gender, phone_number, birthday, role, qr_code, active, created_at, updated_at`

// AccountRepo implements ports.AccountRepository.
type AccountRepo struct {
	pool Pool
}

// NewAccountRepo creates a new AccountRepo.
func NewAccountRepo(pool Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	a := &domain.Account{}
	err := row.Scan(
		&a.ID, &a.Username, &a.PasswordHash, &a.Email, &a.FirstName, &a.LastName,
		&a.Gender, &a.PhoneNumber, &a.Birthday, &a.Role, &a.QRCode, &a.Active,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return a, nil
}

// Create inserts a new account into the database.
func (r *AccountRepo) Create(ctx context.Context, account *domain.Account) error {
	query := `INSERT INTO accounts (id, username, password_hash, email, first_name, last_name,
		gender, phone_number, birthday, role, qr_code, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := r.pool.Exec(ctx, query,
		account.ID, account.Username, account.PasswordHash, account.Email,
		account.FirstName, account.LastName, account.Gender, account.PhoneNumber,
		account.Birthday, account.Role, account.QRCode, account.Active,
		account.CreatedAt, account.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// GetByID fetches an account by its UUID.
func (r *AccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	a, err := scanAccount(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get account by id: %w", err)
	}
	return a, nil
}

// GetByIDAndRole fetches an account by UUID restricted to a role.
func (r *AccountRepo) GetByIDAndRole(ctx context.Context, id uuid.UUID, role domain.Role) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 AND role = $2`

	a, err := scanAccount(r.pool.QueryRow(ctx, query, id, role))
	if err != nil {
		return nil, fmt.Errorf("get account by id and role: %w", err)
	}
	return a, nil
}

// GetByQRCode resolves a scanned code restricted to a role.
func (r *AccountRepo) GetByQRCode(ctx context.Context, code string, role domain.Role) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE qr_code = $1 AND role = $2`

	a, err := scanAccount(r.pool.QueryRow(ctx, query, code, role))
	if err != nil {
		return nil, fmt.Errorf("get account by qr code: %w", err)
	}
	return a, nil
}

// GetByUsername fetches an account by username.
func (r *AccountRepo) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE username = $1`

	a, err := scanAccount(r.pool.QueryRow(ctx, query, username))
	if err != nil {
		return nil, fmt.Errorf("get account by username: %w", err)
	}
	return a, nil
}

// CountByRole counts accounts holding the given role.
func (r *AccountRepo) CountByRole(ctx context.Context, role domain.Role) (int64, error) {
	query := `SELECT COUNT(*) FROM accounts WHERE role = $1`

	var count int64
	if err := r.pool.QueryRow(ctx, query, role).Scan(&count); err != nil {
		return 0, fmt.Errorf("count accounts by role: %w", err)
	}
	return count, nil
}
