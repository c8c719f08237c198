package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"school-points-backend/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// StudentProfileRepo implements ports.StudentProfileRepository.
type StudentProfileRepo struct {
	pool Pool
}

// NewStudentProfileRepo creates a new StudentProfileRepo.
func NewStudentProfileRepo(pool Pool) *StudentProfileRepo {
	return &StudentProfileRepo{pool: pool}
}

// Create inserts a new student profile.
func (r *StudentProfileRepo) Create(ctx context.Context, profile *domain.StudentProfile) error {
	query := `INSERT INTO student_profiles (id, account_id, level, streak, last_activity, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, query,
		profile.ID, profile.AccountID, profile.Level, profile.Streak,
		profile.LastActivity, profile.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert student profile: %w", err)
	}
	return nil
}

// GetByAccountID fetches a profile by owning account.
func (r *StudentProfileRepo) GetByAccountID(ctx context.Context, accountID uuid.UUID) (*domain.StudentProfile, error) {
	query := `SELECT id, account_id, level, streak, last_activity, created_at
		FROM student_profiles WHERE account_id = $1`

	p := &domain.StudentProfile{}
	err := r.pool.QueryRow(ctx, query, accountID).Scan(
		&p.ID, &p.AccountID, &p.Level, &p.Streak, &p.LastActivity, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get student profile: %w", err)
	}
	return p, nil
}

// TouchLastActivity records activity for the account's profile. Returns
// false when the account has no profile.
func (r *StudentProfileRepo) TouchLastActivity(ctx context.Context, accountID uuid.UUID, at time.Time) (bool, error) {
	query := `UPDATE student_profiles SET last_activity = $1 WHERE account_id = $2`

	tag, err := r.pool.Exec(ctx, query, at, accountID)
	if err != nil {
		return false, fmt.Errorf("touch last activity: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// CountActiveBetween counts profiles with activity in the [from, to) window.
func (r *StudentProfileRepo) CountActiveBetween(ctx context.Context, from, to time.Time) (int64, error) {
	query := `SELECT COUNT(*) FROM student_profiles
		WHERE last_activity >= $1 AND last_activity < $2`

	var count int64
	if err := r.pool.QueryRow(ctx, query, from, to).Scan(&count); err != nil {
		return 0, fmt.Errorf("count active students: %w", err)
	}
	return count, nil
}
