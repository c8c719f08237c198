package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"
	"unicode/utf8"

	"school-points-backend/internal/core/domain"
	"school-points-backend/internal/core/ports"
	"school-points-backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AwardServiceImpl implements ports.AwardService. The award path is the
// one place in the system where a multi-write sequence must be atomic:
// wallet delta, ledger entry and scan log commit together or not at all.
type AwardServiceImpl struct {
	accountRepo  ports.AccountRepository
	walletRepo   ports.WalletRepository
	ledgerRepo   ports.LedgerRepository
	scanRepo     ports.ScanLogRepository
	profileRepo  ports.StudentProfileRepository
	transactor   ports.DBTransactor
	maxPoints    int
	maxReasonLen int
	log          zerolog.Logger
}

// NewAwardService creates a new AwardServiceImpl.
func NewAwardService(
	accountRepo ports.AccountRepository,
	walletRepo ports.WalletRepository,
	ledgerRepo ports.LedgerRepository,
	scanRepo ports.ScanLogRepository,
	profileRepo ports.StudentProfileRepository,
	transactor ports.DBTransactor,
	maxPoints int,
	maxReasonLen int,
	log zerolog.Logger,
) *AwardServiceImpl {
	return &AwardServiceImpl{
		accountRepo:  accountRepo,
		walletRepo:   walletRepo,
		ledgerRepo:   ledgerRepo,
		scanRepo:     scanRepo,
		profileRepo:  profileRepo,
		transactor:   transactor,
		maxPoints:    maxPoints,
		maxReasonLen: maxReasonLen,
		log:          log,
	}
}

// ResolveQR maps a scan code to exactly one student account. The lookup
// is restricted to role=student, so a teacher's own code never resolves.
// As a read-with-repair side effect it ensures the student's wallet
// exists; an unknown code creates nothing.
func (s *AwardServiceImpl) ResolveQR(ctx context.Context, qrValue string) (*ports.ScanResult, error) {
	if strings.TrimSpace(qrValue) == "" {
		return nil, apperror.Validation("QR value is required")
	}

	student, err := s.accountRepo.GetByQRCode(ctx, qrValue, domain.RoleStudent)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("resolve qr code: %w", err))
	}
	if student == nil {
		return nil, apperror.ErrStudentQRNotFound()
	}

	wallet, err := s.walletRepo.GetOrCreate(ctx, student.ID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("ensure wallet: %w", err))
	}

	result := &ports.ScanResult{
		Account: student,
		Balance: wallet.Balance,
		Level:   1,
		Streak:  0,
	}

	// Missing profile is not an error: level/streak fall back to defaults.
	profile, err := s.profileRepo.GetByAccountID(ctx, student.ID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load student profile: %w", err))
	}
	if profile != nil {
		result.Level = profile.Level
		result.Streak = profile.Streak
	}

	return result, nil
}

// AwardPoints grants points to a student. Validation runs in a fixed
// order, first failure wins: points bounds, reason, student existence,
// then the requester role check, then the atomic write sequence.
func (s *AwardServiceImpl) AwardPoints(ctx context.Context, req ports.AwardRequest) (*ports.AwardResult, error) {
	if req.Points <= 0 {
		return nil, apperror.Validation("Points must be greater than 0")
	}
	if req.Points > s.maxPoints {
		return nil, apperror.Validation(fmt.Sprintf("Cannot award more than %d points at once", s.maxPoints))
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, apperror.Validation("Reason is required")
	}
	// The cap counts the characters the client submitted; the ingress
	// sanitizer's entity escaping must not eat into the budget.
	if utf8.RuneCountInString(html.UnescapeString(reason)) > s.maxReasonLen {
		return nil, apperror.Validation(fmt.Sprintf("Reason must be at most %d characters", s.maxReasonLen))
	}

	// Structural validation of student_id happens before the role check.
	student, err := s.accountRepo.GetByIDAndRole(ctx, req.StudentID, domain.RoleStudent)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("validate student: %w", err))
	}
	if student == nil {
		return nil, apperror.Validation("Student not found")
	}

	requester, err := s.accountRepo.GetByID(ctx, req.RequesterID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load requester: %w", err))
	}
	if requester == nil {
		return nil, apperror.ErrInvalidToken()
	}
	if !requester.IsTeacher() {
		return nil, apperror.Forbidden("Only teachers can award points")
	}

	// Atomic phase: wallet delta + ledger entry + scan log in one tx.
	// The locked wallet row serializes concurrent awards to one student.
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	wallet, err := s.walletRepo.GetOrCreateForUpdate(ctx, dbTx, student.ID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}

	newBalance := wallet.Balance + req.Points
	if err := s.walletRepo.UpdateBalance(ctx, dbTx, wallet.ID, newBalance); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update balance: %w", err))
	}

	now := time.Now().UTC()
	entry := &domain.LedgerEntry{
		ID:          uuid.New(),
		WalletID:    wallet.ID,
		Amount:      req.Points,
		Kind:        domain.EntryKindEarn,
		Description: fmt.Sprintf("Awarded by %s: %s", requester.DisplayName(), reason),
		CreatedAt:   now,
	}
	if err := s.ledgerRepo.Create(ctx, dbTx, entry); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("append ledger entry: %w", err))
	}

	scan := &domain.ScanLog{
		ID:        uuid.New(),
		StudentID: student.ID,
		TeacherID: requester.ID,
		Points:    req.Points,
		CreatedAt: now,
	}
	if err := s.scanRepo.Create(ctx, dbTx, scan); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("append scan log: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit award tx: %w", err))
	}

	// Best-effort phase: the activity touch may fail or find no profile
	// without rolling back the committed award.
	if touched, err := s.profileRepo.TouchLastActivity(ctx, student.ID, now); err != nil {
		s.log.Warn().Err(err).Str("student_id", student.ID.String()).Msg("failed to touch last activity")
	} else if !touched {
		s.log.Debug().Str("student_id", student.ID.String()).Msg("no student profile, skipping activity touch")
	}

	s.log.Info().
		Str("student_id", student.ID.String()).
		Str("teacher_id", requester.ID.String()).
		Int("points", req.Points).
		Int("new_balance", newBalance).
		Msg("points awarded")

	return &ports.AwardResult{
		Message:    fmt.Sprintf("Successfully awarded %d points to %s", req.Points, student.DisplayName()),
		NewBalance: newBalance,
		Entry:      entry,
	}, nil
}
