package service

import (
	"context"
	"fmt"
	"time"

	"school-points-backend/internal/core/domain"
	"school-points-backend/internal/core/ports"
	"school-points-backend/pkg/apperror"

	"github.com/google/uuid"
)

// AuthServiceImpl implements ports.AuthService.
type AuthServiceImpl struct {
	accountRepo ports.AccountRepository
	walletRepo  ports.WalletRepository
	profileRepo ports.StudentProfileRepository
	hashSvc     ports.HashService
	tokenSvc    ports.TokenService
}

// NewAuthService creates a new AuthServiceImpl.
func NewAuthService(
	accountRepo ports.AccountRepository,
	walletRepo ports.WalletRepository,
	profileRepo ports.StudentProfileRepository,
	hashSvc ports.HashService,
	tokenSvc ports.TokenService,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		accountRepo: accountRepo,
		walletRepo:  walletRepo,
		profileRepo: profileRepo,
		hashSvc:     hashSvc,
		tokenSvc:    tokenSvc,
	}
}

// RegisterStudent creates a student account with a fresh scan code, a
// zero-balance wallet and a progression profile. The scan code is
// assigned here once and never changes afterwards.
func (s *AuthServiceImpl) RegisterStudent(ctx context.Context, req ports.RegisterStudentRequest) (*domain.Account, error) {
	existing, err := s.accountRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check username: %w", err))
	}
	if existing != nil {
		return nil, apperror.ErrUsernameExists()
	}

	passwordHash, err := s.hashSvc.Hash(req.Password)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("hash password: %w", err))
	}

	now := time.Now().UTC()
	account := &domain.Account{
		ID:           uuid.New(),
		Username:     req.Username,
		PasswordHash: passwordHash,
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Gender:       req.Gender,
		PhoneNumber:  req.PhoneNumber,
		Birthday:     req.Birthday,
		Role:         domain.RoleStudent,
		QRCode:       uuid.NewString(),
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if account.Gender == "" {
		account.Gender = domain.GenderOther
	}

	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create account: %w", err))
	}

	if _, err := s.walletRepo.GetOrCreate(ctx, account.ID); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create wallet: %w", err))
	}

	profile := &domain.StudentProfile{
		ID:        uuid.New(),
		AccountID: account.ID,
		Level:     1,
		Streak:    0,
		CreatedAt: now,
	}
	if err := s.profileRepo.Create(ctx, profile); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create student profile: %w", err))
	}

	return account, nil
}

// Login validates credentials and returns a JWT carrying the role claim.
func (s *AuthServiceImpl) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	account, err := s.accountRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find account: %w", err))
	}
	if account == nil {
		return nil, apperror.ErrInvalidCredentials()
	}

	valid, err := s.hashSvc.Verify(password, account.PasswordHash)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("verify password: %w", err))
	}
	if !valid {
		return nil, apperror.ErrInvalidCredentials()
	}

	if !account.Active {
		return nil, apperror.ErrAccountInactive()
	}

	token, expiry, err := s.tokenSvc.Generate(account)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("generate token: %w", err))
	}

	return &ports.LoginResult{
		Token:    token,
		Expiry:   expiry,
		Username: account.Username,
		Role:     account.Role,
	}, nil
}

// GetAccount returns the account for the given ID.
func (s *AuthServiceImpl) GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	account, err := s.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get account: %w", err))
	}
	if account == nil {
		return nil, apperror.ErrNotFound("account")
	}
	return account, nil
}
