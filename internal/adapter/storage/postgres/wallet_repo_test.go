package postgres

import (
	"context"
	"testing"
	"time"

	"school-points-backend/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWallet(accountID uuid.UUID) *domain.Wallet {
	return &domain.Wallet{
		ID:          uuid.New(),
		AccountID:   accountID,
		Balance:     120,
		LastUpdated: time.Now().UTC().Truncate(time.Microsecond),
	}
}

func walletColumns() []string {
	return []string{"id", "account_id", "balance", "last_updated"}
}

func walletRow(w *domain.Wallet) *pgxmock.Rows {
	return pgxmock.NewRows(walletColumns()).AddRow(
		w.ID, w.AccountID, w.Balance, w.LastUpdated,
	)
}

func TestWalletRepo_GetByAccountID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	w := newTestWallet(uuid.New())

	mock.ExpectQuery("SELECT .+ FROM wallets WHERE account_id").
		WithArgs(w.AccountID).
		WillReturnRows(walletRow(w))

	result, err := repo.GetByAccountID(context.Background(), w.AccountID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, w.ID, result.ID)
	assert.Equal(t, 120, result.Balance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_GetByAccountID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	accountID := uuid.New()

	mock.ExpectQuery("SELECT .+ FROM wallets WHERE account_id").
		WithArgs(accountID).
		WillReturnRows(pgxmock.NewRows(walletColumns()))

	result, err := repo.GetByAccountID(context.Background(), accountID)
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_GetOrCreate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	w := newTestWallet(uuid.New())

	mock.ExpectExec("INSERT INTO wallets").
		WithArgs(pgxmock.AnyArg(), w.AccountID).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	mock.ExpectQuery("SELECT .+ FROM wallets WHERE account_id").
		WithArgs(w.AccountID).
		WillReturnRows(walletRow(w))

	result, err := repo.GetOrCreate(context.Background(), w.AccountID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, w.ID, result.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_GetOrCreateForUpdate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	w := newTestWallet(uuid.New())

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO wallets").
		WithArgs(pgxmock.AnyArg(), w.AccountID).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery("SELECT .+ FROM wallets WHERE account_id .+ FOR UPDATE").
		WithArgs(w.AccountID).
		WillReturnRows(walletRow(w))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	result, err := repo.GetOrCreateForUpdate(context.Background(), tx, w.AccountID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, w.Balance, result.Balance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_UpdateBalance(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	walletID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE wallets SET balance").
		WithArgs(170, walletID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.UpdateBalance(context.Background(), tx, walletID, 170)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_UpdateBalance_MissingWallet(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	walletID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE wallets SET balance").
		WithArgs(50, walletID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.UpdateBalance(context.Background(), tx, walletID, 50)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_AverageBalanceByRole(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)

	mock.ExpectQuery("SELECT COALESCE\\(AVG\\(w.balance\\), 0\\)").
		WithArgs(domain.RoleStudent).
		WillReturnRows(pgxmock.NewRows([]string{"avg"}).AddRow(42.5))

	avg, err := repo.AverageBalanceByRole(context.Background(), domain.RoleStudent)
	require.NoError(t, err)
	assert.Equal(t, 42.5, avg)
	assert.NoError(t, mock.ExpectationsWereMet())
}
