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

func newTestAccount(role domain.Role) *domain.Account {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Account{
		ID:           uuid.New(),
		Username:     "minh.nguyen",
		PasswordHash: "$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		Email:        "minh@example.edu",
		FirstName:    "Minh",
		LastName:     "Nguyen",
		Gender:       domain.GenderMale,
		Role:         role,
		QRCode:       uuid.NewString(),
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func accountTestColumns() []string {
	return []string{
		"id", "username", "password_hash", "email", "first_name", "last_name",
		"gender", "phone_number", "birthday", "role", "qr_code", "active",
		"created_at", "updated_at",
	}
}

func accountRow(a *domain.Account) *pgxmock.Rows {
	return pgxmock.NewRows(accountTestColumns()).AddRow(
		a.ID, a.Username, a.PasswordHash, a.Email, a.FirstName, a.LastName,
		a.Gender, a.PhoneNumber, a.Birthday, a.Role, a.QRCode, a.Active,
		a.CreatedAt, a.UpdatedAt,
	)
}

func TestAccountRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAccountRepo(mock)
	a := newTestAccount(domain.RoleStudent)

	mock.ExpectExec("INSERT INTO accounts").
		WithArgs(a.ID, a.Username, a.PasswordHash, a.Email, a.FirstName, a.LastName,
			a.Gender, a.PhoneNumber, a.Birthday, a.Role, a.QRCode, a.Active,
			a.CreatedAt, a.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Create(context.Background(), a)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAccountRepo(mock)
	a := newTestAccount(domain.RoleTeacher)

	mock.ExpectQuery("SELECT .+ FROM accounts WHERE id").
		WithArgs(a.ID).
		WillReturnRows(accountRow(a))

	result, err := repo.GetByID(context.Background(), a.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, a.Username, result.Username)
	assert.Equal(t, domain.RoleTeacher, result.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_GetByIDAndRole_WrongRole(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAccountRepo(mock)
	id := uuid.New()

	mock.ExpectQuery("SELECT .+ FROM accounts WHERE id .+ AND role").
		WithArgs(id, domain.RoleStudent).
		WillReturnRows(pgxmock.NewRows(accountTestColumns()))

	result, err := repo.GetByIDAndRole(context.Background(), id, domain.RoleStudent)
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_GetByQRCode(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAccountRepo(mock)
	a := newTestAccount(domain.RoleStudent)

	mock.ExpectQuery("SELECT .+ FROM accounts WHERE qr_code").
		WithArgs(a.QRCode, domain.RoleStudent).
		WillReturnRows(accountRow(a))

	result, err := repo.GetByQRCode(context.Background(), a.QRCode, domain.RoleStudent)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, a.ID, result.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_GetByUsername_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAccountRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM accounts WHERE username").
		WithArgs("ghost").
		WillReturnRows(pgxmock.NewRows(accountTestColumns()))

	result, err := repo.GetByUsername(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_CountByRole(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAccountRepo(mock)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM accounts WHERE role").
		WithArgs(domain.RoleStudent).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(37)))

	count, err := repo.CountByRole(context.Background(), domain.RoleStudent)
	require.NoError(t, err)
	assert.Equal(t, int64(37), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
