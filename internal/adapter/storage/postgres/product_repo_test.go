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

func newTestProduct() *domain.Product {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Product{
		ID:          uuid.New(),
		Name:        "Sticker pack",
		Description: "A sheet of holographic stickers",
		PricePoints: 30,
		Stock:       12,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func productColumns() []string {
	return []string{"id", "name", "description", "price_in_points", "stock", "created_at", "updated_at"}
}

func productRow(p *domain.Product) *pgxmock.Rows {
	return pgxmock.NewRows(productColumns()).AddRow(
		p.ID, p.Name, p.Description, p.PricePoints, p.Stock, p.CreatedAt, p.UpdatedAt,
	)
}

func TestProductRepo_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewProductRepo(mock)
	p := newTestProduct()

	mock.ExpectQuery("SELECT .+ FROM products ORDER BY name").
		WillReturnRows(productRow(p))

	products, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Sticker pack", products[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepo_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewProductRepo(mock)
	id := uuid.New()

	mock.ExpectQuery("SELECT .+ FROM products WHERE id").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(productColumns()))

	result, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepo_GetByIDForUpdate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewProductRepo(mock)
	p := newTestProduct()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM products WHERE id .+ FOR UPDATE").
		WithArgs(p.ID).
		WillReturnRows(productRow(p))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	result, err := repo.GetByIDForUpdate(context.Background(), tx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, 12, result.Stock)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepo_DecrementStock(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewProductRepo(mock)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE products SET stock = stock -").
		WithArgs(2, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.DecrementStock(context.Background(), tx, id, 2)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepo_DecrementStock_Insufficient(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewProductRepo(mock)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE products SET stock = stock -").
		WithArgs(99, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.DecrementStock(context.Background(), tx, id, 99)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
