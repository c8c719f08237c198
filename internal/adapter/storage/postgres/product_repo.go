package postgres

import (
	"context"
	"errors"
	"fmt"

	"school-points-backend/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProductRepo implements ports.ProductRepository.
type ProductRepo struct {
	pool Pool
}

// NewProductRepo creates a new ProductRepo.
func NewProductRepo(pool Pool) *ProductRepo {
	return &ProductRepo{pool: pool}
}

// List returns the full catalog ordered by name.
func (r *ProductRepo) List(ctx context.Context) ([]domain.Product, error) {
	query := `SELECT id, name, description, price_in_points, stock, created_at, updated_at
		FROM products ORDER BY name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.PricePoints, &p.Stock, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

// GetByID fetches a product (non-locking read).
func (r *ProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `SELECT id, name, description, price_in_points, stock, created_at, updated_at
		FROM products WHERE id = $1`

	p := &domain.Product{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Description, &p.PricePoints, &p.Stock, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product by id: %w", err)
	}
	return p, nil
}

// GetByIDForUpdate fetches a product with pessimistic locking so concurrent
// checkouts cannot oversell stock. This MUST be called within a transaction.
func (r *ProductRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Product, error) {
	query := `SELECT id, name, description, price_in_points, stock, created_at, updated_at
		FROM products WHERE id = $1 FOR UPDATE`

	p := &domain.Product{}
	err := tx.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Description, &p.PricePoints, &p.Stock, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product for update: %w", err)
	}
	return p, nil
}

// DecrementStock reduces stock within a transaction. The WHERE guard keeps
// stock from going negative even if callers race past the locked read.
func (r *ProductRepo) DecrementStock(ctx context.Context, tx pgx.Tx, id uuid.UUID, qty int) error {
	query := `UPDATE products SET stock = stock - $1, updated_at = NOW()
		WHERE id = $2 AND stock >= $1`

	tag, err := tx.Exec(ctx, query, qty, id)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("decrement stock: insufficient stock for product %s", id)
	}
	return nil
}
