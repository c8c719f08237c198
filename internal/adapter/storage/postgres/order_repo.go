package postgres

import (
	"context"
	"fmt"

	"school-points-backend/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// OrderRepo implements ports.OrderRepository.
type OrderRepo struct {
	pool Pool
}

// NewOrderRepo creates a new OrderRepo.
func NewOrderRepo(pool Pool) *OrderRepo {
	return &OrderRepo{pool: pool}
}

// Create inserts an order and its items within a transaction.
func (r *OrderRepo) Create(ctx context.Context, tx pgx.Tx, order *domain.Order) error {
	orderQuery := `INSERT INTO orders (id, account_id, status, total_points, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := tx.Exec(ctx, orderQuery,
		order.ID, order.AccountID, order.Status, order.TotalPoints,
		order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	itemQuery := `INSERT INTO order_items (id, order_id, product_id, product_name, quantity, points_spent)
		VALUES ($1, $2, $3, $4, $5, $6)`

	for _, item := range order.Items {
		_, err := tx.Exec(ctx, itemQuery,
			item.ID, item.OrderID, item.ProductID, item.ProductName,
			item.Quantity, item.PointsSpent,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return nil
}

// ListByAccount returns an account's orders newest first, items included.
func (r *OrderRepo) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]domain.Order, error) {
	query := `SELECT id, account_id, status, total_points, created_at, updated_at
		FROM orders WHERE account_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.AccountID, &o.Status, &o.TotalPoints, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	for i := range orders {
		items, err := r.listItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

func (r *OrderRepo) listItems(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error) {
	query := `SELECT id, order_id, product_id, product_name, quantity, points_spent
		FROM order_items WHERE order_id = $1`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	items := []domain.OrderItem{}
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Quantity, &it.PointsSpent); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}
	return items, nil
}
