package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the lifecycle state of a store order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusPreparing  OrderStatus = "preparing"
	OrderStatusDelivering OrderStatus = "delivering"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Order is a points purchase of one or more products. The point debit
// happens atomically with the order insert and a spend ledger entry.
type Order struct {
	ID          uuid.UUID   `json:"id"`
	AccountID   uuid.UUID   `json:"account_id"`
	Status      OrderStatus `json:"status"`
	TotalPoints int         `json:"total_points"`
	Items       []OrderItem `json:"items,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// OrderItem is one product line within an order. PointsSpent is the
// total for the line (unit price at purchase time times quantity).
type OrderItem struct {
	ID          uuid.UUID `json:"id"`
	OrderID     uuid.UUID `json:"order_id"`
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Quantity    int       `json:"quantity"`
	PointsSpent int       `json:"points_spent"`
}
