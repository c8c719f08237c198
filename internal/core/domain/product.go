package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product is a store item purchasable with points.
type Product struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PricePoints int       `json:"price_in_points"`
	Stock       int       `json:"stock"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// InStock reports whether at least qty units are available.
func (p *Product) InStock(qty int) bool {
	return p.Stock >= qty
}
