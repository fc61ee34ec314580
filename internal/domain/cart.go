package domain

import (
	"time"

	"github.com/google/uuid"
)

type Cart struct {
	OwnerID string
	Items   []CartItem
}

// Total sums quantity × price over the current items.
func (c Cart) Total() Money {
	total := Money{Currency: CAD}

	for _, item := range c.Items {
		total = total.Add(item.Price.Mul(item.Quantity))
	}

	return total
}

// CartItem is unique per (owner, product). Re-adding a product increments
// Quantity in place; Price stays what it was on first add.
type CartItem struct {
	ID          uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	Quantity    int32
	Price       Money

	CreatedAt time.Time
}
