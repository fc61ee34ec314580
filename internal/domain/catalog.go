package domain

import (
	"time"

	"github.com/google/uuid"
)

type Category struct {
	ID   uuid.UUID
	Name string
}

// Product is read-only from the cart's perspective. Its price is
// authoritative only at the moment a cart line is created.
type Product struct {
	ID          uuid.UUID
	CategoryID  uuid.UUID
	Name        string
	Description string
	Price       Money

	CreatedAt time.Time
}
