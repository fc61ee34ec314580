package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Order struct {
	ID        uuid.UUID
	OwnerID   string
	Recipient Recipient
	Total     Money
	Status    OrderStatus
	ChargeID  string
	Items     []OrderItem

	CreatedAt time.Time
	UpdatedAt time.Time
}

// OrderItem snapshots product, quantity and price at purchase time,
// decoupled from later catalog changes.
type OrderItem struct {
	ProductID uuid.UUID
	Quantity  int32
	Price     Money

	CreatedAt time.Time
}

type Recipient struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Address    string `json:"address"`
	City       string `json:"city"`
	Province   string `json:"province"`
	PostalCode string `json:"postal_code"`
	Phone      string `json:"phone"`
}

func (r Recipient) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"first_name", r.FirstName},
		{"last_name", r.LastName},
		{"address", r.Address},
		{"city", r.City},
		{"postal_code", r.PostalCode},
	}

	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			return fmt.Errorf("%s is blank: %w", field.name, ErrInvalidArgument)
		}
	}

	return nil
}
