package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
)

type CartRepository interface {
	GetCart(ctx context.Context, ownerID string) (domain.Cart, error)

	// AddItem captures the product's current catalog price and either creates
	// a cart line or increments the existing one for (ownerID, productID).
	AddItem(ctx context.Context, ownerID string, productID uuid.UUID, quantity int32) (domain.CartItem, error)

	// RemoveItem deletes a cart line by id. Removing an absent line is not an
	// error; the bool reports whether a row was actually deleted.
	RemoveItem(ctx context.Context, lineID uuid.UUID) (bool, error)

	// MergeCart moves every cart line from fromOwnerID to toOwnerID in a
	// single transaction, summing quantities where both owners hold the
	// same product.
	MergeCart(ctx context.Context, fromOwnerID, toOwnerID string) error
}
