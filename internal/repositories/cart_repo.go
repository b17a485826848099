package repositories

import (
	"context"

	"fulfillment/internal/models"
)

// CartRepository defines the interface for cart data access.
type CartRepository interface {
	// ListByUser returns the user's lines with their items loaded.
	ListByUser(ctx context.Context, userID string) ([]models.CartLine, error)
	// ListForCheckout is ListByUser with the cart rows locked until the
	// surrounding transaction ends.
	ListForCheckout(ctx context.Context, userID string) ([]models.CartLine, error)
	// AddQuantity creates the (user, item) line or increments its quantity.
	AddQuantity(ctx context.Context, userID, itemID string, quantity int) (*models.CartLine, error)
	// DeleteLines removes the given line IDs of a user and reports how many were removed.
	DeleteLines(ctx context.Context, userID string, ids []uint) (int64, error)
}
