package repositories

import (
	"context"

	"fulfillment/internal/models"
)

// DiscountRepository defines the interface for discount code data access.
type DiscountRepository interface {
	Create(ctx context.Context, code *models.DiscountCode) error
	GetByCode(ctx context.Context, code string) (*models.DiscountCode, error)
	// FindValid returns the code only while it is still valid. Inside a
	// transaction the row stays locked until commit.
	FindValid(ctx context.Context, code string) (*models.DiscountCode, error)
	// Consume flips a valid code to invalid and reports whether this call did it.
	Consume(ctx context.Context, code string) (bool, error)
	List(ctx context.Context) ([]models.DiscountCode, error)
}
