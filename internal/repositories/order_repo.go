package repositories

import (
	"context"

	"fulfillment/internal/models"

	"github.com/shopspring/decimal"
)

// OrderSummary aggregates committed orders.
type OrderSummary struct {
	TotalOrders   int64
	TotalRevenue  decimal.Decimal
	TotalDiscount decimal.Decimal
}

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	// Create inserts the order together with its lines.
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id uint) (*models.Order, error)
	Count(ctx context.Context) (int64, error)
	Summary(ctx context.Context) (OrderSummary, error)
}
