package repositories

import (
	"context"
	"fmt"

	"fulfillment/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

func (r *GORMOrderRepository) Create(ctx context.Context, order *models.Order) error {
	// Lines are inserted by GORM's has-many association save on the same connection.
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", wrapError(err))
	}
	return nil
}

func (r *GORMOrderRepository) GetByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get order %d: %w", id, wrapError(err))
	}
	return &order, nil
}

func (r *GORMOrderRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Order{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", wrapError(err))
	}
	return n, nil
}

func (r *GORMOrderRepository) Summary(ctx context.Context) (OrderSummary, error) {
	var row struct {
		TotalOrders   int64
		TotalRevenue  decimal.NullDecimal
		TotalDiscount decimal.NullDecimal
	}
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("COUNT(*) AS total_orders, SUM(total_amount) AS total_revenue, SUM(discount_amount) AS total_discount").
		Scan(&row).Error
	if err != nil {
		return OrderSummary{}, fmt.Errorf("failed to summarize orders: %w", wrapError(err))
	}

	summary := OrderSummary{TotalOrders: row.TotalOrders}
	if row.TotalRevenue.Valid {
		summary.TotalRevenue = row.TotalRevenue.Decimal.Round(2)
	}
	if row.TotalDiscount.Valid {
		summary.TotalDiscount = row.TotalDiscount.Decimal.Round(2)
	}
	return summary, nil
}
