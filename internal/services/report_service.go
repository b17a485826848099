package services

import (
	"context"

	"fulfillment/internal/models"
	"fulfillment/internal/repositories"

	"github.com/shopspring/decimal"
)

// PurchaseSummary aggregates committed orders and lists every discount code.
type PurchaseSummary struct {
	TotalOrders   int64                 `json:"total_orders"`
	TotalRevenue  decimal.Decimal       `json:"total_revenue"`
	TotalDiscount decimal.Decimal       `json:"total_discount"`
	DiscountCodes []models.DiscountCode `json:"discount_codes"`
}

// ReportService reads committed orders for reporting. It takes no locks and
// may trail in-flight checkouts.
type ReportService struct {
	orders    repositories.OrderRepository
	discounts repositories.DiscountRepository
}

// NewReportService creates a new ReportService.
func NewReportService(orders repositories.OrderRepository, discounts repositories.DiscountRepository) *ReportService {
	return &ReportService{
		orders:    orders,
		discounts: discounts,
	}
}

// Summary returns order totals and the discount code list.
func (s *ReportService) Summary(ctx context.Context) (*PurchaseSummary, error) {
	agg, err := s.orders.Summary(ctx)
	if err != nil {
		return nil, err
	}
	codes, err := s.discounts.List(ctx)
	if err != nil {
		return nil, err
	}
	if codes == nil {
		codes = []models.DiscountCode{}
	}
	return &PurchaseSummary{
		TotalOrders:   agg.TotalOrders,
		TotalRevenue:  agg.TotalRevenue,
		TotalDiscount: agg.TotalDiscount,
		DiscountCodes: codes,
	}, nil
}
