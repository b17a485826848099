package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderLine represents a single item within an order.
type OrderLine struct {
	ID        uint            `json:"-" gorm:"primaryKey"`
	OrderID   uint            `json:"-" gorm:"not null;index"`
	ItemID    string          `json:"item_id" gorm:"type:varchar(50);not null"`
	Quantity  int             `json:"quantity" gorm:"not null"`
	UnitPrice decimal.Decimal `json:"unit_price" gorm:"type:decimal(12,2);not null"` // Price at the time of order
}

// Order represents a placed order. Orders are written once by checkout and never updated.
type Order struct {
	ID             uint            `json:"id" gorm:"primaryKey"`
	UserID         string          `json:"user_id" gorm:"type:varchar(50);not null;index"`
	Lines          []OrderLine     `json:"items" gorm:"foreignKey:OrderID"`
	TotalAmount    decimal.Decimal `json:"total_amount" gorm:"type:decimal(12,2);not null"`
	DiscountAmount decimal.Decimal `json:"discount_amount" gorm:"type:decimal(12,2);not null"`
	DiscountCode   *string         `json:"discount_code" gorm:"type:varchar(20);uniqueIndex"`
	CreatedAt      time.Time       `json:"created_at"`
}
