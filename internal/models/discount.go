package models

import "time"

// DiscountCode is a single-use percentage discount.
type DiscountCode struct {
	Code               string    `json:"code" gorm:"primaryKey;type:varchar(20)"`
	DiscountPercentage float64   `json:"discount_percentage" gorm:"not null"`
	IsValid            bool      `json:"is_valid" gorm:"not null;default:true;index"`
	CreatedAt          time.Time `json:"-"`
}
