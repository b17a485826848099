package models

// CartLine is the quantity of one item a user intends to buy.
type CartLine struct {
	ID       uint   `json:"-" gorm:"primaryKey"`
	UserID   string `json:"user_id" gorm:"type:varchar(50);not null;uniqueIndex:idx_cart_user_item"`
	ItemID   string `json:"-" gorm:"type:varchar(50);not null;uniqueIndex:idx_cart_user_item"`
	Item     Item   `json:"item" gorm:"foreignKey:ItemID;references:ItemID"`
	Quantity int    `json:"quantity" gorm:"not null"`
}
