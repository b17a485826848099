package repositories

import (
	"context"
	"fmt"

	"fulfillment/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{
		db: db,
	}
}

func (r *GORMCartRepository) ListByUser(ctx context.Context, userID string) ([]models.CartLine, error) {
	return r.list(r.db.WithContext(ctx), userID)
}

// ListForCheckout locks the user's cart rows. SQLite has no row locks and
// relies on its single writer instead; the sqlite dialector drops the clause.
func (r *GORMCartRepository) ListForCheckout(ctx context.Context, userID string) ([]models.CartLine, error) {
	return r.list(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), userID)
}

func (r *GORMCartRepository) list(db *gorm.DB, userID string) ([]models.CartLine, error) {
	var lines []models.CartLine
	err := db.
		Preload("Item").
		Where("user_id = ?", userID).
		Order("id asc").
		Find(&lines).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list cart for user %s: %w", userID, wrapError(err))
	}
	return lines, nil
}

func (r *GORMCartRepository) AddQuantity(ctx context.Context, userID, itemID string, quantity int) (*models.CartLine, error) {
	db := r.db.WithContext(ctx)
	line := models.CartLine{UserID: userID, ItemID: itemID, Quantity: quantity}

	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "item_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity": gorm.Expr("cart_lines.quantity + excluded.quantity"),
		}),
	}).Omit("Item").Create(&line).Error
	if err != nil {
		return nil, fmt.Errorf("failed to add item %s to cart: %w", itemID, wrapError(err))
	}

	// The upsert does not report the merged row back on every dialect.
	var saved models.CartLine
	if err := db.Preload("Item").
		Where("user_id = ? AND item_id = ?", userID, itemID).
		First(&saved).Error; err != nil {
		return nil, fmt.Errorf("failed to reload cart line: %w", wrapError(err))
	}
	return &saved, nil
}

func (r *GORMCartRepository) DeleteLines(ctx context.Context, userID string, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND id IN ?", userID, ids).
		Delete(&models.CartLine{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to clear cart for user %s: %w", userID, wrapError(res.Error))
	}
	return res.RowsAffected, nil
}
