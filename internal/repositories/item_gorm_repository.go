package repositories

import (
	"context"
	"fmt"

	"fulfillment/internal/models"

	"gorm.io/gorm"
)

// GORMItemRepository is a GORM implementation of ItemRepository.
type GORMItemRepository struct {
	db *gorm.DB
}

// NewGORMItemRepository creates a new instance of GORMItemRepository.
func NewGORMItemRepository(db *gorm.DB) *GORMItemRepository {
	return &GORMItemRepository{
		db: db,
	}
}

// GetAll retrieves all items ordered by creation time.
func (r *GORMItemRepository) GetAll(ctx context.Context) ([]models.Item, error) {
	var items []models.Item
	if err := r.db.WithContext(ctx).Order("created_at asc, item_id asc").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to get all items: %w", wrapError(err))
	}
	return items, nil
}

// GetByID retrieves a single item by its ID.
func (r *GORMItemRepository) GetByID(ctx context.Context, id string) (*models.Item, error) {
	var item models.Item
	if err := r.db.WithContext(ctx).First(&item, "item_id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to get item %s: %w", id, wrapError(err))
	}
	return &item, nil
}

// Create inserts a new item. A taken item_id yields ErrDuplicate.
func (r *GORMItemRepository) Create(ctx context.Context, item *models.Item) error {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("failed to create item: %w", wrapError(err))
	}
	return nil
}

// Update replaces the mutable fields of an existing item.
func (r *GORMItemRepository) Update(ctx context.Context, item *models.Item) error {
	res := r.db.WithContext(ctx).
		Model(&models.Item{}).
		Where("item_id = ?", item.ItemID).
		Updates(map[string]interface{}{
			"name":        item.Name,
			"description": item.Description,
			"price":       item.Price,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update item: %w", wrapError(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("item %s not found for update: %w", item.ItemID, ErrNotFound)
	}
	return nil
}
