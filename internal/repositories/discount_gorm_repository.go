package repositories

import (
	"context"
	"fmt"

	"fulfillment/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMDiscountRepository is a GORM implementation of DiscountRepository.
type GORMDiscountRepository struct {
	db *gorm.DB
}

// NewGORMDiscountRepository creates a new instance of GORMDiscountRepository.
func NewGORMDiscountRepository(db *gorm.DB) *GORMDiscountRepository {
	return &GORMDiscountRepository{
		db: db,
	}
}

func (r *GORMDiscountRepository) Create(ctx context.Context, code *models.DiscountCode) error {
	if err := r.db.WithContext(ctx).Create(code).Error; err != nil {
		return fmt.Errorf("failed to create discount code: %w", wrapError(err))
	}
	return nil
}

func (r *GORMDiscountRepository) GetByCode(ctx context.Context, code string) (*models.DiscountCode, error) {
	var dc models.DiscountCode
	if err := r.db.WithContext(ctx).First(&dc, "code = ?", code).Error; err != nil {
		return nil, fmt.Errorf("failed to get discount code %s: %w", code, wrapError(err))
	}
	return &dc, nil
}

func (r *GORMDiscountRepository) FindValid(ctx context.Context, code string) (*models.DiscountCode, error) {
	var dc models.DiscountCode
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("code = ? AND is_valid = ?", code, true).
		First(&dc).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find valid discount code %s: %w", code, wrapError(err))
	}
	return &dc, nil
}

// Consume is a conditional update, never a blind write: only one caller can
// observe is_valid = true and flip it.
func (r *GORMDiscountRepository) Consume(ctx context.Context, code string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.DiscountCode{}).
		Where("code = ? AND is_valid = ?", code, true).
		Update("is_valid", false)
	if res.Error != nil {
		return false, fmt.Errorf("failed to consume discount code %s: %w", code, wrapError(res.Error))
	}
	return res.RowsAffected == 1, nil
}

func (r *GORMDiscountRepository) List(ctx context.Context) ([]models.DiscountCode, error) {
	var codes []models.DiscountCode
	if err := r.db.WithContext(ctx).Order("created_at asc, code asc").Find(&codes).Error; err != nil {
		return nil, fmt.Errorf("failed to list discount codes: %w", wrapError(err))
	}
	return codes, nil
}
