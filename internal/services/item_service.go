package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fulfillment/internal/models"
	"fulfillment/internal/repositories"
)

// ItemService handles business logic related to the catalog.
type ItemService struct {
	repo repositories.ItemRepository
}

// NewItemService creates a new ItemService.
func NewItemService(repo repositories.ItemRepository) *ItemService {
	return &ItemService{
		repo: repo,
	}
}

// ListItems retrieves all items.
func (s *ItemService) ListItems(ctx context.Context) ([]models.Item, error) {
	return s.repo.GetAll(ctx)
}

// GetItem retrieves a single item by its ID.
func (s *ItemService) GetItem(ctx context.Context, id string) (*models.Item, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateItem adds a new item to the catalog. Item IDs are assigned by the caller
// and may not be reused.
func (s *ItemService) CreateItem(ctx context.Context, item *models.Item) error {
	if err := validateItem(item); err != nil {
		return err
	}

	if _, err := s.repo.GetByID(ctx, item.ItemID); err == nil {
		return ErrDuplicateItem
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return err
	}

	if err := s.repo.Create(ctx, item); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return ErrDuplicateItem
		}
		return err
	}
	return nil
}

// UpdateItem replaces an item's name, description and price. Existing orders
// keep the prices they were placed with.
func (s *ItemService) UpdateItem(ctx context.Context, item *models.Item) error {
	if err := validateItem(item); err != nil {
		return err
	}
	return s.repo.Update(ctx, item)
}

func validateItem(item *models.Item) error {
	item.ItemID = strings.TrimSpace(item.ItemID)
	item.Name = strings.TrimSpace(item.Name)
	if item.ItemID == "" || item.Name == "" {
		return fmt.Errorf("%w: item_id and name are required", ErrValidation)
	}
	if item.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	item.Price = item.Price.Round(2)
	if item.Price.GreaterThanOrEqual(maxAmount) {
		return fmt.Errorf("%w: price is too large", ErrValidation)
	}
	return nil
}
