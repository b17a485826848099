package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fulfillment/internal/models"
	"fulfillment/internal/repositories"

	"github.com/shopspring/decimal"
)

// CartView is a user's cart priced at current catalog prices.
type CartView struct {
	Lines       []models.CartLine
	TotalAmount decimal.Decimal
}

// CartService handles cart mutations and reads. Checkout lives in CheckoutService.
type CartService struct {
	carts repositories.CartRepository
	items repositories.ItemRepository
}

// NewCartService creates a new CartService.
func NewCartService(carts repositories.CartRepository, items repositories.ItemRepository) *CartService {
	return &CartService{
		carts: carts,
		items: items,
	}
}

// AddToCart adds quantity units of an item to the user's cart, merging with an
// existing line for the same item.
func (s *CartService) AddToCart(ctx context.Context, userID, itemID string, quantity int) (*models.CartLine, error) {
	userID = strings.TrimSpace(userID)
	itemID = strings.TrimSpace(itemID)
	if userID == "" || itemID == "" {
		return nil, fmt.Errorf("%w: user_id and item_id are required", ErrValidation)
	}
	if quantity < 1 || quantity > maxLineQuantity {
		return nil, fmt.Errorf("%w: quantity must be between 1 and %d", ErrValidation, maxLineQuantity)
	}

	if _, err := s.items.GetByID(ctx, itemID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("item %s: %w", itemID, ErrNotFound)
		}
		return nil, err
	}

	return s.carts.AddQuantity(ctx, userID, itemID, quantity)
}

// ViewCart returns the user's lines and their total. An empty cart is not an error.
func (s *CartService) ViewCart(ctx context.Context, userID string) (*CartView, error) {
	lines, err := s.carts.ListByUser(ctx, strings.TrimSpace(userID))
	if err != nil {
		return nil, err
	}
	if lines == nil {
		lines = []models.CartLine{}
	}
	return &CartView{
		Lines:       lines,
		TotalAmount: cartTotal(lines),
	}, nil
}

func cartTotal(lines []models.CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Item.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}
