package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fulfillment/internal/models"
	"fulfillment/internal/repositories"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	discountCodeLength   = 8
	codeGenerateAttempts = 3
)

var hundred = decimal.NewFromInt(100)

// DiscountService is the registry of single-use discount codes.
type DiscountService struct {
	repo             repositories.DiscountRepository
	mintedPercentage float64
	generateCode     func() string
}

// NewDiscountService creates a DiscountService. mintedPercentage is the
// percentage given to codes minted by checkout.
func NewDiscountService(repo repositories.DiscountRepository, mintedPercentage float64) *DiscountService {
	return &DiscountService{
		repo:             repo,
		mintedPercentage: mintedPercentage,
		generateCode:     newDiscountCode,
	}
}

// Create generates a new valid code for the given percentage (0-100).
func (s *DiscountService) Create(ctx context.Context, percentage float64) (*models.DiscountCode, error) {
	if percentage < 0 || percentage > 100 {
		return nil, fmt.Errorf("%w: discount_percentage must be between 0 and 100", ErrValidation)
	}
	return s.create(ctx, percentage)
}

// Mint creates a system code with the configured percentage.
func (s *DiscountService) Mint(ctx context.Context) (*models.DiscountCode, error) {
	return s.create(ctx, s.mintedPercentage)
}

func (s *DiscountService) create(ctx context.Context, percentage float64) (*models.DiscountCode, error) {
	var lastErr error
	for attempt := 0; attempt < codeGenerateAttempts; attempt++ {
		dc := &models.DiscountCode{
			Code:               s.generateCode(),
			DiscountPercentage: percentage,
			IsValid:            true,
		}
		err := s.repo.Create(ctx, dc)
		if err == nil {
			log.Info().Str("code", dc.Code).Float64("percentage", percentage).Msg("discount code created")
			return dc, nil
		}
		if !errors.Is(err, repositories.ErrDuplicate) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("failed to generate a unique discount code: %w", lastErr)
}

// FindValid returns the code if it exists and is still valid. It always reads
// the store; validity is never cached.
func (s *DiscountService) FindValid(ctx context.Context, code string) (*models.DiscountCode, error) {
	dc, err := s.repo.FindValid(ctx, strings.TrimSpace(code))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidDiscountCode
		}
		return nil, err
	}
	return dc, nil
}

// Invalidate marks a code as used. Invalidating an already invalid code is a no-op.
func (s *DiscountService) Invalidate(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)
	if _, err := s.repo.GetByCode(ctx, code); err != nil {
		return err
	}
	if _, err := s.repo.Consume(ctx, code); err != nil {
		return err
	}
	return nil
}

// List returns every code with its validity.
func (s *DiscountService) List(ctx context.Context) ([]models.DiscountCode, error) {
	return s.repo.List(ctx)
}

// DiscountAmount is total * percentage / 100 rounded to cents.
func DiscountAmount(total decimal.Decimal, percentage float64) decimal.Decimal {
	return total.Mul(decimal.NewFromFloat(percentage)).Div(hundred).Round(2)
}

func newDiscountCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:discountCodeLength])
}
