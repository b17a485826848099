package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fulfillment/internal/models"
	"fulfillment/internal/repositories"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// CheckoutConfig tunes the checkout engine.
type CheckoutConfig struct {
	// DiscountEveryNOrders mints a code whenever the committed order count is
	// a multiple of it. Zero disables minting.
	DiscountEveryNOrders int
	MaxAttempts          int
	Timeout              time.Duration
	RetryBackoff         time.Duration
}

// CheckoutRequest is the input of a checkout. DiscountCode is optional.
type CheckoutRequest struct {
	UserID       string
	DiscountCode string
}

// CheckoutResult describes a committed order.
type CheckoutResult struct {
	OrderID         uint
	FinalAmount     decimal.Decimal
	DiscountAmount  decimal.Decimal
	NewDiscountCode *string
	Order           *models.Order
}

// DiscountMinter creates system generated discount codes.
type DiscountMinter interface {
	Mint(ctx context.Context) (*models.DiscountCode, error)
}

// CheckoutService turns a user's cart into an order.
type CheckoutService struct {
	tx        repositories.TransactionManager
	orders    repositories.OrderRepository
	minter    DiscountMinter
	publisher EventPublisher
	cfg       CheckoutConfig
}

// NewCheckoutService creates a CheckoutService. publisher may be nil.
func NewCheckoutService(
	tx repositories.TransactionManager,
	orders repositories.OrderRepository,
	minter DiscountMinter,
	publisher EventPublisher,
	cfg CheckoutConfig,
) *CheckoutService {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 20 * time.Millisecond
	}
	return &CheckoutService{
		tx:        tx,
		orders:    orders,
		minter:    minter,
		publisher: publisher,
		cfg:       cfg,
	}
}

// Checkout places an order for everything in the user's cart.
//
// Reading the cart, consuming the discount code, writing the order and its
// lines and clearing the cart happen in one transaction. Conflicts with
// concurrent checkouts are retried up to MaxAttempts times. Minting the
// every-Nth-order code runs after commit and never fails the checkout.
func (s *CheckoutService) Checkout(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user_id is required", ErrValidation)
	}
	code := strings.TrimSpace(req.DiscountCode)

	// The caller going away must not cut the unit short; only the timeout aborts it.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.Timeout)
	defer cancel()

	order, err := s.placeOrderWithRetry(ctx, userID, code)
	if err != nil {
		return nil, err
	}

	result := &CheckoutResult{
		OrderID:        order.ID,
		FinalAmount:    order.TotalAmount,
		DiscountAmount: order.DiscountAmount,
		Order:          order,
	}

	if minted := s.mintIfDue(ctx, order); minted != nil {
		result.NewDiscountCode = &minted.Code
		publishEvent(ctx, s.publisher, EventDiscountMinted, DiscountMintedEvent{
			Code:               minted.Code,
			DiscountPercentage: minted.DiscountPercentage,
			TriggerOrderID:     order.ID,
		})
	}

	publishEvent(ctx, s.publisher, EventOrderPlaced, OrderPlacedEvent{
		OrderID:         order.ID,
		UserID:          order.UserID,
		TotalAmount:     order.TotalAmount,
		DiscountAmount:  order.DiscountAmount,
		DiscountCode:    order.DiscountCode,
		NewDiscountCode: result.NewDiscountCode,
		PlacedAt:        order.CreatedAt,
	})

	log.Info().
		Uint("order_id", order.ID).
		Str("user_id", userID).
		Str("final_amount", order.TotalAmount.StringFixed(2)).
		Str("discount_amount", order.DiscountAmount.StringFixed(2)).
		Msg("order placed")

	return result, nil
}

func (s *CheckoutService) placeOrderWithRetry(ctx context.Context, userID, code string) (*models.Order, error) {
	var lastErr error
	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		order, err := s.placeOrder(ctx, userID, code)
		if err == nil {
			return order, nil
		}
		if !errors.Is(err, ErrConflict) {
			return nil, err
		}
		lastErr = err
		log.Warn().Err(err).Str("user_id", userID).Int("attempt", attempt).Msg("checkout conflict")

		if attempt == s.cfg.MaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("checkout for user %s aborted: %w", userID, ctx.Err())
		case <-time.After(time.Duration(attempt) * s.cfg.RetryBackoff):
		}
	}
	return nil, fmt.Errorf("checkout for user %s gave up after %d attempts: %w", userID, s.cfg.MaxAttempts, lastErr)
}

// placeOrder runs one attempt of the checkout transaction.
func (s *CheckoutService) placeOrder(ctx context.Context, userID, code string) (*models.Order, error) {
	var placed *models.Order

	err := s.tx.WithinTx(ctx, func(r repositories.TxRepos) error {
		lines, err := r.Carts().ListForCheckout(ctx, userID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		// Prices are read once here and frozen into the order lines.
		subtotal := decimal.Zero
		orderLines := make([]models.OrderLine, 0, len(lines))
		lineIDs := make([]uint, 0, len(lines))
		for _, line := range lines {
			if line.Item.ItemID == "" || line.Quantity < 1 {
				return fmt.Errorf("%w: cart line %d of user %s is unusable", ErrInvariantViolation, line.ID, userID)
			}
			orderLines = append(orderLines, models.OrderLine{
				ItemID:    line.ItemID,
				Quantity:  line.Quantity,
				UnitPrice: line.Item.Price,
			})
			lineIDs = append(lineIDs, line.ID)
			subtotal = subtotal.Add(line.Item.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		}

		if subtotal.GreaterThanOrEqual(maxAmount) {
			return fmt.Errorf("%w: order total %s exceeds the supported maximum", ErrValidation, subtotal)
		}

		discount := decimal.Zero
		var applied *string
		if code != "" {
			dc, err := r.Discounts().FindValid(ctx, code)
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrInvalidDiscountCode
			}
			if err != nil {
				return err
			}
			consumed, err := r.Discounts().Consume(ctx, dc.Code)
			if err != nil {
				return err
			}
			if !consumed {
				return ErrInvalidDiscountCode
			}
			discount = DiscountAmount(subtotal, dc.DiscountPercentage)
			applied = &dc.Code
		}

		total := subtotal.Sub(discount)
		if total.IsNegative() {
			return fmt.Errorf("%w: negative total %s for user %s", ErrInvariantViolation, total, userID)
		}

		order := &models.Order{
			UserID:         userID,
			Lines:          orderLines,
			TotalAmount:    total,
			DiscountAmount: discount,
			DiscountCode:   applied,
		}
		if err := r.Orders().Create(ctx, order); err != nil {
			if applied != nil && errors.Is(err, repositories.ErrDuplicate) {
				return ErrInvalidDiscountCode
			}
			return err
		}

		deleted, err := r.Carts().DeleteLines(ctx, userID, lineIDs)
		if err != nil {
			return err
		}
		if deleted != int64(len(lineIDs)) {
			return fmt.Errorf("cart of user %s changed during checkout: %w", userID, ErrConflict)
		}

		placed = order
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInvariantViolation) {
			log.Error().Err(err).Str("user_id", userID).Msg("checkout aborted")
		}
		return nil, err
	}
	return placed, nil
}

// mintIfDue counts committed orders and mints a code on every Nth one.
// Two orders committing at the threshold may both see the same count; that
// skew only affects the bonus code.
func (s *CheckoutService) mintIfDue(ctx context.Context, order *models.Order) *models.DiscountCode {
	every := s.cfg.DiscountEveryNOrders
	if every <= 0 || s.minter == nil {
		return nil
	}

	count, err := s.orders.Count(ctx)
	if err != nil {
		log.Error().Err(err).Uint("order_id", order.ID).Msg("failed to count orders for discount minting")
		return nil
	}
	if count%int64(every) != 0 {
		return nil
	}

	dc, err := s.minter.Mint(ctx)
	if err != nil {
		log.Error().Err(err).Uint("order_id", order.ID).Msg("failed to mint discount code")
		return nil
	}
	log.Info().Uint("order_id", order.ID).Int64("order_count", count).Str("code", dc.Code).Msg("minted discount code")
	return dc
}
