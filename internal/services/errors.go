package services

import (
	"errors"

	"fulfillment/internal/repositories"

	"github.com/shopspring/decimal"
)

// Errors returned by the services. Handlers map them to HTTP statuses with errors.Is.
var (
	ErrValidation          = errors.New("validation failed")
	ErrNotFound            = repositories.ErrNotFound
	ErrDuplicateItem       = errors.New("item with this ID already exists")
	ErrEmptyCart           = errors.New("cart is empty")
	ErrInvalidDiscountCode = errors.New("invalid or expired discount code")
	// ErrConflict means a concurrent checkout won the race and retries were exhausted.
	ErrConflict = repositories.ErrConflict
)

// Amounts are stored as decimal(12,2), so every price and order total must
// stay below 10^10.
var maxAmount = decimal.New(1, 10)

// maxLineQuantity caps the quantity of a single add to cart.
const maxLineQuantity = 10000

// ErrInvariantViolation marks state that checkout should never be able to
// produce. It is logged and surfaced as an internal error.
var ErrInvariantViolation = errors.New("invariant violation")
