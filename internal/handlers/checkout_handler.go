package handlers

import (
	"fulfillment/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CheckoutRequest is the body of POST /cart/checkout. Any discount code is
// accepted here; codes that do not exist are rejected by checkout.
type CheckoutRequest struct {
	UserID       string `json:"user_id" validate:"required,max=50"`
	DiscountCode string `json:"discount_code"`
}

// CheckoutHandler handles checkout requests.
type CheckoutHandler struct {
	service  *services.CheckoutService
	validate *validator.Validate
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(service *services.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the checkout route. The middlewares run before the
// handler, which is how idempotency and rate limiting are attached.
func (h *CheckoutHandler) RegisterRoutes(router fiber.Router, middlewares ...fiber.Handler) {
	chain := make([]fiber.Handler, 0, len(middlewares)+1)
	chain = append(chain, middlewares...)
	chain = append(chain, h.HandleCheckout)
	router.Post("/cart/checkout", chain...)
}

// HandleCheckout converts the user's cart into an order.
func (h *CheckoutHandler) HandleCheckout(c *fiber.Ctx) error {
	var req CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidation(c, err, "User ID is required.")
	}

	result, err := h.service.Checkout(c.UserContext(), services.CheckoutRequest{
		UserID:       req.UserID,
		DiscountCode: req.DiscountCode,
	})
	if err != nil {
		return respondError(c, err, "Could not place order")
	}

	return c.JSON(fiber.Map{
		"message":           "Order placed successfully.",
		"order_id":          result.OrderID,
		"final_amount":      result.FinalAmount,
		"discount_amount":   result.DiscountAmount,
		"new_discount_code": result.NewDiscountCode,
	})
}
