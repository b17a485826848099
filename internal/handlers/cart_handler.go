package handlers

import (
	"errors"
	"fmt"

	"fulfillment/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AddToCartRequest is the body of POST /cart/add. Quantity defaults to 1.
type AddToCartRequest struct {
	UserID   string `json:"user_id" validate:"required,max=50"`
	ItemID   string `json:"item_id" validate:"required,max=50"`
	Quantity *int   `json:"quantity" validate:"omitempty,gte=1,lte=10000"`
}

// CartHandler handles HTTP requests for carts.
type CartHandler struct {
	service  *services.CartService
	validate *validator.Validate
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService) *CartHandler {
	return &CartHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the cart routes with the Fiber app.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Post("/add", h.HandleAddToCart)
	cartRoutes.Get("/:user_id", h.HandleViewCart)
}

// HandleAddToCart adds an item to a user's cart.
func (h *CartHandler) HandleAddToCart(c *fiber.Ctx) error {
	var req AddToCartRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidation(c, err, "User ID and Item ID are required.")
	}

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	line, err := h.service.AddToCart(c.UserContext(), req.UserID, req.ItemID, quantity)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Item does not exist.",
			})
		}
		return respondError(c, err, "Could not add item to cart")
	}

	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Added %d of '%s' to the cart.", quantity, line.Item.Name),
		"cart":    line,
	})
}

// HandleViewCart returns a user's cart with its current total.
func (h *CartHandler) HandleViewCart(c *fiber.Ctx) error {
	view, err := h.service.ViewCart(c.UserContext(), c.Params("user_id"))
	if err != nil {
		return respondError(c, err, "Could not retrieve cart")
	}

	message := "Your cart is empty."
	if len(view.Lines) > 0 {
		message = fmt.Sprintf("Your cart has %d items.", len(view.Lines))
	}
	return c.JSON(fiber.Map{
		"message":      message,
		"cart":         view.Lines,
		"total_amount": view.TotalAmount,
	})
}
