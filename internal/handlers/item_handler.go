package handlers

import (
	"fmt"

	"fulfillment/internal/models"
	"fulfillment/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// ItemRequest is the body of item create and replace requests.
type ItemRequest struct {
	ItemID      string   `json:"item_id" validate:"required,max=50"`
	Name        string   `json:"name" validate:"required,max=100"`
	Description string   `json:"description" validate:"max=200"`
	Price       *float64 `json:"price" validate:"required,gte=0"`
}

func (r ItemRequest) toModel() *models.Item {
	return &models.Item{
		ItemID:      r.ItemID,
		Name:        r.Name,
		Description: r.Description,
		Price:       decimal.NewFromFloat(*r.Price),
	}
}

// ItemHandler handles HTTP requests for the catalog.
type ItemHandler struct {
	service  *services.ItemService
	validate *validator.Validate
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(service *services.ItemService) *ItemHandler {
	return &ItemHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the catalog routes. Writes go through adminGuard.
func (h *ItemHandler) RegisterRoutes(router fiber.Router, adminGuard fiber.Handler) {
	itemRoutes := router.Group("/items")
	itemRoutes.Get("/", h.HandleListItems)
	itemRoutes.Post("/", adminGuard, h.HandleCreateItem)
	itemRoutes.Put("/:item_id", adminGuard, h.HandleUpdateItem)
}

// HandleListItems returns the whole catalog.
func (h *ItemHandler) HandleListItems(c *fiber.Ctx) error {
	items, err := h.service.ListItems(c.UserContext())
	if err != nil {
		return respondError(c, err, "Could not retrieve items")
	}
	if items == nil {
		items = []models.Item{}
	}
	return c.JSON(items)
}

// HandleCreateItem adds an item to the catalog.
func (h *ItemHandler) HandleCreateItem(c *fiber.Ctx) error {
	var req ItemRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidation(c, err, "Item ID, Name, and Price are required.")
	}

	item := req.toModel()
	if err := h.service.CreateItem(c.UserContext(), item); err != nil {
		return respondError(c, err, "Could not create item")
	}

	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Item '%s' added successfully.", item.Name),
		"item":    item,
	})
}

// HandleUpdateItem replaces an existing item. The path ID wins over the body.
func (h *ItemHandler) HandleUpdateItem(c *fiber.Ctx) error {
	var req ItemRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c, err)
	}
	req.ItemID = c.Params("item_id")
	if err := h.validate.Struct(req); err != nil {
		return respondValidation(c, err, "Name and Price are required.")
	}

	item := req.toModel()
	if err := h.service.UpdateItem(c.UserContext(), item); err != nil {
		return respondError(c, err, "Could not update item")
	}

	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Item '%s' updated successfully.", item.ItemID),
		"item":    item,
	})
}
