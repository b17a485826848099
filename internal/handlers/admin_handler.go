package handlers

import (
	"fmt"

	"fulfillment/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// GenerateDiscountRequest is the body of POST /admin/discount.
type GenerateDiscountRequest struct {
	DiscountPercentage *float64 `json:"discount_percentage" validate:"required,gte=0,lte=100"`
}

// AdminHandler serves the back-office endpoints.
type AdminHandler struct {
	discounts *services.DiscountService
	reports   *services.ReportService
	validate  *validator.Validate
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(discounts *services.DiscountService, reports *services.ReportService) *AdminHandler {
	return &AdminHandler{
		discounts: discounts,
		reports:   reports,
		validate:  validator.New(),
	}
}

// RegisterRoutes registers the admin routes behind guard.
func (h *AdminHandler) RegisterRoutes(router fiber.Router, guard fiber.Handler) {
	adminRoutes := router.Group("/admin", guard)
	adminRoutes.Post("/discount", h.HandleGenerateDiscount)
	adminRoutes.Post("/discount/:code/invalidate", h.HandleInvalidateDiscount)
	adminRoutes.Get("/stats", h.HandleStats)
}

// HandleGenerateDiscount creates a new valid discount code.
func (h *AdminHandler) HandleGenerateDiscount(c *fiber.Ctx) error {
	var req GenerateDiscountRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidation(c, err, "Discount percentage must be between 0 and 100.")
	}

	code, err := h.discounts.Create(c.UserContext(), *req.DiscountPercentage)
	if err != nil {
		return respondError(c, err, "Could not generate discount code")
	}

	return c.JSON(fiber.Map{
		"message": "Discount code generated.",
		"code":    code.Code,
	})
}

// HandleInvalidateDiscount retires a discount code. Retiring an already
// invalid code succeeds.
func (h *AdminHandler) HandleInvalidateDiscount(c *fiber.Ctx) error {
	code := c.Params("code")
	if err := h.discounts.Invalidate(c.UserContext(), code); err != nil {
		return respondError(c, err, "Could not invalidate discount code")
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Discount code '%s' invalidated.", code),
	})
}

// HandleStats returns the purchase summary.
func (h *AdminHandler) HandleStats(c *fiber.Ctx) error {
	summary, err := h.reports.Summary(c.UserContext())
	if err != nil {
		return respondError(c, err, "Could not compute purchase summary")
	}
	return c.JSON(summary)
}
