package handlers

import (
	"errors"
	"fmt"

	"fulfillment/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// respondError maps service errors onto HTTP responses. Anything unexpected
// is logged and reported as a 500 with the given fallback message.
func respondError(c *fiber.Ctx, err error, fallback string) error {
	status := fiber.StatusInternalServerError
	message := fallback

	switch {
	case errors.Is(err, services.ErrValidation):
		status, message = fiber.StatusBadRequest, "Validation failed"
	case errors.Is(err, services.ErrDuplicateItem):
		status, message = fiber.StatusBadRequest, "Item with this ID already exists."
	case errors.Is(err, services.ErrEmptyCart):
		status, message = fiber.StatusBadRequest, "Cart is empty."
	case errors.Is(err, services.ErrInvalidDiscountCode):
		status, message = fiber.StatusBadRequest, "Invalid or expired discount code."
	case errors.Is(err, services.ErrNotFound):
		status, message = fiber.StatusNotFound, "Not found"
	case errors.Is(err, services.ErrConflict):
		status, message = fiber.StatusConflict, "The request conflicted with a concurrent update, please retry."
	default:
		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg(fallback)
	}

	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}

// respondValidation reports struct validation failures per field.
func respondValidation(c *fiber.Ctx, err error, message string) error {
	errorMessages := make(map[string]string)
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": message,
		"errors":  errorMessages,
	})
}

// respondBadBody reports a request body that could not be parsed.
func respondBadBody(c *fiber.Ctx, err error) error {
	log.Debug().Err(err).Str("path", c.Path()).Msg("invalid request body")
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid request body",
		"error":   err.Error(),
	})
}

// NoGuard lets every request through. It stands in for the operator guard
// when admin authentication is disabled.
func NoGuard(c *fiber.Ctx) error {
	return c.Next()
}
