package middleware

import (
	"errors"
	"strings"

	"github.com/dgrijalva/jwt-go"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Locals keys set for requests that passed OperatorAuth.
const (
	LocalOperatorID = "operator_id"
	LocalUsername   = "username"
)

var (
	errMissingAuthorization = errors.New("Authorization header is required")
	errMalformedBearer      = errors.New("Authorization header format must be 'Bearer <token>'")
)

// TokenValidator verifies a signed operator token and returns its claims.
type TokenValidator interface {
	ValidateToken(token string) (jwt.MapClaims, error)
}

// OperatorAuth admits only requests carrying a valid operator bearer token.
// The token must name the operator it was issued to.
func OperatorAuth(tokens TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw, err := bearerToken(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return unauthorized(c, err.Error())
		}

		claims, err := tokens.ValidateToken(raw)
		if err != nil {
			log.Debug().Err(err).Str("path", c.Path()).Msg("operator token rejected")
			return unauthorized(c, "Invalid or expired token")
		}

		operatorID, _ := claims[LocalOperatorID].(string)
		if operatorID == "" {
			log.Debug().Str("path", c.Path()).Msg("operator token has no operator_id")
			return unauthorized(c, "Invalid or expired token")
		}
		username, _ := claims[LocalUsername].(string)

		c.Locals(LocalOperatorID, operatorID)
		c.Locals(LocalUsername, username)
		return c.Next()
	}
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" value.
// The scheme is matched case-insensitively.
func bearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errMissingAuthorization
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", errMalformedBearer
	}
	return strings.TrimSpace(token), nil
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": message})
}
