package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"fulfillment/pkg/idempotency"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// IdempotencyHeader carries the client supplied key.
const IdempotencyHeader = "Idempotency-Key"

const maxIdempotencyKeyLength = 255

// Idempotency replays the stored response for a repeated Idempotency-Key.
// Requests without the header pass through untouched. A key is bound to the
// body of the request that first used it; reusing it with another body is
// rejected with 422. Server errors release the key so the client can retry.
func Idempotency(store idempotency.Store, scope string, ttl time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := strings.TrimSpace(c.Get(IdempotencyHeader))
		if key == "" {
			return c.Next()
		}
		if len(key) > maxIdempotencyKeyLength {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Idempotency-Key is too long",
			})
		}

		ctx := c.UserContext()
		scoped := scope + ":" + key
		fingerprint := requestFingerprint(c)

		reserved, err := store.Reserve(ctx, scoped, fingerprint, ttl)
		if err != nil {
			// The store being down must not block checkouts.
			log.Warn().Err(err).Str("key", key).Msg("idempotency store unavailable")
			return c.Next()
		}

		if !reserved {
			rec, err := store.Get(ctx, scoped)
			if err != nil {
				log.Warn().Err(err).Str("key", key).Msg("failed to read idempotency record")
			}
			if rec != nil && rec.Fingerprint != fingerprint {
				return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
					"message": "Idempotency-Key was already used with a different request",
				})
			}
			if rec != nil && rec.Done {
				c.Set("Idempotent-Replayed", "true")
				if rec.ContentType != "" {
					c.Set(fiber.HeaderContentType, rec.ContentType)
				}
				return c.Status(rec.Status).Send(rec.Body)
			}
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": "A request with this Idempotency-Key is still in progress",
			})
		}

		err = c.Next()
		status := c.Response().StatusCode()
		if err != nil || status >= fiber.StatusInternalServerError {
			if relErr := store.Release(ctx, scoped); relErr != nil {
				log.Warn().Err(relErr).Str("key", key).Msg("failed to release idempotency key")
			}
			return err
		}

		body := append([]byte(nil), c.Response().Body()...)
		rec := idempotency.Record{
			Fingerprint: fingerprint,
			Status:      status,
			ContentType: string(c.Response().Header.ContentType()),
			Body:        body,
		}
		if err := store.Complete(ctx, scoped, rec, ttl); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("failed to store idempotency record")
		}
		return nil
	}
}

// requestFingerprint hashes the method, path and body of the request.
func requestFingerprint(c *fiber.Ctx) string {
	h := sha256.New()
	h.Write([]byte(c.Method()))
	h.Write([]byte{0})
	h.Write([]byte(c.Path()))
	h.Write([]byte{0})
	h.Write(c.Body())
	return hex.EncodeToString(h.Sum(nil))
}
