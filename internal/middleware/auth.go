package middleware

import (
	"context"
	"strings"

	"visage/internal/token"

	"github.com/gofiber/fiber/v2"
)

// AuthRequired returns a middleware that enforces bearer-token authentication
// for protected routes. On success the claim's user ID and username are
// stored in the request locals. All verification failures collapse into the
// same unauthorized response; the caller learns nothing about which check
// failed.
func AuthRequired(codec *token.Codec) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Not authenticated",
			})
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Not authenticated",
			})
		}

		claim, err := codec.Verify(parts[1])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Not authenticated",
			})
		}

		c.Locals("userID", claim.UserID)
		c.Locals("username", claim.Username)

		// ContextMiddleware ran before the identity was known; stamp it now
		// so the context-aware logger picks it up in deeper layers.
		c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, claim.UserID))

		return c.Next()
	}
}
