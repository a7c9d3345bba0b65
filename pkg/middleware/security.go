package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/festivalpos/distribution-engine/pkg/jwt_service"
	"github.com/festivalpos/distribution-engine/pkg/utils"
)

// SecurityHeaders adds security-related HTTP headers to responses
func SecurityHeaders() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("X-XSS-Protection", "1; mode=block")
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Content-Security-Policy", "default-src 'self'")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")

		return c.Next()
	}
}

// apiKeyPrefix marks a static service credential on the Authorization
// header, distinguishing a POS terminal's shared key from a user's bearer
// JWT on the same authenticated surface.
const apiKeyPrefix = "ApiKey "

// Authenticate validates the caller on the authenticated RPC surface
// (spec.md §6.1, "distributeOrder ... Authenticated"). Two credential forms
// share the header: a user bearer JWT, validated via tokens and stashed as
// claims; or a POS terminal's static API key, verified against apiKeyHash
// (bcrypt, per pkg/utils.VerifyPassword) since terminals have no per-user
// identity to issue a JWT for.
func Authenticate(tokens jwt_service.TokenService, apiKeyHash string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "authentication required",
			})
		}

		if rawKey, ok := strings.CutPrefix(header, apiKeyPrefix); ok {
			if apiKeyHash == "" {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "api key authentication not configured",
				})
			}
			if err := utils.VerifyPassword(rawKey, apiKeyHash); err != nil {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "invalid api key",
				})
			}
			return c.Next()
		}

		raw := tokens.GetTokenFromBearerString(header)
		claims, err := tokens.ValidateToken(raw)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid or expired token",
			})
		}

		c.Locals("claims", claims)
		return c.Next()
	}
}
