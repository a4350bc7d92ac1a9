package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CORSConfig holds the single allowed client origin.
type CORSConfig struct {
	AllowedOrigin string
}

// CORS allows the configured client origin (plus localhost in dev) with
// credentials, mirroring the admin UI's cookie-based auth.
func CORS(cfg CORSConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		origin := c.Get("Origin")
		if origin == "" {
			return c.Next()
		}
		allowed := origin == cfg.AllowedOrigin ||
			strings.HasPrefix(origin, "http://localhost:") ||
			strings.HasPrefix(origin, "http://127.0.0.1:")
		if !allowed {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"status": "error",
				"error": fiber.Map{
					"message":    "Not allowed by CORS",
					"statusCode": 403,
				},
			})
		}
		c.Set("Access-Control-Allow-Origin", origin)
		c.Set("Access-Control-Allow-Credentials", "true")
		c.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		if c.Method() == fiber.MethodOptions {
			return c.SendStatus(fiber.StatusNoContent)
		}
		return c.Next()
	}
}
