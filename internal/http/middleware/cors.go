package middleware

import "github.com/gofiber/fiber/v2"

const (
	corsAllowHeaders = "Content-Type," + APITokenHeader
	corsAllowMethods = "GET,POST,PUT,OPTIONS"
)

// CORS sets the same CORS headers on every response, whatever the request Origin,
// and answers every OPTIONS request with an empty 200 before auth runs.
func CORS(origin string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderAccessControlAllowOrigin, origin)
		c.Set(fiber.HeaderAccessControlAllowHeaders, corsAllowHeaders)
		c.Set(fiber.HeaderAccessControlAllowMethods, corsAllowMethods)

		if c.Method() == fiber.MethodOptions {
			return c.Status(fiber.StatusOK).Send(nil)
		}
		return c.Next()
	}
}
