package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// responseStatus resolves the status a request will end with. When the chain returned an
// error the global ErrorHandler has not written the response yet, so the error decides.
func responseStatus(c *fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}
