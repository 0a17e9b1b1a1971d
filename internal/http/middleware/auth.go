package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"

	"jobapi/internal/config"
)

// APITokenHeader carries the shared secret on API requests.
const APITokenHeader = "X-API-TOKEN"

// ErrUnauthorized is returned by the token middlewares; the ErrorHandler renders it as 401.
var ErrUnauthorized = fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")

// APIToken rejects requests whose X-API-TOKEN header does not match the configured token.
// With auth disabled every request passes.
func APIToken(cfg config.AuthConfig) fiber.Handler {
	return tokenAuth(cfg, func(c *fiber.Ctx) string {
		return c.Get(APITokenHeader)
	})
}

// WebhookToken checks the Authorization header MinIO sends to webhook targets
// configured with an auth_token. A "Bearer " prefix is optional.
func WebhookToken(cfg config.AuthConfig) fiber.Handler {
	return tokenAuth(cfg, func(c *fiber.Ctx) string {
		v := c.Get(fiber.HeaderAuthorization)
		if len(v) > 7 && strings.EqualFold(v[:7], "bearer ") {
			return v[7:]
		}
		return v
	})
}

func tokenAuth(cfg config.AuthConfig, extract func(*fiber.Ctx) string) fiber.Handler {
	if !cfg.Enabled {
		return func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	want := []byte(cfg.Token)
	return func(c *fiber.Ctx) error {
		got := []byte(extract(c))
		if subtle.ConstantTimeCompare(got, want) != 1 {
			return ErrUnauthorized
		}
		return c.Next()
	}
}
