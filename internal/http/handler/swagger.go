package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"

	_ "jobapi/docs"
)

// RegisterSwagger mounts the Swagger UI and doc.json under /swagger.
// The generated spec leaves host and schemes empty, so the UI targets whatever
// host and scheme served it; nothing is mutated per request.
func RegisterSwagger(r fiber.Router) {
	r.Get("/swagger/*", swagger.HandlerDefault)
}
