package notify

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/minio/minio-go/v7/pkg/notification"
)

// ErrInvalidPayload is returned for bodies that are not a notification document.
var ErrInvalidPayload = fiber.NewError(fiber.StatusBadRequest, "Invalid JSON body")

// WebhookResponse acknowledges a delivered batch.
type WebhookResponse struct {
	Accepted int `json:"accepted"`
	Updated  int `json:"updated"`
	Skipped  int `json:"skipped"`
	Missing  int `json:"missing"`
	Failed   int `json:"failed"`
}

// Webhook receives MinIO webhook notifications. Entry failures are reported in the body,
// never as a non-2xx status, so the store does not redeliver the whole batch.
func Webhook(h BatchHandler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var info notification.Info
		if err := json.Unmarshal(c.Body(), &info); err != nil {
			return ErrInvalidPayload
		}
		events := FromNotification(info)
		res := h.HandleBatch(c.UserContext(), events)
		return c.JSON(WebhookResponse{
			Accepted: len(events),
			Updated:  res.Updated,
			Skipped:  res.Skipped,
			Missing:  res.Missing,
			Failed:   len(res.Failed),
		})
	}
}
