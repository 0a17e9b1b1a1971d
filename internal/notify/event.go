// Package notify feeds object-created notifications from MinIO/S3 transports into the reactor.
package notify

import (
	"context"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7/pkg/notification"

	"jobapi/internal/reactor"
)

// BatchHandler consumes one batch of object-created entries.
type BatchHandler interface {
	HandleBatch(ctx context.Context, events []reactor.ObjectCreated) reactor.Result
}

// FromNotification keeps the ObjectCreated records of info and decodes their keys.
// MinIO names them "s3:ObjectCreated:*", AWS "ObjectCreated:*". Keys arrive form-encoded;
// a key that fails to decode is passed on raw and left to the key schema to reject.
func FromNotification(info notification.Info) []reactor.ObjectCreated {
	out := make([]reactor.ObjectCreated, 0, len(info.Records))
	for _, rec := range info.Records {
		if !strings.Contains(rec.EventName, "ObjectCreated:") {
			continue
		}
		key := rec.S3.Object.Key
		if decoded, err := url.QueryUnescape(key); err == nil {
			key = decoded
		}
		out = append(out, reactor.ObjectCreated{
			Bucket: rec.S3.Bucket.Name,
			Key:    key,
		})
	}
	return out
}
