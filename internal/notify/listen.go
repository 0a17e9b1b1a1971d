package notify

import (
	"context"
	"log/slog"

	"github.com/minio/minio-go/v7/pkg/notification"
)

// bucketListener is the subset of *minio.Client used to stream bucket events.
type bucketListener interface {
	ListenBucketNotification(ctx context.Context, bucketName, prefix, suffix string, events []string) <-chan notification.Info
}

// Listen streams object-created events for prefix from bucket until ctx is cancelled.
// Stream errors are logged; the MinIO client reconnects on its own.
func Listen(ctx context.Context, client bucketListener, bucket, prefix string, h BatchHandler, logger *slog.Logger) error {
	logger.InfoContext(ctx, "listening for bucket notifications",
		slog.String("bucket", bucket), slog.String("prefix", prefix))

	for info := range client.ListenBucketNotification(ctx, bucket, prefix+"/", "", []string{"s3:ObjectCreated:*"}) {
		if info.Err != nil {
			logger.ErrorContext(ctx, "bucket notification stream error", slog.Any("error", info.Err))
			continue
		}
		h.HandleBatch(ctx, FromNotification(info))
	}
	return ctx.Err()
}
