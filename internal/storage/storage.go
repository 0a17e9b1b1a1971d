package storage

import (
	"context"
	"time"
)

// Package storage contains object storage abstractions for S3-compatible stores.
// Uploads never pass through this service: clients write directly with a pre-signed URL.

// Storage is the object store capability the job service needs.
type Storage interface {
	// Bucket returns the bucket every upload is written to.
	Bucket() string
	// PresignPut returns a time-limited URL that allows exactly one PUT of key with the given content type.
	PresignPut(ctx context.Context, key, contentType string, expiry time.Duration) (string, error)
}
