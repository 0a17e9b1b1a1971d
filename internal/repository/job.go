package repository

import (
	"context"
	"errors"
	"time"

	"jobapi/internal/model"
)

var (
	// ErrNotFound is returned when no record exists for the given job id.
	ErrNotFound = errors.New("job record not found")
	// ErrAlreadyExists is returned when Create hits an existing job id.
	ErrAlreadyExists = errors.New("job record already exists")
)

// JobRepository defines data access for job records.
// Implementations rely on the store's single-key atomicity; there are no multi-key transactions.
type JobRepository interface {
	// Create stores a new job record. It never overwrites an existing one.
	Create(ctx context.Context, job *model.Job) error

	// FindByID returns the record for id, or ErrNotFound.
	FindByID(ctx context.Context, id string) (*model.Job, error)

	// MarkUploaded sets status to UPLOADED and updatedAt to at, whatever the prior status.
	// It returns ErrNotFound when no record exists and never creates one.
	MarkUploaded(ctx context.Context, id string, at time.Time) error

	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error
}
