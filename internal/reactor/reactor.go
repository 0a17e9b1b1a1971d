// Package reactor marks jobs UPLOADED when their object lands in storage.
package reactor

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"jobapi/internal/objectkey"
	"jobapi/internal/repository"
)

// Overridden in tests.
var now = func() time.Time { return time.Now().UTC() }

// ObjectCreated is one entry of an object-created notification batch.
type ObjectCreated struct {
	Bucket string
	Key    string
}

// Failure is a batch entry whose status update could not be persisted.
type Failure struct {
	Key   string
	JobID string
	Err   error
}

// Result summarises a processed batch.
type Result struct {
	Updated int
	Skipped int
	Missing int
	Failed  []Failure
}

// Reactor applies object-created notifications to job records.
// It holds no mutable state and is safe for concurrent use.
type Reactor struct {
	repo    repository.JobRepository
	keys    objectkey.Schema
	log     *slog.Logger
	metrics *Metrics
}

// New returns a Reactor. metrics may be nil.
func New(repo repository.JobRepository, keys objectkey.Schema, logger *slog.Logger, metrics *Metrics) *Reactor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reactor{
		repo:    repo,
		keys:    keys,
		log:     logger.With(slog.String("component", "upload_reactor")),
		metrics: metrics,
	}
}

// HandleBatch processes every entry independently. A failed entry never stops its siblings,
// and the batch as a whole is always accepted.
func (r *Reactor) HandleBatch(ctx context.Context, events []ObjectCreated) Result {
	var res Result
	for _, ev := range events {
		r.handle(ctx, ev, &res)
	}
	r.log.InfoContext(ctx, "upload batch processed",
		slog.Int("entries", len(events)),
		slog.Int("updated", res.Updated),
		slog.Int("skipped", res.Skipped),
		slog.Int("missing", res.Missing),
		slog.Int("failed", len(res.Failed)),
	)
	return res
}

func (r *Reactor) handle(ctx context.Context, ev ObjectCreated, res *Result) {
	jobID, ok := r.keys.JobID(ev.Key)
	if !ok {
		res.Skipped++
		r.metrics.observe(outcomeSkipped)
		r.log.DebugContext(ctx, "key outside upload schema",
			slog.String("bucket", ev.Bucket), slog.String("key", ev.Key))
		return
	}

	err := r.repo.MarkUploaded(ctx, jobID, now())
	switch {
	case err == nil:
		res.Updated++
		r.metrics.observe(outcomeUpdated)
		r.log.InfoContext(ctx, "job marked uploaded",
			slog.String("job_id", jobID), slog.String("bucket", ev.Bucket), slog.String("key", ev.Key))
	case errors.Is(err, repository.ErrNotFound):
		res.Missing++
		r.metrics.observe(outcomeMissing)
		r.log.WarnContext(ctx, "no job record for uploaded object",
			slog.String("job_id", jobID), slog.String("bucket", ev.Bucket), slog.String("key", ev.Key))
	default:
		res.Failed = append(res.Failed, Failure{Key: ev.Key, JobID: jobID, Err: err})
		r.metrics.observe(outcomeFailed)
		r.log.ErrorContext(ctx, "mark uploaded failed",
			slog.String("op", "mark uploaded"),
			slog.String("job_id", jobID),
			slog.String("key", ev.Key),
			slog.Any("error", err))
	}
}
