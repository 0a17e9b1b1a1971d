package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"jobapi/internal/model"
	"jobapi/internal/objectkey"
	"jobapi/internal/repository"
	"jobapi/internal/storage"
)

// DefaultUploadURLExpiry is how long an issued upload URL stays valid.
const DefaultUploadURLExpiry = time.Hour

// Overridden in tests.
var (
	newJobID = uuid.NewString
	now      = func() time.Time { return time.Now().UTC() }
)

var tracer = otel.Tracer("jobapi/internal/service")

// UploadSlot is returned to the client after a successful CreateUploadSlot.
type UploadSlot struct {
	JobID     string          `json:"jobId"`
	UploadURL string          `json:"uploadUrl"`
	UploadKey string          `json:"uploadKey"`
	Bucket    string          `json:"bucket"`
	Status    model.JobStatus `json:"status"`
}

// HealthStatus is the static health snapshot.
type HealthStatus struct {
	Status string `json:"status"`
	Stage  string `json:"stage"`
}

// JobService defines the use cases for upload jobs.
type JobService interface {
	// CreateUploadSlot persists a PENDING_UPLOAD job and returns a pre-signed PUT URL for its object key.
	// The record is written before the URL is signed; a signing failure leaves the record in place.
	CreateUploadSlot(ctx context.Context, filename, contentType string) (*UploadSlot, error)

	// GetJob returns the stored record for jobID.
	GetJob(ctx context.Context, jobID string) (*model.Job, error)

	// Health reports a static "ok" with the deployment stage. It performs no I/O.
	Health() HealthStatus

	// Ready checks the record store is reachable.
	Ready(ctx context.Context) error
}

// Config holds the JobService settings that do not come from its dependencies.
type Config struct {
	Stage           string
	Keys            objectkey.Schema
	UploadURLExpiry time.Duration
	Logger          *slog.Logger
}

// jobService is a concrete implementation of JobService.
type jobService struct {
	store  storage.Storage
	repo   repository.JobRepository
	keys   objectkey.Schema
	stage  string
	expiry time.Duration
	log    *slog.Logger
}

// NewJobService constructs a new JobService.
func NewJobService(store storage.Storage, repo repository.JobRepository, cfg Config) JobService {
	if cfg.Keys.Prefix == "" {
		cfg.Keys = objectkey.New("")
	}
	if cfg.UploadURLExpiry <= 0 {
		cfg.UploadURLExpiry = DefaultUploadURLExpiry
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &jobService{
		store:  store,
		repo:   repo,
		keys:   cfg.Keys,
		stage:  cfg.Stage,
		expiry: cfg.UploadURLExpiry,
		log:    cfg.Logger.With(slog.String("component", "job_service")),
	}
}

func (s *jobService) CreateUploadSlot(ctx context.Context, filename, contentType string) (*UploadSlot, error) {
	if filename == "" {
		return nil, ErrFilenameRequired
	}
	if contentType == "" {
		contentType = model.DefaultContentType
	}

	jobID := newJobID()
	key := s.keys.Compose(jobID, filename)

	ctx, span := tracer.Start(ctx, "CreateUploadSlot", trace.WithAttributes(
		attribute.String("job.id", jobID),
		attribute.String("object.key", key),
	))
	defer span.End()

	ts := now()
	job := &model.Job{
		ID:          jobID,
		Status:      model.JobStatusPendingUpload,
		CreatedAt:   ts,
		UpdatedAt:   ts,
		Filename:    filename,
		ContentType: contentType,
		Bucket:      s.store.Bucket(),
		Key:         key,
	}

	if err := s.repo.Create(ctx, job); err != nil {
		return nil, s.dependencyFailure(ctx, span, OpCreateRecord, err, slog.String("job_id", jobID))
	}

	uploadURL, err := s.store.PresignPut(ctx, key, contentType, s.expiry)
	if err != nil {
		return nil, s.dependencyFailure(ctx, span, OpPresignURL, err,
			slog.String("job_id", jobID), slog.String("key", key))
	}

	s.log.InfoContext(ctx, "upload slot issued",
		slog.String("job_id", jobID),
		slog.String("bucket", job.Bucket),
		slog.String("key", key),
		slog.String("content_type", contentType),
	)

	return &UploadSlot{
		JobID:     jobID,
		UploadURL: uploadURL,
		UploadKey: key,
		Bucket:    job.Bucket,
		Status:    job.Status,
	}, nil
}

func (s *jobService) GetJob(ctx context.Context, jobID string) (*model.Job, error) {
	if jobID == "" {
		return nil, ErrJobIDRequired
	}

	ctx, span := tracer.Start(ctx, "GetJob", trace.WithAttributes(attribute.String("job.id", jobID)))
	defer span.End()

	job, err := s.repo.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, s.dependencyFailure(ctx, span, OpReadJob, err, slog.String("job_id", jobID))
	}
	return job, nil
}

func (s *jobService) Health() HealthStatus {
	return HealthStatus{Status: "ok", Stage: s.stage}
}

func (s *jobService) Ready(ctx context.Context) error {
	if err := s.repo.Ping(ctx); err != nil {
		return &DependencyError{Op: OpPingStore, Err: err}
	}
	return nil
}

func (s *jobService) dependencyFailure(ctx context.Context, span trace.Span, op string, err error, attrs ...any) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, op)
	args := append([]any{slog.String("op", op), slog.Any("error", err)}, attrs...)
	s.log.ErrorContext(ctx, "dependency call failed", args...)
	return &DependencyError{Op: op, Err: err}
}
