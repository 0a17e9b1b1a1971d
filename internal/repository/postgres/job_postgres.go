package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"jobapi/internal/model"
	"jobapi/internal/repository"
)

const uniqueViolation = "23505"

// JobPostgres is a PostgreSQL implementation of repository.JobRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type JobPostgres struct {
	db    *sql.DB
	table string
}

// NewJobPostgres creates a JobPostgres repository over table.
// The table name is quoted, so stage-suffixed names like "jobs-dev" are valid.
func NewJobPostgres(db *sql.DB, table string) *JobPostgres {
	return &JobPostgres{db: db, table: pgx.Identifier{table}.Sanitize()}
}

var _ repository.JobRepository = (*JobPostgres)(nil)

// Create inserts a new job row.
func (r *JobPostgres) Create(ctx context.Context, job *model.Job) error {
	q := fmt.Sprintf(`
		INSERT INTO %s (job_id, status, created_at, updated_at, filename, content_type, bucket, object_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, r.table)
	_, err := r.db.ExecContext(ctx, q,
		job.ID,
		string(job.Status),
		job.CreatedAt,
		job.UpdatedAt,
		job.Filename,
		job.ContentType,
		job.Bucket,
		job.Key,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: %s", repository.ErrAlreadyExists, job.ID)
		}
		return err
	}
	return nil
}

// FindByID fetches a single job by its ID.
func (r *JobPostgres) FindByID(ctx context.Context, id string) (*model.Job, error) {
	q := fmt.Sprintf(`
		SELECT job_id, status, created_at, updated_at, filename, content_type, bucket, object_key
		FROM %s
		WHERE job_id = $1
	`, r.table)
	row := r.db.QueryRowContext(ctx, q, id)
	var (
		j      model.Job
		status string
	)
	if err := row.Scan(
		&j.ID,
		&status,
		&j.CreatedAt,
		&j.UpdatedAt,
		&j.Filename,
		&j.ContentType,
		&j.Bucket,
		&j.Key,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	j.Status = model.JobStatus(status)
	j.CreatedAt = j.CreatedAt.UTC()
	j.UpdatedAt = j.UpdatedAt.UTC()
	return &j, nil
}

// MarkUploaded flips the job to UPLOADED. Zero affected rows means the job does not exist.
func (r *JobPostgres) MarkUploaded(ctx context.Context, id string, at time.Time) error {
	q := fmt.Sprintf(`UPDATE %s SET status = $1, updated_at = $2 WHERE job_id = $3`, r.table)
	res, err := r.db.ExecContext(ctx, q, string(model.JobStatusUploaded), at, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Ping verifies the connection pool can reach the database.
func (r *JobPostgres) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
