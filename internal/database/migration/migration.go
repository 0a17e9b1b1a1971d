// Package migration creates the job record table on first start.
package migration

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
)

type migrationStep struct {
	Name string
	SQL  string
}

// stepsFor returns the DDL for the jobs table. Table and index names are quoted
// because stage-suffixed names contain dashes.
func stepsFor(table string) []migrationStep {
	t := pgx.Identifier{table}.Sanitize()
	return []migrationStep{
		{
			Name: "create_table_jobs",
			SQL: fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
  job_id       TEXT        PRIMARY KEY,
  status       TEXT        NOT NULL CHECK (status IN ('PENDING_UPLOAD', 'UPLOADED')),
  created_at   TIMESTAMPTZ NOT NULL,
  updated_at   TIMESTAMPTZ NOT NULL,
  filename     TEXT        NOT NULL,
  content_type TEXT        NOT NULL,
  bucket       TEXT        NOT NULL,
  object_key   TEXT        NOT NULL UNIQUE
);`, t),
		},
		{
			Name: "create_index_jobs_status",
			SQL: fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (status);`,
				pgx.Identifier{"idx_" + table + "_status"}.Sanitize(), t),
		},
		{
			Name: "create_index_jobs_created_at",
			SQL: fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (created_at);`,
				pgx.Identifier{"idx_" + table + "_created_at"}.Sanitize(), t),
		},
	}
}

// EnsureMigrated creates table and its indexes unless the table already exists.
func EnsureMigrated(ctx context.Context, db *sql.DB, table string, logger *slog.Logger) error {
	start := time.Now()
	log := logger.With(slog.String("component", "database"), slog.String("table", table))

	log.InfoContext(ctx, "db_migration_check")

	var exists bool
	err := db.QueryRowContext(ctx, "SELECT to_regclass($1) IS NOT NULL", pgx.Identifier{table}.Sanitize()).Scan(&exists)
	if err != nil {
		log.ErrorContext(ctx, "db_migration_failed",
			slog.Any("error", err),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()))
		return fmt.Errorf("check table %s: %w", table, err)
	}

	if exists {
		log.InfoContext(ctx, "db_migration_skip",
			slog.String("reason", "table already exists"),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()))
		return nil
	}

	for _, step := range stepsFor(table) {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.ErrorContext(ctx, "db_migration_failed",
				slog.String("migration_step", step.Name),
				slog.Any("error", err),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()))
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.InfoContext(ctx, "db_migration_step",
			slog.String("migration_step", step.Name),
			slog.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()))
	}

	log.InfoContext(ctx, "db_migration_success",
		slog.Int64("duration_ms", time.Since(start).Milliseconds()))

	return nil
}
