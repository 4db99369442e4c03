package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/andresuchdata/filedrop/internal/domain"
	"github.com/andresuchdata/filedrop/internal/repository"
	"github.com/jmoiron/sqlx"
)

const runsSchema = `
	CREATE TABLE IF NOT EXISTS file_runs (
		run_id         TEXT PRIMARY KEY,
		file_name      TEXT NOT NULL DEFAULT '',
		lines          INTEGER NOT NULL DEFAULT 0,
		upload_status  TEXT NOT NULL,
		notify_status  TEXT NOT NULL,
		enqueue_status TEXT NOT NULL,
		cache_status   TEXT NOT NULL,
		cleanup_status TEXT NOT NULL,
		error          TEXT NOT NULL DEFAULT '',
		started_at     TIMESTAMPTZ NOT NULL,
		finished_at    TIMESTAMPTZ NOT NULL
	)
`

type runRepository struct {
	db *DB
}

// NewRunRepository returns a postgres-backed RunRepository, creating the
// file_runs table if it does not exist.
func NewRunRepository(ctx context.Context, db *DB) (repository.RunRepository, error) {
	if _, err := db.ExecContext(ctx, runsSchema); err != nil {
		return nil, fmt.Errorf("failed to ensure file_runs table: %w", err)
	}
	return &runRepository{db: db}, nil
}

func (r *runRepository) SaveRun(ctx context.Context, run *domain.Run) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO file_runs (
				run_id, file_name, lines, upload_status, notify_status,
				enqueue_status, cache_status, cleanup_status, error,
				started_at, finished_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (run_id) DO NOTHING
		`
		_, err := tx.ExecContext(ctx, query,
			run.RunID,
			run.FileName,
			run.Lines,
			run.UploadStatus,
			run.NotifyStatus,
			run.EnqueueStatus,
			run.CacheStatus,
			run.CleanupStatus,
			run.Error,
			run.StartedAt,
			run.FinishedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert run %s: %w", run.RunID, err)
		}
		return nil
	})
}

func (r *runRepository) ListRecentRuns(ctx context.Context, limit int) ([]*domain.Run, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT run_id, file_name, lines, upload_status, notify_status,
		       enqueue_status, cache_status, cleanup_status, error,
		       started_at, finished_at
		FROM file_runs
		ORDER BY started_at DESC
		LIMIT $1
	`

	var runs []*domain.Run
	if err := sqlx.SelectContext(ctx, r.db, &runs, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	for _, run := range runs {
		if err := run.Validate(); err != nil {
			return nil, err
		}
	}
	return runs, nil
}
