package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/andresuchdata/filedrop/internal/domain"
	"github.com/andresuchdata/filedrop/internal/repository"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/semaphore"
)

var runColumns = []string{
	"run_id", "file_name", "lines", "upload_status", "notify_status",
	"enqueue_status", "cache_status", "cleanup_status", "error",
	"started_at", "finished_at",
}

func newMockRepository(t *testing.T) (repository.RunRepository, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	db := &DB{DB: sqlx.NewDb(conn, "sqlmock"), sem: semaphore.NewWeighted(1)}

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS file_runs")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	repo, err := NewRunRepository(context.Background(), db)
	require.NoError(t, err)
	return repo, mock
}

func sampleRun() *domain.Run {
	started := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return &domain.Run{
		RunID:         "run-1",
		FileName:      "3f2b.txt",
		Lines:         512,
		UploadStatus:  domain.StepSucceeded,
		NotifyStatus:  domain.StepSkipped,
		EnqueueStatus: domain.StepFailed,
		CacheStatus:   domain.StepSucceeded,
		CleanupStatus: domain.StepSucceeded,
		Error:         "",
		StartedAt:     started,
		FinishedAt:    started.Add(250 * time.Millisecond),
	}
}

func TestSaveRunInsertsEveryColumn(t *testing.T) {
	repo, mock := newMockRepository(t)
	run := sampleRun()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO file_runs")).
		WithArgs(run.RunID, run.FileName, run.Lines,
			run.UploadStatus, run.NotifyStatus, run.EnqueueStatus, run.CacheStatus, run.CleanupStatus,
			run.Error, run.StartedAt, run.FinishedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.SaveRun(context.Background(), run))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveRunRollsBackOnError(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO file_runs")).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := repo.SaveRun(context.Background(), sampleRun())
	assert.ErrorContains(t, err, "failed to insert run run-1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListRecentRunsMapsColumns(t *testing.T) {
	repo, mock := newMockRepository(t)
	want := sampleRun()

	rows := sqlmock.NewRows(runColumns).AddRow(
		want.RunID, want.FileName, want.Lines,
		"succeeded", "skipped", "failed", "succeeded", "succeeded",
		want.Error, want.StartedAt, want.FinishedAt,
	)
	mock.ExpectQuery(regexp.QuoteMeta("FROM file_runs")).WithArgs(5).WillReturnRows(rows)

	runs, err := repo.ListRecentRuns(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, want, runs[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListRecentRunsRejectsUnknownStatus(t *testing.T) {
	repo, mock := newMockRepository(t)
	r := sampleRun()

	rows := sqlmock.NewRows(runColumns).AddRow(
		r.RunID, r.FileName, r.Lines,
		"succeeded", "pending", "failed", "succeeded", "succeeded",
		r.Error, r.StartedAt, r.FinishedAt,
	)
	mock.ExpectQuery(regexp.QuoteMeta("FROM file_runs")).WithArgs(20).WillReturnRows(rows)

	_, err := repo.ListRecentRuns(context.Background(), 0)
	assert.ErrorContains(t, err, `unknown notify status "pending"`)
}
