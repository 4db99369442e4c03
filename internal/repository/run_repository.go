package repository

import (
	"context"

	"github.com/andresuchdata/filedrop/internal/domain"
)

// RunRepository persists pipeline run summaries.
type RunRepository interface {
	SaveRun(ctx context.Context, run *domain.Run) error
	ListRecentRuns(ctx context.Context, limit int) ([]*domain.Run, error)
}
