package pipeline

import (
	"context"

	"github.com/andresuchdata/filedrop/internal/repository"
)

// RepositoryRecorder stores results through a RunRepository.
type RepositoryRecorder struct {
	repo repository.RunRepository
}

func NewRepositoryRecorder(repo repository.RunRepository) *RepositoryRecorder {
	return &RepositoryRecorder{repo: repo}
}

func (r *RepositoryRecorder) RecordRun(ctx context.Context, res *Result) error {
	return r.repo.SaveRun(ctx, res.Run())
}
