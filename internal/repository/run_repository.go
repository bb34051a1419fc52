// internal/repository/run_repository.go
package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/Sohamiota/Target-JIT-org/internal/domain"
)

type RunRepository interface {
	CreateRun(ctx context.Context, run *domain.OptimizationRun) error
	CompleteRun(ctx context.Context, run *domain.OptimizationRun) error
	FailRun(ctx context.Context, runID uuid.UUID, reason string) error
	GetRun(ctx context.Context, runID uuid.UUID) (*domain.OptimizationRun, error)
	ListRuns(ctx context.Context, limit int) ([]domain.OptimizationRun, error)
	LatestCompletedRun(ctx context.Context) (*domain.OptimizationRun, error)

	SaveResults(ctx context.Context, runID uuid.UUID, items []domain.OptimizedItem) error
	GetResults(ctx context.Context, runID uuid.UUID, filter *domain.ItemFilter) (*domain.ResultsPage, error)
}
