// internal/repository/summary_repository.go
package repository

import (
	"context"

	"github.com/Sohamiota/Target-JIT-org/internal/domain"
)

type SummaryRepository interface {
	// GetSummary aggregates the latest completed run (or the run named
	// by the filter) into the dashboard summary.
	GetSummary(ctx context.Context, filter *domain.SummaryFilter) (*domain.OptimizationSummary, error)
}
