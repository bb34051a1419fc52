// internal/repository/postgres/summary_repository.go
package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Sohamiota/Target-JIT-org/internal/domain"
	"github.com/Sohamiota/Target-JIT-org/internal/valuation"
)

const topItemCount = 10

type summaryRepository struct {
	db *DB
}

func NewSummaryRepository(db *DB) *summaryRepository {
	return &summaryRepository{db: db}
}

type summaryResultRow struct {
	domain.OptimizedItem
	Category string `db:"category"`
}

// GetSummary rolls up one completed run for the dashboard. Money totals
// are accumulated by the valuation layer rather than in SQL so the
// decimal strings stay exact.
func (r *summaryRepository) GetSummary(ctx context.Context, filter *domain.SummaryFilter) (*domain.OptimizationSummary, error) {
	if filter != nil {
		log.Debug().Interface("filter", filter).Msg("summary: fetching with filter")
	} else {
		log.Debug().Msg("summary: fetching without filter")
	}

	run, err := r.resolveRun(ctx, filter)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, nil
	}

	rows, err := r.fetchResultRows(ctx, run.ID, filter)
	if err != nil {
		return nil, err
	}

	items := make([]domain.OptimizedItem, 0, len(rows))
	categories := make(map[string]string, len(rows))
	for _, row := range rows {
		items = append(items, row.OptimizedItem)
		if row.Category != "" {
			categories[row.SKUID] = row.Category
		}
	}

	summary := valuation.Summarize(items, run.FailureCount)
	summary.RunID = run.ID.String()
	summary.PolicyVersion = run.PolicyVersion
	summary.Categories = valuation.CategoryRollup(items, categories)
	summary.TopItems = valuation.TopByCost(items, categories, topItemCount)

	return &summary, nil
}

// resolveRun picks the run named by the filter, or the latest completed
// run when the filter names none. A nil run means there is nothing to
// summarize yet.
func (r *summaryRepository) resolveRun(ctx context.Context, filter *domain.SummaryFilter) (*domain.OptimizationRun, error) {
	runs := NewRunRepository(r.db)

	if filter != nil && filter.RunID != "" {
		runID, err := uuid.Parse(filter.RunID)
		if err != nil {
			return nil, fmt.Errorf("invalid run id %q: %w", filter.RunID, err)
		}
		return runs.GetRun(ctx, runID)
	}

	return runs.LatestCompletedRun(ctx)
}

func (r *summaryRepository) fetchResultRows(ctx context.Context, runID uuid.UUID, filter *domain.SummaryFilter) ([]summaryResultRow, error) {
	conditions := "r.run_id = $1"
	args := []interface{}{runID}

	if filter != nil && filter.Category != "" {
		conditions += " AND i.category = $2"
		args = append(args, filter.Category)
	}

	query := fmt.Sprintf(`
		SELECT
			r.sku_id, r.demand_mean, r.demand_std, r.lead_time_mean,
			r.lead_time_std, r.unit_cost, r.ordering_cost, r.lead_time_demand,
			r.lead_time_demand_std, r.eoq, r.reorder_point, r.safety_stock,
			r.optimal_inventory, r.annual_holding_cost, r.annual_ordering_cost,
			r.total_annual_cost,
			COALESCE(i.category, '') AS category
		FROM optimization_results r
		LEFT JOIN items i ON r.sku_id = i.sku_id
		WHERE %s
	`, conditions)

	var rows []summaryResultRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		log.Error().Err(err).Str("run_id", runID.String()).Msg("summary: failed to fetch result rows")
		return nil, fmt.Errorf("failed to fetch summary rows: %w", err)
	}

	return rows, nil
}
