// internal/repository/postgres/run_repository.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/Sohamiota/Target-JIT-org/internal/domain"
)

type runRepository struct {
	db *DB
}

func NewRunRepository(db *DB) *runRepository {
	return &runRepository{db: db}
}

func (r *runRepository) CreateRun(ctx context.Context, run *domain.OptimizationRun) error {
	query := `
		INSERT INTO optimization_runs (
			id, policy_version, status, item_count, failure_count,
			total_annual_cost, started_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		run.ID,
		run.PolicyVersion,
		run.Status,
		run.ItemCount,
		run.FailureCount,
		run.TotalAnnualCost,
		run.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}

	log.Debug().Str("run_id", run.ID.String()).Msg("runs: run created")
	return nil
}

// CompleteRun marks the run completed and records its final counters.
func (r *runRepository) CompleteRun(ctx context.Context, run *domain.OptimizationRun) error {
	query := `
		UPDATE optimization_runs
		SET status = $2,
			item_count = $3,
			failure_count = $4,
			total_annual_cost = $5,
			completed_at = NOW()
		WHERE id = $1
		RETURNING completed_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		run.ID,
		domain.RunStatusCompleted,
		run.ItemCount,
		run.FailureCount,
		run.TotalAnnualCost,
	).Scan(&run.CompletedAt)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}

	run.Status = domain.RunStatusCompleted
	return nil
}

func (r *runRepository) FailRun(ctx context.Context, runID uuid.UUID, reason string) error {
	query := `
		UPDATE optimization_runs
		SET status = $2,
			error_message = $3,
			completed_at = NOW()
		WHERE id = $1
	`

	if _, err := r.db.ExecContext(ctx, query, runID, domain.RunStatusFailed, reason); err != nil {
		return fmt.Errorf("failed to mark run failed: %w", err)
	}

	return nil
}

func (r *runRepository) GetRun(ctx context.Context, runID uuid.UUID) (*domain.OptimizationRun, error) {
	query := `
		SELECT id, policy_version, status, item_count, failure_count,
			total_annual_cost, started_at, completed_at, error_message
		FROM optimization_runs
		WHERE id = $1
	`

	var run domain.OptimizationRun
	if err := r.db.GetContext(ctx, &run, query, runID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch run %s: %w", runID, err)
	}

	return &run, nil
}

func (r *runRepository) ListRuns(ctx context.Context, limit int) ([]domain.OptimizationRun, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := `
		SELECT id, policy_version, status, item_count, failure_count,
			total_annual_cost, started_at, completed_at, error_message
		FROM optimization_runs
		ORDER BY started_at DESC
		LIMIT $1
	`

	var runs []domain.OptimizationRun
	if err := r.db.SelectContext(ctx, &runs, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	return runs, nil
}

func (r *runRepository) LatestCompletedRun(ctx context.Context) (*domain.OptimizationRun, error) {
	query := `
		SELECT id, policy_version, status, item_count, failure_count,
			total_annual_cost, started_at, completed_at, error_message
		FROM optimization_runs
		WHERE status = $1
		ORDER BY completed_at DESC
		LIMIT 1
	`

	var run domain.OptimizationRun
	if err := r.db.GetContext(ctx, &run, query, domain.RunStatusCompleted); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch latest completed run: %w", err)
	}

	return &run, nil
}

func (r *runRepository) SaveResults(ctx context.Context, runID uuid.UUID, items []domain.OptimizedItem) error {
	if len(items) == 0 {
		return nil
	}

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO optimization_results (
				run_id, sku_id, demand_mean, demand_std, lead_time_mean,
				lead_time_std, unit_cost, ordering_cost, lead_time_demand,
				lead_time_demand_std, eoq, reorder_point, safety_stock,
				optimal_inventory, annual_holding_cost, annual_ordering_cost,
				total_annual_cost
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
			ON CONFLICT (run_id, sku_id)
			DO UPDATE SET
				lead_time_demand = EXCLUDED.lead_time_demand,
				lead_time_demand_std = EXCLUDED.lead_time_demand_std,
				eoq = EXCLUDED.eoq,
				reorder_point = EXCLUDED.reorder_point,
				safety_stock = EXCLUDED.safety_stock,
				optimal_inventory = EXCLUDED.optimal_inventory,
				annual_holding_cost = EXCLUDED.annual_holding_cost,
				annual_ordering_cost = EXCLUDED.annual_ordering_cost,
				total_annual_cost = EXCLUDED.total_annual_cost
		`

		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, item := range items {
			_, err := stmt.ExecContext(
				ctx,
				runID,
				item.SKUID,
				item.DemandMean,
				item.DemandStd,
				item.LeadTimeMean,
				item.LeadTimeStd,
				item.UnitCost,
				item.OrderingCost,
				item.LeadTimeDemand,
				item.LeadTimeDemandStd,
				item.EOQ,
				item.ReorderPoint,
				item.SafetyStock,
				item.OptimalInventory,
				item.AnnualHoldingCost,
				item.AnnualOrderingCost,
				item.TotalAnnualCost,
			)
			if err != nil {
				return fmt.Errorf("failed to insert result %s: %w", item.SKUID, err)
			}
		}

		log.Debug().
			Str("run_id", runID.String()).
			Int("results", len(items)).
			Msg("runs: results saved")
		return nil
	})
}

// GetResults fetches a page of results for one run, joined against the
// catalog so category filters apply.
func (r *runRepository) GetResults(ctx context.Context, runID uuid.UUID, filter *domain.ItemFilter) (*domain.ResultsPage, error) {
	page, pageSize := 1, 20
	if filter != nil {
		page, pageSize = clampPage(filter.Page, filter.PageSize)
	}
	offset := (page - 1) * pageSize

	conditions := "r.run_id = $1"
	args := []interface{}{runID}
	idx := 2

	if filter != nil && len(filter.SKUIDs) > 0 {
		conditions += fmt.Sprintf(" AND r.sku_id = ANY($%d::text[])", idx)
		args = append(args, pq.Array(filter.SKUIDs))
		idx++
	}
	if filter != nil && len(filter.Categories) > 0 {
		conditions += fmt.Sprintf(" AND i.category = ANY($%d::text[])", idx)
		args = append(args, pq.Array(filter.Categories))
		idx++
	}

	countQuery := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM optimization_results r
		LEFT JOIN items i ON r.sku_id = i.sku_id
		WHERE %s
	`, conditions)

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		log.Error().Err(err).Str("run_id", runID.String()).Msg("runs: failed to count results")
		return nil, fmt.Errorf("failed to count results: %w", err)
	}

	orderBy := "ORDER BY r.sku_id"
	if filter != nil {
		if clause := resultsOrderBy(filter.SortBy, filter.SortDir); clause != "" {
			orderBy = clause
		}
	}

	query := fmt.Sprintf(`
		SELECT
			r.sku_id, r.demand_mean, r.demand_std, r.lead_time_mean,
			r.lead_time_std, r.unit_cost, r.ordering_cost, r.lead_time_demand,
			r.lead_time_demand_std, r.eoq, r.reorder_point, r.safety_stock,
			r.optimal_inventory, r.annual_holding_cost, r.annual_ordering_cost,
			r.total_annual_cost
		FROM optimization_results r
		LEFT JOIN items i ON r.sku_id = i.sku_id
		WHERE %s
		%s
		LIMIT $%d OFFSET $%d
	`, conditions, orderBy, idx, idx+1)

	args = append(args, pageSize, offset)

	results := []domain.OptimizedItem{}
	if err := r.db.SelectContext(ctx, &results, query, args...); err != nil {
		log.Error().Err(err).Str("run_id", runID.String()).Msg("runs: failed to fetch results")
		return nil, fmt.Errorf("failed to fetch results: %w", err)
	}

	totalPages := (total + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}

	return &domain.ResultsPage{
		Results:    results,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}
