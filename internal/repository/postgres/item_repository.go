// internal/repository/postgres/item_repository.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/Sohamiota/Target-JIT-org/internal/domain"
)

type itemRepository struct {
	db *DB
}

func NewItemRepository(db *DB) *itemRepository {
	return &itemRepository{db: db}
}

func (r *itemRepository) UpsertItems(ctx context.Context, items []domain.CatalogItem) error {
	if len(items) == 0 {
		return nil
	}

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO items (
				sku_id, demand_mean, demand_std, lead_time_mean, lead_time_std,
				unit_cost, ordering_cost, category, sales_velocity, turnover_rate,
				current_stock, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
			ON CONFLICT (sku_id)
			DO UPDATE SET
				demand_mean = EXCLUDED.demand_mean,
				demand_std = EXCLUDED.demand_std,
				lead_time_mean = EXCLUDED.lead_time_mean,
				lead_time_std = EXCLUDED.lead_time_std,
				unit_cost = EXCLUDED.unit_cost,
				ordering_cost = EXCLUDED.ordering_cost,
				category = EXCLUDED.category,
				sales_velocity = EXCLUDED.sales_velocity,
				turnover_rate = EXCLUDED.turnover_rate,
				current_stock = EXCLUDED.current_stock,
				updated_at = NOW()
		`

		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, item := range items {
			_, err := stmt.ExecContext(
				ctx,
				item.SKUID,
				item.DemandMean,
				item.DemandStd,
				item.LeadTimeMean,
				item.LeadTimeStd,
				item.UnitCost,
				item.OrderingCost,
				item.Category,
				item.SalesVelocity,
				item.TurnoverRate,
				item.CurrentStock,
			)
			if err != nil {
				return fmt.Errorf("failed to upsert item %s: %w", item.SKUID, err)
			}
		}

		log.Debug().Int("items", len(items)).Msg("catalog: items upserted")
		return nil
	})
}

// GetItems fetches a page of catalog items ordered by SKU
func (r *itemRepository) GetItems(ctx context.Context, filter *domain.ItemFilter) (*domain.ItemsPage, error) {
	page, pageSize := 1, 20
	if filter != nil {
		page, pageSize = clampPage(filter.Page, filter.PageSize)
	}
	offset := (page - 1) * pageSize

	filterClause, filterArgs := buildItemFilterClause(filter, "", 1)
	if filterClause != "" {
		log.Debug().
			Str("filter_clause", filterClause).
			Interface("filter_args", filterArgs).
			Msg("catalog: applying item filter")
	}

	countQuery := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM items
		WHERE sku_id <> '' %s
	`, filterClause)

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, filterArgs...); err != nil {
		log.Error().Err(err).Msg("catalog: failed to count items")
		return nil, fmt.Errorf("failed to count items: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT
			sku_id, demand_mean, demand_std, lead_time_mean, lead_time_std,
			unit_cost, ordering_cost, category, sales_velocity, turnover_rate,
			current_stock, created_at, updated_at
		FROM items
		WHERE sku_id <> '' %s
		ORDER BY sku_id
		LIMIT $%d OFFSET $%d
	`, filterClause, len(filterArgs)+1, len(filterArgs)+2)

	args := append(filterArgs, pageSize, offset)

	items := []domain.CatalogItem{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		log.Error().Err(err).Msg("catalog: failed to fetch items")
		return nil, fmt.Errorf("failed to fetch items: %w", err)
	}

	totalPages := (total + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}

	return &domain.ItemsPage{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// GetAllItems fetches every matching catalog row without pagination.
// A nil filter (or one with no SKU/category lists) returns the whole
// catalog.
func (r *itemRepository) GetAllItems(ctx context.Context, filter *domain.ItemFilter) ([]domain.CatalogItem, error) {
	filterClause, filterArgs := buildItemFilterClause(filter, "", 1)

	query := fmt.Sprintf(`
		SELECT
			sku_id, demand_mean, demand_std, lead_time_mean, lead_time_std,
			unit_cost, ordering_cost, category, sales_velocity, turnover_rate,
			current_stock, created_at, updated_at
		FROM items
		WHERE sku_id <> '' %s
		ORDER BY sku_id
	`, filterClause)

	var items []domain.CatalogItem
	if err := r.db.SelectContext(ctx, &items, query, filterArgs...); err != nil {
		return nil, fmt.Errorf("failed to fetch items: %w", err)
	}

	return items, nil
}

func (r *itemRepository) GetItem(ctx context.Context, skuID string) (*domain.CatalogItem, error) {
	query := `
		SELECT
			sku_id, demand_mean, demand_std, lead_time_mean, lead_time_std,
			unit_cost, ordering_cost, category, sales_velocity, turnover_rate,
			current_stock, created_at, updated_at
		FROM items
		WHERE sku_id = $1
	`

	var item domain.CatalogItem
	if err := r.db.GetContext(ctx, &item, query, skuID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch item %s: %w", skuID, err)
	}

	return &item, nil
}

func (r *itemRepository) CountItems(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM items`); err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return count, nil
}
