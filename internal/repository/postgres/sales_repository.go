// internal/repository/postgres/sales_repository.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Sohamiota/Target-JIT-org/internal/domain"
)

type salesRepository struct {
	db *DB
}

func NewSalesRepository(db *DB) *salesRepository {
	return &salesRepository{db: db}
}

func (r *salesRepository) SaveDailySales(ctx context.Context, sales []domain.DailySale) error {
	if len(sales) == 0 {
		return nil
	}

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO daily_sales (date, sku_id, category, quantity)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (date, sku_id)
			DO UPDATE SET
				category = EXCLUDED.category,
				quantity = EXCLUDED.quantity
		`

		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, sale := range sales {
			_, err := stmt.ExecContext(ctx, sale.Date, sale.SKUID, sale.Category, sale.Quantity)
			if err != nil {
				return fmt.Errorf("failed to upsert sale %s/%s: %w",
					sale.SKUID, sale.Date.Format("2006-01-02"), err)
			}
		}

		log.Debug().Int("rows", len(sales)).Msg("sales: daily sales upserted")
		return nil
	})
}

func (r *salesRepository) GetDailySales(ctx context.Context, skuID string, since time.Time) ([]domain.DailySale, error) {
	query := `
		SELECT date, sku_id, category, quantity
		FROM daily_sales
		WHERE date >= $1
		  AND ($2 = '' OR sku_id = $2)
		ORDER BY date, sku_id
	`

	var sales []domain.DailySale
	if err := r.db.SelectContext(ctx, &sales, query, since, skuID); err != nil {
		return nil, fmt.Errorf("failed to fetch daily sales: %w", err)
	}

	return sales, nil
}

func (r *salesRepository) LastSaleDate(ctx context.Context) (time.Time, error) {
	var last sql.NullTime
	if err := r.db.GetContext(ctx, &last, `SELECT MAX(date) FROM daily_sales`); err != nil {
		return time.Time{}, fmt.Errorf("failed to fetch last sale date: %w", err)
	}
	if !last.Valid {
		return time.Time{}, nil
	}
	return last.Time, nil
}
