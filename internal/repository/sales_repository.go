// internal/repository/sales_repository.go
package repository

import (
	"context"
	"time"

	"github.com/Sohamiota/Target-JIT-org/internal/domain"
)

type SalesRepository interface {
	SaveDailySales(ctx context.Context, sales []domain.DailySale) error
	// GetDailySales returns sales rows for one SKU, or the whole catalog
	// when skuID is empty, from the given date onward in date order.
	GetDailySales(ctx context.Context, skuID string, since time.Time) ([]domain.DailySale, error)
	LastSaleDate(ctx context.Context) (time.Time, error)
}
