// internal/repository/item_repository.go
package repository

import (
	"context"

	"github.com/Sohamiota/Target-JIT-org/internal/domain"
)

type ItemRepository interface {
	UpsertItems(ctx context.Context, items []domain.CatalogItem) error
	GetItems(ctx context.Context, filter *domain.ItemFilter) (*domain.ItemsPage, error)
	// GetAllItems returns every matching row without pagination; a nil
	// filter returns the whole catalog.
	GetAllItems(ctx context.Context, filter *domain.ItemFilter) ([]domain.CatalogItem, error)
	GetItem(ctx context.Context, skuID string) (*domain.CatalogItem, error)
	CountItems(ctx context.Context) (int, error)
}
