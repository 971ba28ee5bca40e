package item

import (
	"context"

	"clinova/internal/core/id"
	"clinova/internal/domain"
)

// Repository defines the interface for Item persistence.
type Repository interface {
	domain.CatalogRepository[*Item]

	// FindByBarcode retrieves item by barcode.
	FindByBarcode(ctx context.Context, barcode string) (*Item, error)

	// ListByCategory retrieves items of a category with filtering.
	ListByCategory(ctx context.Context, categoryID id.ID, filter domain.ListFilter) (domain.ListResult[*Item], error)

	// GetForUpdate retrieves item with row lock.
	GetForUpdate(ctx context.Context, id id.ID) (*Item, error)
}
