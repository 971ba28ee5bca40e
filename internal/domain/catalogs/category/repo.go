package category

import (
	"context"

	"clinova/internal/domain"
)

// Repository defines the interface for Category persistence.
type Repository interface {
	domain.CatalogRepository[*Category]

	// ListByKind retrieves categories of one kind with filtering.
	ListByKind(ctx context.Context, kind Kind, filter domain.ListFilter) (domain.ListResult[*Category], error)
}
