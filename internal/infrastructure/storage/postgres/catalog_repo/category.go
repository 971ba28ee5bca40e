package catalog_repo

import (
	"context"

	"clinova/internal/domain"
	"clinova/internal/domain/catalogs/category"
	"clinova/internal/domain/filter"
	"clinova/internal/infrastructure/storage/postgres"
)

const categoryTable = "cat_categories"

// CategoryRepo implements category.Repository.
type CategoryRepo struct {
	*BaseCatalogRepo[*category.Category]
}

// NewCategoryRepo creates a new category repository.
func NewCategoryRepo() *CategoryRepo {
	return &CategoryRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*category.Category](
			categoryTable,
			postgres.ExtractDBColumns[category.Category](),
			func() *category.Category { return &category.Category{} },
		),
	}
}

// ListByKind returns categories of one kind (revenue or expense).
func (r *CategoryRepo) ListByKind(ctx context.Context, kind category.Kind, f domain.ListFilter) (domain.ListResult[*category.Category], error) {
	f.AdvancedFilters = append(f.AdvancedFilters, filter.Item{
		Field:    "kind",
		Operator: filter.Equal,
		Value:    string(kind),
	})
	return r.List(ctx, f)
}
