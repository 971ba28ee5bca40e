package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"clinova/internal/core/id"
	"clinova/internal/domain"
	"clinova/internal/domain/catalogs/item"
	"clinova/internal/domain/filter"
	"clinova/internal/infrastructure/storage/postgres"
)

const itemTable = "cat_items"

// ItemRepo implements item.Repository.
type ItemRepo struct {
	*BaseCatalogRepo[*item.Item]
}

// NewItemRepo creates a new item repository.
func NewItemRepo() *ItemRepo {
	return &ItemRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*item.Item](
			itemTable,
			postgres.ExtractDBColumns[item.Item](),
			func() *item.Item { return &item.Item{} },
		),
	}
}

// FindByBarcode returns the item with the given barcode.
func (r *ItemRepo) FindByBarcode(ctx context.Context, barcode string) (*item.Item, error) {
	q := r.baseSelect(ctx).
		Where(squirrel.Eq{"barcode": barcode}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	return r.FindOne(ctx, q)
}

// ListByCategory returns items in one category.
func (r *ItemRepo) ListByCategory(ctx context.Context, categoryID id.ID, f domain.ListFilter) (domain.ListResult[*item.Item], error) {
	f.AdvancedFilters = append(f.AdvancedFilters, filter.Item{
		Field:    "category_id",
		Operator: filter.Equal,
		Value:    categoryID,
	})
	return r.List(ctx, f)
}
