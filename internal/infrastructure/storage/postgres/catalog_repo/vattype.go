package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"clinova/internal/domain/catalogs/vattype"
	"clinova/internal/infrastructure/storage/postgres"
)

const vatTypeTable = "cat_vat_types"

// VATTypeRepo implements vattype.Repository.
type VATTypeRepo struct {
	*BaseCatalogRepo[*vattype.VATType]
}

// NewVATTypeRepo creates a new VAT type repository.
func NewVATTypeRepo() *VATTypeRepo {
	return &VATTypeRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*vattype.VATType](
			vatTypeTable,
			postgres.ExtractDBColumns[vattype.VATType](),
			func() *vattype.VATType { return &vattype.VATType{} },
		),
	}
}

// GetDefault returns the default VAT type.
func (r *VATTypeRepo) GetDefault(ctx context.Context) (*vattype.VATType, error) {
	q := r.baseSelect(ctx).
		Where(squirrel.Eq{"is_default": true}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	return r.FindOne(ctx, q)
}

// ClearDefault clears the default flag on all VAT types.
func (r *VATTypeRepo) ClearDefault(ctx context.Context) error {
	q := r.Builder().
		Update(vatTypeTable).
		Set("is_default", false).
		Where(squirrel.Eq{"is_default": true})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("clear default: %w", err)
	}

	return nil
}
