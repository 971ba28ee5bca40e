package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"clinova/internal/domain/catalogs/legalentity"
	"clinova/internal/infrastructure/storage/postgres"
)

const legalEntityTable = "cat_legal_entities"

// LegalEntityRepo implements legalentity.Repository.
type LegalEntityRepo struct {
	*BaseCatalogRepo[*legalentity.LegalEntity]
}

// NewLegalEntityRepo creates a new legal entity repository.
func NewLegalEntityRepo() *LegalEntityRepo {
	return &LegalEntityRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*legalentity.LegalEntity](
			legalEntityTable,
			postgres.ExtractDBColumns[legalentity.LegalEntity](),
			func() *legalentity.LegalEntity { return &legalentity.LegalEntity{} },
		),
	}
}

// GetDefault returns the default legal entity.
func (r *LegalEntityRepo) GetDefault(ctx context.Context) (*legalentity.LegalEntity, error) {
	q := r.baseSelect(ctx).
		Where(squirrel.Eq{"is_default": true}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	return r.FindOne(ctx, q)
}

// FindByTaxID returns the legal entity with the given tax ID.
func (r *LegalEntityRepo) FindByTaxID(ctx context.Context, taxID string) (*legalentity.LegalEntity, error) {
	q := r.baseSelect(ctx).
		Where(squirrel.Eq{"tax_id": taxID}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	return r.FindOne(ctx, q)
}

// ClearDefault clears the default flag on all legal entities.
func (r *LegalEntityRepo) ClearDefault(ctx context.Context) error {
	q := r.Builder().
		Update(legalEntityTable).
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
