package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"clinova/internal/core/id"
	"clinova/internal/domain/catalogs/clinic"
	"clinova/internal/infrastructure/storage/postgres"
)

const clinicTable = "cat_clinics"

// ClinicRepo implements clinic.Repository.
type ClinicRepo struct {
	*BaseCatalogRepo[*clinic.Clinic]
}

// NewClinicRepo creates a new clinic repository.
func NewClinicRepo() *ClinicRepo {
	return &ClinicRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*clinic.Clinic](
			clinicTable,
			postgres.ExtractDBColumns[clinic.Clinic](),
			func() *clinic.Clinic { return &clinic.Clinic{} },
		),
	}
}

// ListByLegalEntity returns all clinics owned by a legal entity.
func (r *ClinicRepo) ListByLegalEntity(ctx context.Context, legalEntityID id.ID) ([]*clinic.Clinic, error) {
	q := r.baseSelect(ctx).
		Where(squirrel.Eq{"legal_entity_id": legalEntityID}).
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("name ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*clinic.Clinic
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list by legal entity: %w", err)
	}

	return items, nil
}

// ClearDefault clears the default flag on all clinics.
func (r *ClinicRepo) ClearDefault(ctx context.Context) error {
	q := r.Builder().
		Update(clinicTable).
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
