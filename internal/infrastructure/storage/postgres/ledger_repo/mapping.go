package ledger_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"clinova/internal/core/apperror"
	"clinova/internal/core/id"
	"clinova/internal/domain/ledger"
	"clinova/internal/infrastructure/storage/postgres"
)

const mappingsTable = "ledger_mappings"

var mappingCols = postgres.ExtractDBColumns[ledger.Mapping]()

// MappingRepo implements ledger.MappingRepository.
type MappingRepo struct{}

// NewMappingRepo creates a new mapping repository.
func NewMappingRepo() *MappingRepo {
	return &MappingRepo{}
}

func (r *MappingRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Create persists a mapping.
func (r *MappingRepo) Create(ctx context.Context, m *ledger.Mapping) error {
	data := postgres.StructToMap(m)

	filtered := make(map[string]any, len(mappingCols))
	for _, col := range mappingCols {
		if val, ok := data[col]; ok {
			filtered[col] = val
		}
	}

	sql, args, err := r.builder().
		Insert(mappingsTable).
		SetMap(filtered).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := postgres.MustGetTxManager(ctx).GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert mapping: %w", err)
	}

	return nil
}

// Update modifies a mapping with optimistic locking.
func (r *MappingRepo) Update(ctx context.Context, m *ledger.Mapping) error {
	data := postgres.StructToMap(m)

	filtered := make(map[string]any, len(mappingCols))
	for _, col := range mappingCols {
		if col == "id" || col == "version" || col == "created_at" {
			continue
		}
		if val, ok := data[col]; ok {
			filtered[col] = val
		}
	}

	sql, args, err := r.builder().
		Update(mappingsTable).
		SetMap(filtered).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": m.ID}).
		Where(squirrel.Eq{"version": m.Version}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := postgres.MustGetTxManager(ctx).GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update mapping: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification(mappingsTable, m.ID)
	}

	return nil
}

// GetByID loads a mapping.
func (r *MappingRepo) GetByID(ctx context.Context, mappingID id.ID) (*ledger.Mapping, error) {
	sql, args, err := r.builder().
		Select(mappingCols...).
		From(mappingsTable).
		Where(squirrel.Eq{"id": mappingID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	m := &ledger.Mapping{}
	querier := postgres.MustGetTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, m, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(mappingsTable, mappingID.String())
		}
		return nil, fmt.Errorf("get mapping: %w", err)
	}

	return m, nil
}

// Resolve finds the active mapping for (concept, referenceKey) within a legal
// entity. A clinic-scoped row sorts before the entity-wide one, so LIMIT 1
// returns the override when both exist.
func (r *MappingRepo) Resolve(ctx context.Context, concept ledger.Concept, referenceKey string, legalEntityID id.ID, clinicID *id.ID) (*ledger.Mapping, error) {
	q := r.builder().
		Select(mappingCols...).
		From(mappingsTable).
		Where(squirrel.Eq{"concept": concept}).
		Where(squirrel.Eq{"reference_key": referenceKey}).
		Where(squirrel.Eq{"legal_entity_id": legalEntityID}).
		Where(squirrel.Eq{"active": true})

	if clinicID != nil {
		q = q.Where(squirrel.Or{
			squirrel.Eq{"clinic_id": *clinicID},
			squirrel.Eq{"clinic_id": nil},
		}).OrderBy("clinic_id NULLS LAST")
	} else {
		q = q.Where(squirrel.Eq{"clinic_id": nil})
	}

	sql, args, err := q.Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	m := &ledger.Mapping{}
	querier := postgres.MustGetTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, m, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(mappingsTable, string(concept)+"/"+referenceKey)
		}
		return nil, fmt.Errorf("resolve mapping: %w", err)
	}

	return m, nil
}

// ListByLegalEntity returns all mappings of a legal entity.
func (r *MappingRepo) ListByLegalEntity(ctx context.Context, legalEntityID id.ID) ([]*ledger.Mapping, error) {
	sql, args, err := r.builder().
		Select(mappingCols...).
		From(mappingsTable).
		Where(squirrel.Eq{"legal_entity_id": legalEntityID}).
		OrderBy("concept", "reference_key").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*ledger.Mapping
	querier := postgres.MustGetTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list mappings: %w", err)
	}

	return items, nil
}

// Deactivate retires a mapping without deleting it.
func (r *MappingRepo) Deactivate(ctx context.Context, mappingID id.ID) error {
	sql, args, err := r.builder().
		Update(mappingsTable).
		Set("active", false).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": mappingID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := postgres.MustGetTxManager(ctx).GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("deactivate mapping: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(mappingsTable, mappingID.String())
	}

	return nil
}
