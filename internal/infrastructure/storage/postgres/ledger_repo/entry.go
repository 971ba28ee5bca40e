package ledger_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"clinova/internal/core/apperror"
	"clinova/internal/core/id"
	"clinova/internal/domain"
	"clinova/internal/domain/ledger"
	"clinova/internal/infrastructure/storage/postgres"
)

const (
	entriesTable    = "ledger_entries"
	entryLinesTable = "ledger_entry_lines"
)

var entryCols = postgres.ExtractDBColumns[ledger.Entry]()

// EntryRepo implements ledger.EntryRepository.
// Entries are immutable: regeneration deletes and re-creates inside one
// transaction, so the repo never updates rows in place.
type EntryRepo struct{}

// NewEntryRepo creates a new entry repository.
func NewEntryRepo() *EntryRepo {
	return &EntryRepo{}
}

func (r *EntryRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Create persists the entry and all its lines.
func (r *EntryRepo) Create(ctx context.Context, e *ledger.Entry) error {
	data := postgres.StructToMap(e)

	filtered := make(map[string]any, len(entryCols))
	for _, col := range entryCols {
		if val, ok := data[col]; ok {
			filtered[col] = val
		}
	}

	sql, args, err := r.builder().
		Insert(entriesTable).
		SetMap(filtered).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert entry: %w", err)
	}

	querier := postgres.MustGetTxManager(ctx).GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}

	if len(e.Lines) == 0 {
		return nil
	}

	q := r.builder().
		Insert(entryLinesTable).
		Columns("id", "entry_id", "line_no", "account_id", "debit", "credit", "description")

	for _, line := range e.Lines {
		q = q.Values(line.ID, e.ID, line.LineNo, line.AccountID, line.Debit, line.Credit, line.Description)
	}

	sql, args, err = q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert lines: %w", err)
	}

	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert entry lines: %w", err)
	}

	return nil
}

// GetByID loads an entry with its lines.
func (r *EntryRepo) GetByID(ctx context.Context, entryID id.ID) (*ledger.Entry, error) {
	sql, args, err := r.builder().
		Select(entryCols...).
		From(entriesTable).
		Where(squirrel.Eq{"id": entryID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	e := &ledger.Entry{}
	querier := postgres.MustGetTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, e, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(entriesTable, entryID.String())
		}
		return nil, fmt.Errorf("get entry: %w", err)
	}

	if err := r.loadLines(ctx, e); err != nil {
		return nil, err
	}

	return e, nil
}

// GetBySource loads the entry derived from a source document, with lines.
func (r *EntryRepo) GetBySource(ctx context.Context, sourceType ledger.SourceType, sourceID id.ID) (*ledger.Entry, error) {
	sql, args, err := r.builder().
		Select(entryCols...).
		From(entriesTable).
		Where(squirrel.Eq{"source_type": sourceType}).
		Where(squirrel.Eq{"source_id": sourceID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	e := &ledger.Entry{}
	querier := postgres.MustGetTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, e, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(entriesTable, sourceID.String())
		}
		return nil, fmt.Errorf("get entry by source: %w", err)
	}

	if err := r.loadLines(ctx, e); err != nil {
		return nil, err
	}

	return e, nil
}

func (r *EntryRepo) loadLines(ctx context.Context, e *ledger.Entry) error {
	sql, args, err := r.builder().
		Select("id", "entry_id", "line_no", "account_id", "debit", "credit", "description").
		From(entryLinesTable).
		Where(squirrel.Eq{"entry_id": e.ID}).
		OrderBy("line_no").
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	querier := postgres.MustGetTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &e.Lines, sql, args...); err != nil {
		return fmt.Errorf("load entry lines: %w", err)
	}

	return nil
}

// Delete removes an entry and its lines. The lines table cascades on the
// entry foreign key; the explicit delete keeps the behavior visible.
func (r *EntryRepo) Delete(ctx context.Context, entryID id.ID) error {
	querier := postgres.MustGetTxManager(ctx).GetQuerier(ctx)

	if _, err := querier.Exec(ctx, "DELETE FROM "+entryLinesTable+" WHERE entry_id = $1", entryID); err != nil {
		return fmt.Errorf("delete entry lines: %w", err)
	}

	result, err := querier.Exec(ctx, "DELETE FROM "+entriesTable+" WHERE id = $1", entryID)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(entriesTable, entryID.String())
	}

	return nil
}

// List returns entries (without lines) matching the filter.
func (r *EntryRepo) List(ctx context.Context, f ledger.EntryFilter) (domain.ListResult[*ledger.Entry], error) {
	result := domain.ListResult[*ledger.Entry]{
		Limit:  f.Limit,
		Offset: f.Offset,
	}

	q := r.builder().
		Select(entryCols...).
		From(entriesTable)

	if f.LegalEntityID != nil {
		q = q.Where(squirrel.Eq{"legal_entity_id": *f.LegalEntityID})
	}

	if f.ClinicID != nil {
		q = q.Where(squirrel.Eq{"clinic_id": *f.ClinicID})
	}

	if f.SourceType != nil {
		q = q.Where(squirrel.Eq{"source_type": *f.SourceType})
	}

	if f.AccountID != nil {
		q = q.Where(squirrel.Expr(
			"id IN (SELECT entry_id FROM "+entryLinesTable+" WHERE account_id = ?)",
			*f.AccountID,
		))
	}

	if f.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"date": *f.DateFrom})
	}

	if f.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"date": *f.DateTo})
	}

	countQ := r.builder().Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}

	querier := postgres.MustGetTxManager(ctx).GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	q = q.OrderBy("date DESC", "sequence DESC")

	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list entries: %w", err)
	}

	return result, nil
}
