// Package ledger_repo provides PostgreSQL implementations for the accounting
// core: chart of accounts, concept mappings and journal entries.
package ledger_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"clinova/internal/core/id"
	"clinova/internal/domain/ledger"
	"clinova/internal/infrastructure/storage/postgres"
	"clinova/internal/infrastructure/storage/postgres/catalog_repo"
)

const accountsTable = "ledger_accounts"

// AccountRepo implements ledger.AccountRepository.
type AccountRepo struct {
	*catalog_repo.BaseCatalogRepo[*ledger.Account]
}

// NewAccountRepo creates a new account repository.
func NewAccountRepo() *AccountRepo {
	return &AccountRepo{
		BaseCatalogRepo: catalog_repo.NewBaseCatalogRepo[*ledger.Account](
			accountsTable,
			postgres.ExtractDBColumns[ledger.Account](),
			func() *ledger.Account { return &ledger.Account{} },
		),
	}
}

// GetByNumber finds an account by its number within a legal entity's chart.
func (r *AccountRepo) GetByNumber(ctx context.Context, legalEntityID id.ID, number string) (*ledger.Account, error) {
	q := r.Builder().
		Select(postgres.ExtractDBColumns[ledger.Account]()...).
		From(accountsTable).
		Where(squirrel.Eq{"legal_entity_id": legalEntityID}).
		Where(squirrel.Eq{"code": number}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	return r.FindOne(ctx, q)
}

// ListByLegalEntity returns the whole chart, ordered by account number.
func (r *AccountRepo) ListByLegalEntity(ctx context.Context, legalEntityID id.ID) ([]*ledger.Account, error) {
	q := r.Builder().
		Select(postgres.ExtractDBColumns[ledger.Account]()...).
		From(accountsTable).
		Where(squirrel.Eq{"legal_entity_id": legalEntityID}).
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("code ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*ledger.Account
	querier := postgres.MustGetTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list by legal entity: %w", err)
	}

	return items, nil
}
