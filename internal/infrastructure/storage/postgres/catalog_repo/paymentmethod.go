package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"clinova/internal/domain/catalogs/paymentmethod"
	"clinova/internal/infrastructure/storage/postgres"
)

const paymentMethodTable = "cat_payment_methods"

// PaymentMethodRepo implements paymentmethod.Repository.
type PaymentMethodRepo struct {
	*BaseCatalogRepo[*paymentmethod.PaymentMethod]
}

// NewPaymentMethodRepo creates a new payment method repository.
func NewPaymentMethodRepo() *PaymentMethodRepo {
	return &PaymentMethodRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*paymentmethod.PaymentMethod](
			paymentMethodTable,
			postgres.ExtractDBColumns[paymentmethod.PaymentMethod](),
			func() *paymentmethod.PaymentMethod { return &paymentmethod.PaymentMethod{} },
		),
	}
}

// ListActive returns all active payment methods.
func (r *PaymentMethodRepo) ListActive(ctx context.Context) ([]*paymentmethod.PaymentMethod, error) {
	q := r.baseSelect(ctx).
		Where(squirrel.Eq{"is_active": true}).
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("name ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*paymentmethod.PaymentMethod
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list active: %w", err)
	}

	return items, nil
}
