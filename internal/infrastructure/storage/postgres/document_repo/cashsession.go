package document_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"clinova/internal/core/apperror"
	"clinova/internal/core/id"
	"clinova/internal/core/types"
	"clinova/internal/domain"
	"clinova/internal/domain/documents/cashsession"
	"clinova/internal/infrastructure/storage/postgres"
)

const cashSessionsTable = "doc_cash_sessions"

// CashSessionRepo implements cashsession.Repository.
type CashSessionRepo struct {
	*BaseDocumentRepo[*cashsession.CashSession]
}

// NewCashSessionRepo creates a new cash session repository.
func NewCashSessionRepo() *CashSessionRepo {
	return &CashSessionRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[*cashsession.CashSession](
			cashSessionsTable,
			postgres.ExtractDBColumns[cashsession.CashSession](),
			func() *cashsession.CashSession { return &cashsession.CashSession{} },
		),
	}
}

// FindOpenByClinic returns the clinic's open session, if any.
func (r *CashSessionRepo) FindOpenByClinic(ctx context.Context, clinicID id.ID) (*cashsession.CashSession, error) {
	doc := &cashsession.CashSession{}

	q := r.baseSelect(ctx).
		Where(squirrel.Eq{"clinic_id": clinicID}).
		Where(squirrel.Eq{"closed_at": nil}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, doc, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(cashSessionsTable, clinicID.String())
		}
		return nil, fmt.Errorf("find open by clinic: %w", err)
	}

	return doc, nil
}

// SumCashCollected totals cash-method takings at the clinic between from and
// to: cash splits on closed tickets plus confirmed cash payments. Only
// methods of kind "cash" reach the drawer.
func (r *CashSessionRepo) SumCashCollected(ctx context.Context, clinicID id.ID, from, to time.Time) (types.Money, error) {
	sql := `
		SELECT COALESCE(SUM(amount), 0) FROM (
			SELECT tp.amount
			FROM doc_ticket_payments tp
			JOIN doc_tickets t ON t.id = tp.document_id
			JOIN cat_payment_methods pm ON pm.id = tp.method_id
			WHERE t.clinic_id = $1
			  AND t.posted = true
			  AND t.deletion_mark = false
			  AND t.closed_at >= $2 AND t.closed_at < $3
			  AND pm.kind = 'cash'

			UNION ALL

			SELECT p.amount
			FROM doc_payments p
			JOIN cat_payment_methods pm ON pm.id = p.method_id
			WHERE p.clinic_id = $1
			  AND p.posted = true
			  AND p.deletion_mark = false
			  AND p.paid_at >= $2 AND p.paid_at < $3
			  AND pm.kind = 'cash'
		) takings
	`

	var total types.Money
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, clinicID, from, to).Scan(&total); err != nil {
		return types.Zero(), fmt.Errorf("sum cash collected: %w", err)
	}

	return total, nil
}

// List retrieves cash sessions with filtering.
func (r *CashSessionRepo) List(ctx context.Context, filter cashsession.ListFilter) (domain.ListResult[*cashsession.CashSession], error) {
	result := domain.ListResult[*cashsession.CashSession]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect(ctx)

	if !filter.IncludeDeleted {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}

	if filter.ClinicID != nil {
		q = q.Where(squirrel.Eq{"clinic_id": *filter.ClinicID})
	}

	if filter.Open != nil {
		if *filter.Open {
			q = q.Where(squirrel.Eq{"closed_at": nil})
		} else {
			q = q.Where(squirrel.NotEq{"closed_at": nil})
		}
	}

	if filter.Posted != nil {
		q = q.Where(squirrel.Eq{"posted": *filter.Posted})
	}

	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"opened_at": *filter.DateFrom})
	}

	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"opened_at": *filter.DateTo})
	}

	if filter.Search != "" {
		q = q.Where(squirrel.ILike{"number": "%" + filter.Search + "%"})
	}

	countQ := r.Builder().Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	orderBy, err := r.parseOrderBy(filter.OrderBy)
	if err != nil {
		return result, err
	}
	q = q.OrderBy(orderBy)

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("select: %w", err)
	}

	return result, nil
}
