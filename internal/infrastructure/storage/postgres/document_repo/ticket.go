package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"clinova/internal/core/id"
	"clinova/internal/domain"
	"clinova/internal/domain/documents/ticket"
	"clinova/internal/infrastructure/storage/postgres"
)

const (
	ticketsTable        = "doc_tickets"
	ticketLinesTable    = "doc_ticket_lines"
	ticketPaymentsTable = "doc_ticket_payments"
)

// TicketRepo implements ticket.Repository.
type TicketRepo struct {
	*BaseDocumentRepo[*ticket.Ticket]
}

// NewTicketRepo creates a new ticket repository.
func NewTicketRepo() *TicketRepo {
	return &TicketRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[*ticket.Ticket](
			ticketsTable,
			postgres.ExtractDBColumns[ticket.Ticket](),
			func() *ticket.Ticket { return &ticket.Ticket{} },
		),
	}
}

// GetLines retrieves lines for a ticket.
func (r *TicketRepo) GetLines(ctx context.Context, docID id.ID) ([]ticket.Line, error) {
	q := r.Builder().
		Select(
			"line_id", "line_no", "item_id", "category_id", "vat_type_id",
			"description", "quantity", "unit_price", "vat_rate",
			"discount_type", "discount_amount", "amount",
		).
		From(ticketLinesTable).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []ticket.Line
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}

	return lines, nil
}

// SaveLines saves lines for a ticket (delete existing + insert new).
func (r *TicketRepo) SaveLines(ctx context.Context, docID id.ID, lines []ticket.Line) error {
	querier := r.getTxManager(ctx).GetQuerier(ctx)

	deleteSQL := "DELETE FROM " + ticketLinesTable + " WHERE document_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, docID); err != nil {
		return fmt.Errorf("delete existing lines: %w", err)
	}

	if len(lines) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(ticketLinesTable).
		Columns(
			"line_id", "document_id", "line_no", "item_id", "category_id", "vat_type_id",
			"description", "quantity", "unit_price", "vat_rate",
			"discount_type", "discount_amount", "amount",
		)

	for _, line := range lines {
		q = q.Values(
			line.LineID, docID, line.LineNo, line.ItemID, line.CategoryID, line.VATTypeID,
			line.Description, line.Quantity, line.UnitPrice, line.VATRate,
			line.DiscountType, line.DiscountAmount, line.Amount,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert lines: %w", err)
	}

	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert lines: %w", err)
	}

	return nil
}

// GetPayments retrieves settlement splits for a ticket.
func (r *TicketRepo) GetPayments(ctx context.Context, docID id.ID) ([]ticket.Payment, error) {
	q := r.Builder().
		Select("payment_id", "line_no", "method_id", "amount").
		From(ticketPaymentsTable).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var payments []ticket.Payment
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &payments, sql, args...); err != nil {
		return nil, fmt.Errorf("get payments: %w", err)
	}

	return payments, nil
}

// SavePayments saves settlement splits (delete existing + insert new).
func (r *TicketRepo) SavePayments(ctx context.Context, docID id.ID, payments []ticket.Payment) error {
	querier := r.getTxManager(ctx).GetQuerier(ctx)

	deleteSQL := "DELETE FROM " + ticketPaymentsTable + " WHERE document_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, docID); err != nil {
		return fmt.Errorf("delete existing payments: %w", err)
	}

	if len(payments) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(ticketPaymentsTable).
		Columns("payment_id", "document_id", "line_no", "method_id", "amount")

	for _, p := range payments {
		q = q.Values(p.PaymentID, docID, p.LineNo, p.MethodID, p.Amount)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert payments: %w", err)
	}

	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert payments: %w", err)
	}

	return nil
}

// List retrieves tickets with filtering.
func (r *TicketRepo) List(ctx context.Context, filter ticket.ListFilter) (domain.ListResult[*ticket.Ticket], error) {
	result := domain.ListResult[*ticket.Ticket]{
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

	if filter.ClientID != nil {
		q = q.Where(squirrel.Eq{"client_id": *filter.ClientID})
	}

	if filter.Posted != nil {
		q = q.Where(squirrel.Eq{"posted": *filter.Posted})
	}

	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.DateFrom})
	}

	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"date": *filter.DateTo})
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
