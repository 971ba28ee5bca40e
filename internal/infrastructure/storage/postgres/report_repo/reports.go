// Package report_repo provides PostgreSQL implementations for report queries.
// Reports are read-only aggregations; everything runs on the tenant pool
// obtained from context.
package report_repo

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"

	"clinova/internal/core/types"
	"clinova/internal/domain/ledger"
	"clinova/internal/domain/reports"
	"clinova/internal/infrastructure/storage/postgres"
)

// ReportRepo implements reports.Repository.
type ReportRepo struct {
	entries ledger.EntryRepository
}

// NewReportRepo creates a new report repository.
func NewReportRepo(entries ledger.EntryRepository) *ReportRepo {
	return &ReportRepo{entries: entries}
}

// GetTrialBalance aggregates journal lines per account for the period.
// Opening balance folds in everything before FromDate as debit minus credit.
func (r *ReportRepo) GetTrialBalance(ctx context.Context, filter reports.TrialBalanceFilter) (*reports.TrialBalance, error) {
	report := &reports.TrialBalance{
		LegalEntityID: filter.LegalEntityID,
		FromDate:      filter.FromDate,
		ToDate:        filter.ToDate,
		TotalDebit:    types.Zero(),
		TotalCredit:   types.Zero(),
	}

	args := []any{filter.LegalEntityID, filter.FromDate, filter.ToDate}
	clinicCond := ""
	if filter.ClinicID != nil {
		clinicCond = " AND e.clinic_id = $4"
		args = append(args, *filter.ClinicID)
	}

	sql := fmt.Sprintf(`
		WITH period AS (
			SELECT l.account_id,
			       COALESCE(SUM(l.debit), 0)  AS debit,
			       COALESCE(SUM(l.credit), 0) AS credit
			FROM ledger_entry_lines l
			JOIN ledger_entries e ON e.id = l.entry_id
			WHERE e.legal_entity_id = $1
			  AND e.date >= $2 AND e.date < $3%s
			GROUP BY l.account_id
		),
		opening AS (
			SELECT l.account_id,
			       COALESCE(SUM(l.debit - l.credit), 0) AS net
			FROM ledger_entry_lines l
			JOIN ledger_entries e ON e.id = l.entry_id
			WHERE e.legal_entity_id = $1
			  AND e.date < $2%s
			GROUP BY l.account_id
		)
		SELECT a.id            AS account_id,
		       a.code          AS account_number,
		       a.name          AS account_name,
		       a.type          AS account_type,
		       COALESCE(o.net, 0)      AS opening_balance,
		       COALESCE(p.debit, 0)    AS debit,
		       COALESCE(p.credit, 0)   AS credit,
		       COALESCE(o.net, 0) + COALESCE(p.debit, 0) - COALESCE(p.credit, 0) AS closing_balance
		FROM ledger_accounts a
		LEFT JOIN period p  ON p.account_id = a.id
		LEFT JOIN opening o ON o.account_id = a.id
		WHERE a.legal_entity_id = $1
		  AND a.deletion_mark = false
		ORDER BY a.code
	`, clinicCond, clinicCond)

	querier := postgres.MustGetTxManager(ctx).GetQuerier(ctx)
	var rows []reports.TrialBalanceRow
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("trial balance: %w", err)
	}

	for _, row := range rows {
		if filter.ExcludeZero &&
			row.OpeningBalance.IsZero() && row.Debit.IsZero() &&
			row.Credit.IsZero() && row.ClosingBalance.IsZero() {
			continue
		}
		report.Rows = append(report.Rows, row)
		report.TotalDebit = report.TotalDebit.Add(row.Debit)
		report.TotalCredit = report.TotalCredit.Add(row.Credit)
	}

	return report, nil
}

// GetJournal returns the journal listing, optionally with lines.
func (r *ReportRepo) GetJournal(ctx context.Context, filter reports.JournalFilter) (*reports.Journal, error) {
	result, err := r.entries.List(ctx, ledger.EntryFilter{
		LegalEntityID: filter.LegalEntityID,
		ClinicID:      filter.ClinicID,
		SourceType:    filter.SourceType,
		AccountID:     filter.AccountID,
		DateFrom:      filter.FromDate,
		DateTo:        filter.ToDate,
		Limit:         filter.Limit,
		Offset:        filter.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	if filter.WithLines {
		for i, e := range result.Items {
			full, err := r.entries.GetByID(ctx, e.ID)
			if err != nil {
				return nil, fmt.Errorf("load entry lines: %w", err)
			}
			result.Items[i] = full
		}
	}

	return &reports.Journal{
		Items:      result.Items,
		TotalCount: int(result.TotalCount),
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}, nil
}

// GetDebtorsReport builds the outstanding debts report with aging buckets.
// Each bucket sums the accruals of its age band; collections net against the
// total only, which keeps the query one pass over the movements.
func (r *ReportRepo) GetDebtorsReport(ctx context.Context, filter reports.DebtorsFilter) (*reports.DebtorsReport, error) {
	report := &reports.DebtorsReport{
		AsOfDate:         *filter.AsOfDate,
		TotalOutstanding: types.Zero(),
	}

	args := []any{*filter.AsOfDate}
	conds := "m.period <= $1"
	argIndex := 2

	if filter.ClinicID != nil {
		conds += fmt.Sprintf(" AND m.clinic_id = $%d", argIndex)
		args = append(args, *filter.ClinicID)
		argIndex++
	}

	minCond := ""
	if filter.MinAmount != nil {
		minCond = fmt.Sprintf(" HAVING SUM(CASE WHEN m.record_type = 'receipt' THEN m.amount ELSE -m.amount END) >= $%d", argIndex)
		args = append(args, *filter.MinAmount)
		argIndex++
	}

	limitOffset := fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, filter.Limit, filter.Offset)

	sql := fmt.Sprintf(`
		SELECT m.clinic_id,
		       m.client_id,
		       c.name AS client_name,
		       SUM(CASE WHEN m.record_type = 'receipt' THEN m.amount ELSE -m.amount END) AS total,
		       SUM(CASE WHEN m.record_type = 'receipt' AND m.period > $1 - INTERVAL '30 days'
		                THEN m.amount ELSE 0 END) AS current,
		       SUM(CASE WHEN m.record_type = 'receipt'
		                 AND m.period <= $1 - INTERVAL '30 days'
		                 AND m.period >  $1 - INTERVAL '60 days'
		                THEN m.amount ELSE 0 END) AS days_30,
		       SUM(CASE WHEN m.record_type = 'receipt'
		                 AND m.period <= $1 - INTERVAL '60 days'
		                 AND m.period >  $1 - INTERVAL '90 days'
		                THEN m.amount ELSE 0 END) AS days_60,
		       SUM(CASE WHEN m.record_type = 'receipt' AND m.period <= $1 - INTERVAL '90 days'
		                THEN m.amount ELSE 0 END) AS days_90_plus,
		       MAX(m.period) AS last_movement_at
		FROM reg_debt_movements m
		JOIN cat_clients c ON c.id = m.client_id
		WHERE %s
		GROUP BY m.clinic_id, m.client_id, c.name
		%s
		ORDER BY total DESC
		%s
	`, conds, minCond, limitOffset)

	querier := postgres.MustGetTxManager(ctx).GetQuerier(ctx)
	var rows []reports.DebtorRow
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("debtors report: %w", err)
	}

	for _, row := range rows {
		if !row.Total.IsPositive() {
			continue
		}
		report.Rows = append(report.Rows, row)
		report.TotalOutstanding = report.TotalOutstanding.Add(row.Total)
	}
	report.TotalCount = len(report.Rows)

	return report, nil
}

// GetSalesSummary aggregates closed tickets per clinic per day.
func (r *ReportRepo) GetSalesSummary(ctx context.Context, filter reports.SalesSummaryFilter) (*reports.SalesSummary, error) {
	report := &reports.SalesSummary{
		FromDate:   filter.FromDate,
		ToDate:     filter.ToDate,
		GrandTotal: types.Zero(),
	}

	args := []any{filter.FromDate, filter.ToDate}
	conds := "t.posted = true AND t.deletion_mark = false AND t.closed_at >= $1 AND t.closed_at < $2"

	if filter.ClinicID != nil {
		conds += " AND t.clinic_id = $3"
		args = append(args, *filter.ClinicID)
	}

	sql := fmt.Sprintf(`
		SELECT t.clinic_id,
		       date_trunc('day', t.closed_at) AS day,
		       COUNT(*)                       AS ticket_count,
		       COALESCE(SUM(t.total_gross), 0)    AS total_gross,
		       COALESCE(SUM(t.total_discount), 0) AS total_discount,
		       COALESCE(SUM(t.total_tax), 0)      AS total_tax,
		       COALESCE(SUM(t.total), 0)          AS total
		FROM doc_tickets t
		WHERE %s
		GROUP BY t.clinic_id, date_trunc('day', t.closed_at)
		ORDER BY day, t.clinic_id
	`, conds)

	querier := postgres.MustGetTxManager(ctx).GetQuerier(ctx)
	var rows []reports.SalesSummaryRow
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("sales summary: %w", err)
	}

	report.Rows = rows
	for _, row := range rows {
		report.GrandTotal = report.GrandTotal.Add(row.Total)
	}

	return report, nil
}

// Ensure interface compliance.
var _ reports.Repository = (*ReportRepo)(nil)
