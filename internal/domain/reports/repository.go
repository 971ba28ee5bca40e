package reports

import (
	"context"
)

// Repository defines report data access interface.
type Repository interface {
	// Ledger reports
	GetTrialBalance(ctx context.Context, filter TrialBalanceFilter) (*TrialBalance, error)
	GetJournal(ctx context.Context, filter JournalFilter) (*Journal, error)

	// Debt reports
	GetDebtorsReport(ctx context.Context, filter DebtorsFilter) (*DebtorsReport, error)

	// Sales reports
	GetSalesSummary(ctx context.Context, filter SalesSummaryFilter) (*SalesSummary, error)
}
