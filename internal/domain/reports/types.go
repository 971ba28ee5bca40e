// Package reports provides report generation services over the ledger and
// the debt register.
package reports

import (
	"time"

	"clinova/internal/core/id"
	"clinova/internal/core/types"
	"clinova/internal/domain/ledger"
)

// --- Trial Balance ---

// TrialBalanceFilter defines the scope of a trial balance.
type TrialBalanceFilter struct {
	// LegalEntityID is required: the chart of accounts is per legal entity
	LegalEntityID id.ID

	// Period (required)
	FromDate time.Time
	ToDate   time.Time

	// ClinicID narrows to one clinic's entries
	ClinicID *id.ID

	// Exclude accounts with no movement and zero balances
	ExcludeZero bool
}

// TrialBalanceRow is one account's totals.
type TrialBalanceRow struct {
	AccountID     id.ID              `json:"accountId" db:"account_id"`
	AccountNumber string             `json:"accountNumber" db:"account_number"`
	AccountName   string             `json:"accountName" db:"account_name"`
	AccountType   ledger.AccountType `json:"accountType" db:"account_type"`

	OpeningBalance types.Money `json:"openingBalance" db:"opening_balance"`
	Debit          types.Money `json:"debit" db:"debit"`
	Credit         types.Money `json:"credit" db:"credit"`
	ClosingBalance types.Money `json:"closingBalance" db:"closing_balance"`
}

// TrialBalance is the full report. Total debits equal total credits when the
// journal is consistent; the totals are returned so callers can verify.
type TrialBalance struct {
	LegalEntityID id.ID     `json:"legalEntityId"`
	FromDate      time.Time `json:"fromDate"`
	ToDate        time.Time `json:"toDate"`

	Rows []TrialBalanceRow `json:"rows"`

	TotalDebit  types.Money `json:"totalDebit"`
	TotalCredit types.Money `json:"totalCredit"`
}

// --- Journal Listing ---

// JournalFilter narrows the journal listing.
type JournalFilter struct {
	LegalEntityID *id.ID
	ClinicID      *id.ID
	SourceType    *ledger.SourceType
	AccountID     *id.ID

	FromDate *time.Time
	ToDate   *time.Time

	// WithLines loads lines for each entry
	WithLines bool

	Limit  int
	Offset int
}

// Journal is a page of journal entries.
type Journal struct {
	Items      []*ledger.Entry `json:"items"`
	TotalCount int             `json:"totalCount"`
	Limit      int             `json:"limit"`
	Offset     int             `json:"offset"`
}

// --- Debtors Report ---

// DebtorsFilter defines the scope of the debtors report.
type DebtorsFilter struct {
	ClinicID *id.ID

	// AsOfDate - report date (defaults to now)
	AsOfDate *time.Time

	// MinAmount hides debts below the threshold
	MinAmount *types.Money

	Limit  int
	Offset int
}

// DebtorRow is one client's outstanding debt with aging buckets.
type DebtorRow struct {
	ClinicID   id.ID  `json:"clinicId" db:"clinic_id"`
	ClientID   id.ID  `json:"clientId" db:"client_id"`
	ClientName string `json:"clientName" db:"client_name"`

	Total types.Money `json:"total" db:"total"`

	// Aging buckets by days since the debt was accrued
	Current    types.Money `json:"current" db:"current"`        // 0-29 days
	Days30     types.Money `json:"days30" db:"days_30"`         // 30-59 days
	Days60     types.Money `json:"days60" db:"days_60"`         // 60-89 days
	Days90Plus types.Money `json:"days90Plus" db:"days_90_plus"` // 90+ days

	LastMovementAt time.Time `json:"lastMovementAt" db:"last_movement_at"`
}

// DebtorsReport is the full debtors report.
type DebtorsReport struct {
	AsOfDate   time.Time   `json:"asOfDate"`
	Rows       []DebtorRow `json:"rows"`
	TotalCount int         `json:"totalCount"`

	TotalOutstanding types.Money `json:"totalOutstanding"`
}

// --- Sales Summary ---

// SalesSummaryFilter defines the scope of the sales summary.
type SalesSummaryFilter struct {
	ClinicID *id.ID

	// Period (required)
	FromDate time.Time
	ToDate   time.Time
}

// SalesSummaryRow aggregates one day's takings at one clinic.
type SalesSummaryRow struct {
	ClinicID id.ID     `json:"clinicId" db:"clinic_id"`
	Day      time.Time `json:"day" db:"day"`

	TicketCount   int         `json:"ticketCount" db:"ticket_count"`
	TotalGross    types.Money `json:"totalGross" db:"total_gross"`
	TotalDiscount types.Money `json:"totalDiscount" db:"total_discount"`
	TotalTax      types.Money `json:"totalTax" db:"total_tax"`
	Total         types.Money `json:"total" db:"total"`
}

// SalesSummary is the full sales summary.
type SalesSummary struct {
	FromDate time.Time         `json:"fromDate"`
	ToDate   time.Time         `json:"toDate"`
	Rows     []SalesSummaryRow `json:"rows"`

	GrandTotal types.Money `json:"grandTotal"`
}
