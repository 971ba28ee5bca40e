package ledger

import (
	"time"

	"clinova/internal/core/apperror"
	"clinova/internal/core/id"
	"clinova/internal/core/types"
)

// SourceType identifies the business event a journal entry was derived from.
type SourceType string

const (
	SourceTicket      SourceType = "ticket"
	SourceInvoice     SourceType = "invoice"
	SourcePayment     SourceType = "payment"
	SourceCashSession SourceType = "cash_session"
	SourceExpense     SourceType = "expense"
)

// BalanceTolerance is the accepted rounding drift between total debit and
// total credit. Per-line rounding to cents can legitimately diverge by less.
var BalanceTolerance = types.MustMoney("0.01")

// Entry is one immutable journal entry derived from a business event.
// EntryNumber is sequential per legal entity per year ("2026/000123").
// Exactly one entry exists per source document; regeneration replaces the
// whole entry, never patches lines.
type Entry struct {
	ID            id.ID       `db:"id" json:"id"`
	EntryNumber   string      `db:"entry_number" json:"entryNumber"`
	Sequence      int64       `db:"sequence" json:"sequence"`
	Date          time.Time   `db:"date" json:"date"`
	LegalEntityID id.ID       `db:"legal_entity_id" json:"legalEntityId"`
	ClinicID      id.ID       `db:"clinic_id" json:"clinicId"`
	SourceType    SourceType  `db:"source_type" json:"sourceType"`
	SourceID      id.ID       `db:"source_id" json:"sourceId"`
	Description   string      `db:"description" json:"description"`
	TotalDebit    types.Money `db:"total_debit" json:"totalDebit"`
	TotalCredit   types.Money `db:"total_credit" json:"totalCredit"`
	CreatedAt     time.Time   `db:"created_at" json:"createdAt"`
	CreatedBy     string      `db:"created_by" json:"createdBy,omitempty"`

	Lines []Line `db:"-" json:"lines"`
}

// Line is a single debit or credit within an entry. Exactly one of
// Debit/Credit is non-zero.
type Line struct {
	ID          id.ID       `db:"id" json:"id"`
	EntryID     id.ID       `db:"entry_id" json:"entryId"`
	LineNo      int         `db:"line_no" json:"lineNo"`
	AccountID   id.ID       `db:"account_id" json:"accountId"`
	Debit       types.Money `db:"debit" json:"debit"`
	Credit      types.Money `db:"credit" json:"credit"`
	Description string      `db:"description" json:"description,omitempty"`
}

// NewEntry creates an entry shell for a source document. Lines and the entry
// number are filled in by the posting engine.
func NewEntry(legalEntityID, clinicID id.ID, sourceType SourceType, sourceID id.ID, date time.Time, description string) *Entry {
	return &Entry{
		ID:            id.New(),
		Date:          date,
		LegalEntityID: legalEntityID,
		ClinicID:      clinicID,
		SourceType:    sourceType,
		SourceID:      sourceID,
		Description:   description,
		TotalDebit:    types.Zero(),
		TotalCredit:   types.Zero(),
		CreatedAt:     time.Now().UTC(),
	}
}

// AddDebit appends a debit line. Zero amounts are skipped so callers can feed
// computed values without guarding every call site.
func (e *Entry) AddDebit(accountID id.ID, amount types.Money, description string) {
	if amount.IsZero() {
		return
	}
	e.Lines = append(e.Lines, Line{
		ID:          id.New(),
		EntryID:     e.ID,
		LineNo:      len(e.Lines) + 1,
		AccountID:   accountID,
		Debit:       amount,
		Credit:      types.Zero(),
		Description: description,
	})
	e.TotalDebit = e.TotalDebit.Add(amount)
}

// AddCredit appends a credit line. Zero amounts are skipped.
func (e *Entry) AddCredit(accountID id.ID, amount types.Money, description string) {
	if amount.IsZero() {
		return
	}
	e.Lines = append(e.Lines, Line{
		ID:          id.New(),
		EntryID:     e.ID,
		LineNo:      len(e.Lines) + 1,
		AccountID:   accountID,
		Debit:       types.Zero(),
		Credit:      amount,
		Description: description,
	})
	e.TotalCredit = e.TotalCredit.Add(amount)
}

// Imbalance returns total debit minus total credit.
func (e *Entry) Imbalance() types.Money {
	return e.TotalDebit.Sub(e.TotalCredit)
}

// CheckBalance verifies sum(debit) == sum(credit) within BalanceTolerance.
func (e *Entry) CheckBalance() error {
	diff := e.Imbalance()
	if diff.Abs().Cmp(BalanceTolerance) > 0 {
		return apperror.NewEntryImbalanced(
			e.TotalDebit.StringFixed(2),
			e.TotalCredit.StringFixed(2),
			diff.StringFixed(2),
		)
	}
	return nil
}

// SetNumber records the allocated entry number.
func (e *Entry) SetNumber(sequence int64, formatted string) {
	e.Sequence = sequence
	e.EntryNumber = formatted
}
