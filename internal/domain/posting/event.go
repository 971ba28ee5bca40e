// Package posting derives balanced journal entries from finalized business
// events (the Ledger Generator). One entry per event; regeneration replaces
// the whole entry atomically.
package posting

import (
	"time"

	"clinova/internal/core/id"
	"clinova/internal/core/types"
	"clinova/internal/domain/ledger"
)

// Event is a finalized business event the generator can post.
// Each variant carries exactly the monetary facts its entry needs; the
// generator never loads anything beyond what the event provides plus the
// account mappings.
type Event interface {
	SourceType() ledger.SourceType
	SourceID() id.ID
	LegalEntity() id.ID
	Clinic() id.ID
	Date() time.Time
	Description() string
}

// RevenueLine is the net (tax-exclusive) amount earned in one category,
// before discounts are deducted.
type RevenueLine struct {
	CategoryID id.ID
	Amount     types.Money
}

// TaxLine is the output VAT collected for one VAT type.
type TaxLine struct {
	VATTypeID id.ID
	Amount    types.Money
}

// DiscountLine is the aggregated discount of one type ("manual", "promotion").
type DiscountLine struct {
	Type   string
	Amount types.Money
}

// PaymentSplit is the amount settled through one payment method.
type PaymentSplit struct {
	MethodID id.ID
	Amount   types.Money
}

// TicketEvent is a closed point-of-sale ticket.
type TicketEvent struct {
	ID            id.ID
	Number        string
	LegalEntityID id.ID
	ClinicID      id.ID
	ClientID      *id.ID
	ClosedAt      time.Time

	Revenue   []RevenueLine
	Taxes     []TaxLine
	Discounts []DiscountLine
	Payments  []PaymentSplit
	// Pending is the unpaid remainder owed by the client (deferred payment).
	Pending types.Money
}

func (e TicketEvent) SourceType() ledger.SourceType { return ledger.SourceTicket }
func (e TicketEvent) SourceID() id.ID               { return e.ID }
func (e TicketEvent) LegalEntity() id.ID            { return e.LegalEntityID }
func (e TicketEvent) Clinic() id.ID                 { return e.ClinicID }
func (e TicketEvent) Date() time.Time               { return e.ClosedAt }
func (e TicketEvent) Description() string           { return "Ticket " + e.Number }

// InvoiceEvent is an issued invoice. Same monetary shape as a ticket; the
// unpaid remainder goes to receivables until settled.
type InvoiceEvent struct {
	ID            id.ID
	Number        string
	LegalEntityID id.ID
	ClinicID      id.ID
	ClientID      *id.ID
	IssuedAt      time.Time

	Revenue   []RevenueLine
	Taxes     []TaxLine
	Discounts []DiscountLine
	Payments  []PaymentSplit
	Pending   types.Money
}

func (e InvoiceEvent) SourceType() ledger.SourceType { return ledger.SourceInvoice }
func (e InvoiceEvent) SourceID() id.ID               { return e.ID }
func (e InvoiceEvent) LegalEntity() id.ID            { return e.LegalEntityID }
func (e InvoiceEvent) Clinic() id.ID                 { return e.ClinicID }
func (e InvoiceEvent) Date() time.Time               { return e.IssuedAt }
func (e InvoiceEvent) Description() string           { return "Invoice " + e.Number }

// PaymentEvent is a debt collection payment: money received against a
// client's outstanding balance.
type PaymentEvent struct {
	ID            id.ID
	Number        string
	LegalEntityID id.ID
	ClinicID      id.ID
	ClientID      id.ID
	PaidAt        time.Time

	MethodID id.ID
	Amount   types.Money
}

func (e PaymentEvent) SourceType() ledger.SourceType { return ledger.SourcePayment }
func (e PaymentEvent) SourceID() id.ID               { return e.ID }
func (e PaymentEvent) LegalEntity() id.ID            { return e.LegalEntityID }
func (e PaymentEvent) Clinic() id.ID                 { return e.ClinicID }
func (e PaymentEvent) Date() time.Time               { return e.PaidAt }
func (e PaymentEvent) Description() string           { return "Payment " + e.Number }

// CashSessionEvent is a reconciled cash drawer session.
type CashSessionEvent struct {
	ID            id.ID
	Number        string
	LegalEntityID id.ID
	ClinicID      id.ID
	ClosedAt      time.Time

	ExpectedCash types.Money
	CountedCash  types.Money
}

func (e CashSessionEvent) SourceType() ledger.SourceType { return ledger.SourceCashSession }
func (e CashSessionEvent) SourceID() id.ID               { return e.ID }
func (e CashSessionEvent) LegalEntity() id.ID            { return e.LegalEntityID }
func (e CashSessionEvent) Clinic() id.ID                 { return e.ClinicID }
func (e CashSessionEvent) Date() time.Time               { return e.ClosedAt }
func (e CashSessionEvent) Description() string           { return "Cash session " + e.Number }

// Difference returns counted minus expected cash.
func (e CashSessionEvent) Difference() types.Money {
	return e.CountedCash.Sub(e.ExpectedCash)
}

// ExpenseEvent is a paid business expense.
type ExpenseEvent struct {
	ID            id.ID
	Number        string
	LegalEntityID id.ID
	ClinicID      id.ID
	SpentAt       time.Time

	CategoryID id.ID
	MethodID   id.ID
	Amount     types.Money
	Note       string
}

func (e ExpenseEvent) SourceType() ledger.SourceType { return ledger.SourceExpense }
func (e ExpenseEvent) SourceID() id.ID               { return e.ID }
func (e ExpenseEvent) LegalEntity() id.ID            { return e.LegalEntityID }
func (e ExpenseEvent) Clinic() id.ID                 { return e.ClinicID }
func (e ExpenseEvent) Date() time.Time               { return e.SpentAt }
func (e ExpenseEvent) Description() string           { return "Expense " + e.Number }
