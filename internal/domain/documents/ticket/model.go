// Package ticket provides the Ticket document: a point-of-sale sale closed at
// the front desk. Closing a ticket allocates its number, accrues client debt
// for any unpaid remainder and generates the journal entry.
package ticket

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"clinova/internal/core/apperror"
	"clinova/internal/core/entity"
	"clinova/internal/core/id"
	"clinova/internal/core/types"
	"clinova/internal/domain/posting"
)

// Ticket represents a point-of-sale sale.
type Ticket struct {
	entity.Document

	// ClientID is optional for walk-ins, required when debt remains
	ClientID *id.ID `db:"client_id" json:"clientId,omitempty"`

	// ClosedAt is when the ticket was finalized
	ClosedAt *time.Time `db:"closed_at" json:"closedAt,omitempty"`

	// Totals (calculated from lines)
	TotalGross    types.Money `db:"total_gross" json:"totalGross"`       // before discounts, tax included
	TotalDiscount types.Money `db:"total_discount" json:"totalDiscount"` // gross discounts
	TotalTax      types.Money `db:"total_tax" json:"totalTax"`
	Total         types.Money `db:"total" json:"total"` // payable: gross minus discounts

	// Table parts
	Lines    []Line    `db:"-" json:"lines"`
	Payments []Payment `db:"-" json:"payments"`
}

// Line represents one sold item on the ticket. VATRate is snapshotted from
// the item's VAT type at sale time so later rate changes never reprice
// history.
type Line struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	ItemID     id.ID `db:"item_id" json:"itemId"`
	CategoryID id.ID `db:"category_id" json:"categoryId"`
	VATTypeID  id.ID `db:"vat_type_id" json:"vatTypeId"`

	Description string          `db:"description" json:"description,omitempty"`
	Quantity    decimal.Decimal `db:"quantity" json:"quantity"`
	UnitPrice   types.Money     `db:"unit_price" json:"unitPrice"` // gross, tax included
	VATRate     decimal.Decimal `db:"vat_rate" json:"vatRate"`

	// DiscountType names the discount origin ("manual", "promotion"); empty
	// when no discount applies
	DiscountType   string      `db:"discount_type" json:"discountType,omitempty"`
	DiscountAmount types.Money `db:"discount_amount" json:"discountAmount"`

	// Amount is the payable line total: quantity * unit price - discount
	Amount types.Money `db:"amount" json:"amount"`
}

// Payment is one settlement split on the ticket.
type Payment struct {
	PaymentID id.ID       `db:"payment_id" json:"paymentId"`
	LineNo    int         `db:"line_no" json:"lineNo"`
	MethodID  id.ID       `db:"method_id" json:"methodId"`
	Amount    types.Money `db:"amount" json:"amount"`
}

// NewTicket creates a new draft ticket.
func NewTicket(legalEntityID, clinicID id.ID) *Ticket {
	return &Ticket{
		Document: entity.NewDocument(legalEntityID, clinicID),
		Lines:    make([]Line, 0),
		Payments: make([]Payment, 0),
	}
}

// AddLine adds a sold item and recalculates totals.
func (t *Ticket) AddLine(itemID, categoryID, vatTypeID id.ID, description string, quantity decimal.Decimal, unitPrice types.Money, vatRate decimal.Decimal) {
	gross := unitPrice.Mul(quantity).Round(2)
	t.Lines = append(t.Lines, Line{
		LineID:         id.New(),
		LineNo:         len(t.Lines) + 1,
		ItemID:         itemID,
		CategoryID:     categoryID,
		VATTypeID:      vatTypeID,
		Description:    description,
		Quantity:       quantity,
		UnitPrice:      unitPrice,
		VATRate:        vatRate,
		DiscountAmount: types.Zero(),
		Amount:         gross,
	})
	t.recalculateTotals()
}

// ApplyDiscount puts a discount on a line and recalculates totals.
func (t *Ticket) ApplyDiscount(lineNo int, discountType string, amount types.Money) error {
	if lineNo < 1 || lineNo > len(t.Lines) {
		return apperror.NewValidation("line not found").
			WithDetail("lineNo", lineNo)
	}
	line := &t.Lines[lineNo-1]
	gross := line.UnitPrice.Mul(line.Quantity).Round(2)
	if amount.IsNegative() || amount.GreaterThan(gross) {
		return apperror.NewValidation("discount must be between zero and the line total").
			WithDetail("lineNo", lineNo).
			WithDetail("discount", amount.StringFixed(2))
	}
	line.DiscountType = discountType
	line.DiscountAmount = amount
	line.Amount = gross.Sub(amount)
	t.recalculateTotals()
	return nil
}

// AddPayment adds a settlement split and keeps splits ordered.
func (t *Ticket) AddPayment(methodID id.ID, amount types.Money) {
	t.Payments = append(t.Payments, Payment{
		PaymentID: id.New(),
		LineNo:    len(t.Payments) + 1,
		MethodID:  methodID,
		Amount:    amount,
	})
}

// recalculateTotals updates document totals from lines.
func (t *Ticket) recalculateTotals() {
	t.TotalGross = types.Zero()
	t.TotalDiscount = types.Zero()
	t.TotalTax = types.Zero()
	t.Total = types.Zero()

	one := decimal.NewFromInt(1)
	for _, line := range t.Lines {
		gross := line.UnitPrice.Mul(line.Quantity).Round(2)
		t.TotalGross = t.TotalGross.Add(gross)
		t.TotalDiscount = t.TotalDiscount.Add(line.DiscountAmount)
		t.Total = t.Total.Add(line.Amount)

		// Tax on the discounted amount (prices are tax inclusive)
		tax := line.Amount.Mul(line.VATRate).Div(one.Add(line.VATRate)).Round(2)
		t.TotalTax = t.TotalTax.Add(tax)
	}
}

// PaidTotal returns the sum of settlement splits.
func (t *Ticket) PaidTotal() types.Money {
	total := types.Zero()
	for _, p := range t.Payments {
		total = total.Add(p.Amount)
	}
	return total
}

// Pending returns the unpaid remainder the client will owe.
func (t *Ticket) Pending() types.Money {
	return t.Total.Sub(t.PaidTotal())
}

// Validate implements entity.Validatable.
func (t *Ticket) Validate(ctx context.Context) error {
	if err := t.Document.Validate(ctx); err != nil {
		return err
	}

	if len(t.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	one := decimal.NewFromInt(1)
	for i, line := range t.Lines {
		if id.IsNil(line.ItemID) {
			return apperror.NewValidation("item is required").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if id.IsNil(line.CategoryID) || id.IsNil(line.VATTypeID) {
			return apperror.NewValidation("category and VAT type are required").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if !line.Quantity.IsPositive() {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if line.UnitPrice.IsNegative() {
			return apperror.NewValidation("unit price cannot be negative").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if line.VATRate.IsNegative() || line.VATRate.GreaterThan(one) {
			return apperror.NewValidation("VAT rate must be between 0 and 1").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
	}

	for i, p := range t.Payments {
		if id.IsNil(p.MethodID) {
			return apperror.NewValidation("payment method is required").
				WithDetail("field", "payments").
				WithDetail("lineNo", i+1)
		}
		if !p.Amount.IsPositive() {
			return apperror.NewValidation("payment amount must be positive").
				WithDetail("field", "payments").
				WithDetail("lineNo", i+1)
		}
	}

	if t.PaidTotal().GreaterThan(t.Total) {
		return apperror.NewValidation("payments exceed ticket total").
			WithDetail("total", t.Total.StringFixed(2)).
			WithDetail("paid", t.PaidTotal().StringFixed(2))
	}

	if t.Pending().IsPositive() && t.ClientID == nil {
		return apperror.NewValidation("client is required for deferred payment").
			WithDetail("field", "clientId")
	}

	return nil
}

// GetDocumentType returns the document type name.
func (t *Ticket) GetDocumentType() string {
	return "Ticket"
}

// ToEvent assembles the monetary facts for journal generation.
//
// Per line: tax is carved out of the discounted amount, the discount is
// restated net of tax, and revenue is anchored so that
// revenue - discount + tax equals the payable amount exactly. Rounding can
// therefore never drift the entry out of balance.
func (t *Ticket) ToEvent() posting.TicketEvent {
	ev := posting.TicketEvent{
		ID:            t.ID,
		Number:        t.Number,
		LegalEntityID: t.LegalEntityID,
		ClinicID:      t.ClinicID,
		ClientID:      t.ClientID,
		ClosedAt:      t.Date,
		Pending:       t.Pending(),
	}
	if t.ClosedAt != nil {
		ev.ClosedAt = *t.ClosedAt
	}

	one := decimal.NewFromInt(1)
	for _, line := range t.Lines {
		divisor := one.Add(line.VATRate)
		tax := line.Amount.Mul(line.VATRate).Div(divisor).Round(2)
		discountNet := line.DiscountAmount.Div(divisor).Round(2)
		revenueNet := line.Amount.Sub(tax).Add(discountNet)

		ev.Revenue = append(ev.Revenue, posting.RevenueLine{CategoryID: line.CategoryID, Amount: revenueNet})
		if tax.IsPositive() {
			ev.Taxes = append(ev.Taxes, posting.TaxLine{VATTypeID: line.VATTypeID, Amount: tax})
		}
		if discountNet.IsPositive() {
			ev.Discounts = append(ev.Discounts, posting.DiscountLine{Type: line.DiscountType, Amount: discountNet})
		}
	}

	for _, p := range t.Payments {
		ev.Payments = append(ev.Payments, posting.PaymentSplit{MethodID: p.MethodID, Amount: p.Amount})
	}

	return ev
}
