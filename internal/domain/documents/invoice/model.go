// Package invoice provides the Invoice document: a fiscal invoice issued to a
// client, either standalone or from a closed ticket. Issuing allocates the
// fiscal number from the legal entity's series and generates the journal
// entry.
package invoice

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

// Invoice represents a fiscal invoice.
type Invoice struct {
	entity.Document

	// ClientID is required: fiscal invoices always name the client
	ClientID id.ID `db:"client_id" json:"clientId"`

	// TicketID links the source ticket when invoiced from a sale
	TicketID *id.ID `db:"ticket_id" json:"ticketId,omitempty"`

	// IssuedAt is when the invoice was finalized
	IssuedAt *time.Time `db:"issued_at" json:"issuedAt,omitempty"`

	// Totals (calculated from lines)
	TotalGross    types.Money `db:"total_gross" json:"totalGross"`
	TotalDiscount types.Money `db:"total_discount" json:"totalDiscount"`
	TotalTax      types.Money `db:"total_tax" json:"totalTax"`
	Total         types.Money `db:"total" json:"total"`

	// Table parts
	Lines    []Line    `db:"-" json:"lines"`
	Payments []Payment `db:"-" json:"payments"`
}

// Line represents one invoiced item. VATRate is snapshotted at issue time.
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

	DiscountType   string      `db:"discount_type" json:"discountType,omitempty"`
	DiscountAmount types.Money `db:"discount_amount" json:"discountAmount"`

	// Amount is the payable line total: quantity * unit price - discount
	Amount types.Money `db:"amount" json:"amount"`
}

// Payment is one settlement split recorded on the invoice.
type Payment struct {
	PaymentID id.ID       `db:"payment_id" json:"paymentId"`
	LineNo    int         `db:"line_no" json:"lineNo"`
	MethodID  id.ID       `db:"method_id" json:"methodId"`
	Amount    types.Money `db:"amount" json:"amount"`
}

// NewInvoice creates a new draft invoice.
func NewInvoice(legalEntityID, clinicID, clientID id.ID) *Invoice {
	return &Invoice{
		Document: entity.NewDocument(legalEntityID, clinicID),
		ClientID: clientID,
		Lines:    make([]Line, 0),
		Payments: make([]Payment, 0),
	}
}

// AddLine adds an invoiced item and recalculates totals.
func (inv *Invoice) AddLine(itemID, categoryID, vatTypeID id.ID, description string, quantity decimal.Decimal, unitPrice types.Money, vatRate decimal.Decimal) {
	gross := unitPrice.Mul(quantity).Round(2)
	inv.Lines = append(inv.Lines, Line{
		LineID:         id.New(),
		LineNo:         len(inv.Lines) + 1,
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
	inv.recalculateTotals()
}

// ApplyDiscount puts a discount on a line and recalculates totals.
func (inv *Invoice) ApplyDiscount(lineNo int, discountType string, amount types.Money) error {
	if lineNo < 1 || lineNo > len(inv.Lines) {
		return apperror.NewValidation("line not found").
			WithDetail("lineNo", lineNo)
	}
	line := &inv.Lines[lineNo-1]
	gross := line.UnitPrice.Mul(line.Quantity).Round(2)
	if amount.IsNegative() || amount.GreaterThan(gross) {
		return apperror.NewValidation("discount must be between zero and the line total").
			WithDetail("lineNo", lineNo).
			WithDetail("discount", amount.StringFixed(2))
	}
	line.DiscountType = discountType
	line.DiscountAmount = amount
	line.Amount = gross.Sub(amount)
	inv.recalculateTotals()
	return nil
}

// AddPayment records a settlement split.
func (inv *Invoice) AddPayment(methodID id.ID, amount types.Money) {
	inv.Payments = append(inv.Payments, Payment{
		PaymentID: id.New(),
		LineNo:    len(inv.Payments) + 1,
		MethodID:  methodID,
		Amount:    amount,
	})
}

func (inv *Invoice) recalculateTotals() {
	inv.TotalGross = types.Zero()
	inv.TotalDiscount = types.Zero()
	inv.TotalTax = types.Zero()
	inv.Total = types.Zero()

	one := decimal.NewFromInt(1)
	for _, line := range inv.Lines {
		gross := line.UnitPrice.Mul(line.Quantity).Round(2)
		inv.TotalGross = inv.TotalGross.Add(gross)
		inv.TotalDiscount = inv.TotalDiscount.Add(line.DiscountAmount)
		inv.Total = inv.Total.Add(line.Amount)

		tax := line.Amount.Mul(line.VATRate).Div(one.Add(line.VATRate)).Round(2)
		inv.TotalTax = inv.TotalTax.Add(tax)
	}
}

// PaidTotal returns the sum of settlement splits.
func (inv *Invoice) PaidTotal() types.Money {
	total := types.Zero()
	for _, p := range inv.Payments {
		total = total.Add(p.Amount)
	}
	return total
}

// Pending returns the unpaid remainder the client owes on the invoice.
func (inv *Invoice) Pending() types.Money {
	return inv.Total.Sub(inv.PaidTotal())
}

// Validate implements entity.Validatable.
func (inv *Invoice) Validate(ctx context.Context) error {
	if err := inv.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(inv.ClientID) {
		return apperror.NewValidation("client is required").
			WithDetail("field", "clientId")
	}

	if len(inv.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	one := decimal.NewFromInt(1)
	for i, line := range inv.Lines {
		if id.IsNil(line.ItemID) || id.IsNil(line.CategoryID) || id.IsNil(line.VATTypeID) {
			return apperror.NewValidation("item, category and VAT type are required").
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
		if line.DiscountAmount.IsNegative() || line.DiscountAmount.GreaterThan(line.UnitPrice.Mul(line.Quantity).Round(2)) {
			return apperror.NewValidation("discount must be between zero and the line total").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
	}

	for i, p := range inv.Payments {
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

	if inv.PaidTotal().GreaterThan(inv.Total) {
		return apperror.NewValidation("payments exceed invoice total").
			WithDetail("total", inv.Total.StringFixed(2)).
			WithDetail("paid", inv.PaidTotal().StringFixed(2))
	}

	return nil
}

// GetDocumentType returns the document type name.
func (inv *Invoice) GetDocumentType() string {
	return "Invoice"
}

// ToEvent assembles the monetary facts for journal generation. The rounding
// follows the ticket: revenue per line is anchored so the entry balances
// exactly.
func (inv *Invoice) ToEvent() posting.InvoiceEvent {
	clientID := inv.ClientID
	ev := posting.InvoiceEvent{
		ID:            inv.ID,
		Number:        inv.Number,
		LegalEntityID: inv.LegalEntityID,
		ClinicID:      inv.ClinicID,
		ClientID:      &clientID,
		IssuedAt:      inv.Date,
		Pending:       inv.Pending(),
	}
	if inv.IssuedAt != nil {
		ev.IssuedAt = *inv.IssuedAt
	}

	one := decimal.NewFromInt(1)
	for _, line := range inv.Lines {
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

	for _, p := range inv.Payments {
		ev.Payments = append(ev.Payments, posting.PaymentSplit{MethodID: p.MethodID, Amount: p.Amount})
	}

	return ev
}
