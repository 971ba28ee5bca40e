package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"clinova/internal/core/id"
	"clinova/internal/core/types"
	"clinova/internal/domain/documents/invoice"
)

// InvoiceLineRequest is one invoiced item on an invoice request.
type InvoiceLineRequest struct {
	ItemID         id.ID           `json:"itemId" binding:"required"`
	CategoryID     id.ID           `json:"categoryId" binding:"required"`
	VATTypeID      id.ID           `json:"vatTypeId" binding:"required"`
	Description    string          `json:"description"`
	Quantity       decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice      types.Money     `json:"unitPrice"`
	VATRate        decimal.Decimal `json:"vatRate"`
	DiscountType   string          `json:"discountType"`
	DiscountAmount types.Money     `json:"discountAmount"`
}

// InvoicePaymentRequest is one settlement split on an invoice request.
type InvoicePaymentRequest struct {
	MethodID id.ID       `json:"methodId" binding:"required"`
	Amount   types.Money `json:"amount" binding:"required"`
}

// CreateInvoiceRequest is the DTO for creating a standalone invoice.
type CreateInvoiceRequest struct {
	LegalEntityID id.ID                   `json:"legalEntityId" binding:"required"`
	ClinicID      id.ID                   `json:"clinicId" binding:"required"`
	ClientID      id.ID                   `json:"clientId" binding:"required"`
	Date          *time.Time              `json:"date"`
	Comment       string                  `json:"comment"`
	Lines         []InvoiceLineRequest    `json:"lines" binding:"required,min=1"`
	Payments      []InvoicePaymentRequest `json:"payments"`
}

func (r CreateInvoiceRequest) ToEntity() (*invoice.Invoice, error) {
	inv := invoice.NewInvoice(r.LegalEntityID, r.ClinicID, r.ClientID)
	inv.Comment = r.Comment
	if r.Date != nil {
		inv.Date = *r.Date
	}

	for _, l := range r.Lines {
		inv.AddLine(l.ItemID, l.CategoryID, l.VATTypeID, l.Description, l.Quantity, l.UnitPrice, l.VATRate)
		if l.DiscountAmount.IsPositive() {
			if err := inv.ApplyDiscount(len(inv.Lines), l.DiscountType, l.DiscountAmount); err != nil {
				return nil, err
			}
		}
	}
	for _, p := range r.Payments {
		inv.AddPayment(p.MethodID, p.Amount)
	}

	return inv, nil
}

// CreateInvoiceFromTicketRequest issues a fiscal invoice over a closed ticket.
type CreateInvoiceFromTicketRequest struct {
	TicketID id.ID `json:"ticketId" binding:"required"`
	ClientID id.ID `json:"clientId"`
}

// UpdateInvoiceRequest is the DTO for updating a draft invoice.
type UpdateInvoiceRequest struct {
	Version  int                     `json:"version" binding:"required"`
	ClientID id.ID                   `json:"clientId" binding:"required"`
	Date     *time.Time              `json:"date"`
	Comment  string                  `json:"comment"`
	Lines    []InvoiceLineRequest    `json:"lines" binding:"required,min=1"`
	Payments []InvoicePaymentRequest `json:"payments"`
}

func (r UpdateInvoiceRequest) ApplyTo(inv *invoice.Invoice) error {
	inv.ClientID = r.ClientID
	inv.Comment = r.Comment
	if r.Date != nil {
		inv.Date = *r.Date
	}

	inv.Lines = inv.Lines[:0]
	inv.Payments = inv.Payments[:0]
	for _, l := range r.Lines {
		inv.AddLine(l.ItemID, l.CategoryID, l.VATTypeID, l.Description, l.Quantity, l.UnitPrice, l.VATRate)
		if l.DiscountAmount.IsPositive() {
			if err := inv.ApplyDiscount(len(inv.Lines), l.DiscountType, l.DiscountAmount); err != nil {
				return err
			}
		}
	}
	for _, p := range r.Payments {
		inv.AddPayment(p.MethodID, p.Amount)
	}

	return nil
}

// InvoiceResponse is the DTO for returning invoice data.
type InvoiceResponse struct {
	DocumentResponse
	ClientID      id.ID             `json:"clientId"`
	TicketID      *id.ID            `json:"ticketId,omitempty"`
	IssuedAt      *time.Time        `json:"issuedAt,omitempty"`
	TotalGross    types.Money       `json:"totalGross"`
	TotalDiscount types.Money       `json:"totalDiscount"`
	TotalTax      types.Money       `json:"totalTax"`
	Total         types.Money       `json:"total"`
	Paid          types.Money       `json:"paid"`
	Pending       types.Money       `json:"pending"`
	Lines         []invoice.Line    `json:"lines"`
	Payments      []invoice.Payment `json:"payments"`
}

func FromInvoice(inv *invoice.Invoice) InvoiceResponse {
	return InvoiceResponse{
		DocumentResponse: FromDocument(inv.Document),
		ClientID:         inv.ClientID,
		TicketID:         inv.TicketID,
		IssuedAt:         inv.IssuedAt,
		TotalGross:       inv.TotalGross,
		TotalDiscount:    inv.TotalDiscount,
		TotalTax:         inv.TotalTax,
		Total:            inv.Total,
		Paid:             inv.PaidTotal(),
		Pending:          inv.Pending(),
		Lines:            inv.Lines,
		Payments:         inv.Payments,
	}
}

// ListInvoicesRequest carries the invoice list filters.
type ListInvoicesRequest struct {
	LegalEntityID *id.ID     `form:"legalEntityId"`
	ClinicID      *id.ID     `form:"clinicId"`
	ClientID      *id.ID     `form:"clientId"`
	Posted        *bool      `form:"posted"`
	DateFrom      *time.Time `form:"dateFrom" time_format:"2006-01-02"`
	DateTo        *time.Time `form:"dateTo" time_format:"2006-01-02"`
	Limit         int        `form:"limit"`
	Offset        int        `form:"offset"`
}
