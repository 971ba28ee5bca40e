package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"clinova/internal/core/id"
	"clinova/internal/core/types"
	"clinova/internal/domain/documents/ticket"
)

// TicketLineRequest is one sold item on a ticket request.
type TicketLineRequest struct {
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

// TicketPaymentRequest is one settlement split on a ticket request.
type TicketPaymentRequest struct {
	MethodID id.ID       `json:"methodId" binding:"required"`
	Amount   types.Money `json:"amount" binding:"required"`
}

// CreateTicketRequest is the DTO for creating a ticket.
type CreateTicketRequest struct {
	LegalEntityID id.ID                  `json:"legalEntityId" binding:"required"`
	ClinicID      id.ID                  `json:"clinicId" binding:"required"`
	ClientID      *id.ID                 `json:"clientId"`
	Date          *time.Time             `json:"date"`
	Comment       string                 `json:"comment"`
	Lines         []TicketLineRequest    `json:"lines" binding:"required,min=1"`
	Payments      []TicketPaymentRequest `json:"payments"`
}

func (r CreateTicketRequest) ToEntity() (*ticket.Ticket, error) {
	t := ticket.NewTicket(r.LegalEntityID, r.ClinicID)
	t.ClientID = r.ClientID
	t.Comment = r.Comment
	if r.Date != nil {
		t.Date = *r.Date
	}

	for _, l := range r.Lines {
		t.AddLine(l.ItemID, l.CategoryID, l.VATTypeID, l.Description, l.Quantity, l.UnitPrice, l.VATRate)
		if l.DiscountAmount.IsPositive() {
			if err := t.ApplyDiscount(len(t.Lines), l.DiscountType, l.DiscountAmount); err != nil {
				return nil, err
			}
		}
	}
	for _, p := range r.Payments {
		t.AddPayment(p.MethodID, p.Amount)
	}

	return t, nil
}

// UpdateTicketRequest is the DTO for updating a draft ticket.
// Lines and payments are replaced wholesale.
type UpdateTicketRequest struct {
	Version  int                    `json:"version" binding:"required"`
	ClientID *id.ID                 `json:"clientId"`
	Date     *time.Time             `json:"date"`
	Comment  string                 `json:"comment"`
	Lines    []TicketLineRequest    `json:"lines" binding:"required,min=1"`
	Payments []TicketPaymentRequest `json:"payments"`
}

func (r UpdateTicketRequest) ApplyTo(t *ticket.Ticket) error {
	t.ClientID = r.ClientID
	t.Comment = r.Comment
	if r.Date != nil {
		t.Date = *r.Date
	}

	t.Lines = t.Lines[:0]
	t.Payments = t.Payments[:0]
	for _, l := range r.Lines {
		t.AddLine(l.ItemID, l.CategoryID, l.VATTypeID, l.Description, l.Quantity, l.UnitPrice, l.VATRate)
		if l.DiscountAmount.IsPositive() {
			if err := t.ApplyDiscount(len(t.Lines), l.DiscountType, l.DiscountAmount); err != nil {
				return err
			}
		}
	}
	for _, p := range r.Payments {
		t.AddPayment(p.MethodID, p.Amount)
	}

	return nil
}

// TicketResponse is the DTO for returning ticket data.
type TicketResponse struct {
	DocumentResponse
	ClientID      *id.ID           `json:"clientId,omitempty"`
	ClosedAt      *time.Time       `json:"closedAt,omitempty"`
	TotalGross    types.Money      `json:"totalGross"`
	TotalDiscount types.Money      `json:"totalDiscount"`
	TotalTax      types.Money      `json:"totalTax"`
	Total         types.Money      `json:"total"`
	Paid          types.Money      `json:"paid"`
	Pending       types.Money      `json:"pending"`
	Lines         []ticket.Line    `json:"lines"`
	Payments      []ticket.Payment `json:"payments"`
}

func FromTicket(t *ticket.Ticket) TicketResponse {
	return TicketResponse{
		DocumentResponse: FromDocument(t.Document),
		ClientID:         t.ClientID,
		ClosedAt:         t.ClosedAt,
		TotalGross:       t.TotalGross,
		TotalDiscount:    t.TotalDiscount,
		TotalTax:         t.TotalTax,
		Total:            t.Total,
		Paid:             t.PaidTotal(),
		Pending:          t.Pending(),
		Lines:            t.Lines,
		Payments:         t.Payments,
	}
}

// ListTicketsRequest carries the ticket list filters.
type ListTicketsRequest struct {
	ClinicID *id.ID     `form:"clinicId"`
	ClientID *id.ID     `form:"clientId"`
	Posted   *bool      `form:"posted"`
	DateFrom *time.Time `form:"dateFrom" time_format:"2006-01-02"`
	DateTo   *time.Time `form:"dateTo" time_format:"2006-01-02"`
	Limit    int        `form:"limit"`
	Offset   int        `form:"offset"`
}
