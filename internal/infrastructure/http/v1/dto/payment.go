package dto

import (
	"time"

	"clinova/internal/core/id"
	"clinova/internal/core/types"
	"clinova/internal/domain/documents/payment"
)

// CreatePaymentRequest is the DTO for creating a debt payment.
type CreatePaymentRequest struct {
	LegalEntityID id.ID       `json:"legalEntityId" binding:"required"`
	ClinicID      id.ID       `json:"clinicId" binding:"required"`
	ClientID      id.ID       `json:"clientId" binding:"required"`
	MethodID      id.ID       `json:"methodId" binding:"required"`
	Amount        types.Money `json:"amount" binding:"required"`
	Date          *time.Time  `json:"date"`
	Comment       string      `json:"comment"`
}

func (r CreatePaymentRequest) ToEntity() *payment.Payment {
	p := payment.NewPayment(r.LegalEntityID, r.ClinicID, r.ClientID, r.MethodID, r.Amount)
	p.Comment = r.Comment
	if r.Date != nil {
		p.Date = *r.Date
	}
	return p
}

// UpdatePaymentRequest is the DTO for updating a draft payment.
type UpdatePaymentRequest struct {
	Version  int         `json:"version" binding:"required"`
	ClientID id.ID       `json:"clientId" binding:"required"`
	MethodID id.ID       `json:"methodId" binding:"required"`
	Amount   types.Money `json:"amount" binding:"required"`
	Date     *time.Time  `json:"date"`
	Comment  string      `json:"comment"`
}

func (r UpdatePaymentRequest) ApplyTo(p *payment.Payment) {
	p.ClientID = r.ClientID
	p.MethodID = r.MethodID
	p.Amount = r.Amount
	p.Comment = r.Comment
	if r.Date != nil {
		p.Date = *r.Date
	}
}

// PaymentResponse is the DTO for returning payment data.
type PaymentResponse struct {
	DocumentResponse
	ClientID id.ID       `json:"clientId"`
	MethodID id.ID       `json:"methodId"`
	Amount   types.Money `json:"amount"`
	PaidAt   *time.Time  `json:"paidAt,omitempty"`
}

func FromPayment(p *payment.Payment) PaymentResponse {
	return PaymentResponse{
		DocumentResponse: FromDocument(p.Document),
		ClientID:         p.ClientID,
		MethodID:         p.MethodID,
		Amount:           p.Amount,
		PaidAt:           p.PaidAt,
	}
}

// ListPaymentsRequest carries the payment list filters.
type ListPaymentsRequest struct {
	ClinicID *id.ID     `form:"clinicId"`
	ClientID *id.ID     `form:"clientId"`
	MethodID *id.ID     `form:"methodId"`
	Posted   *bool      `form:"posted"`
	DateFrom *time.Time `form:"dateFrom" time_format:"2006-01-02"`
	DateTo   *time.Time `form:"dateTo" time_format:"2006-01-02"`
	Limit    int        `form:"limit"`
	Offset   int        `form:"offset"`
}
