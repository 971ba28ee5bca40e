// Package payment provides the Payment document: money received against a
// client's outstanding balance. Confirming a payment settles debt in the
// receivable register and generates the journal entry.
package payment

import (
	"context"
	"time"

	"clinova/internal/core/apperror"
	"clinova/internal/core/entity"
	"clinova/internal/core/id"
	"clinova/internal/core/types"
	"clinova/internal/domain/posting"
)

// Payment represents a debt collection payment.
type Payment struct {
	entity.Document

	ClientID id.ID `db:"client_id" json:"clientId"`
	MethodID id.ID `db:"method_id" json:"methodId"`

	Amount types.Money `db:"amount" json:"amount"`

	// PaidAt is when the payment was confirmed
	PaidAt *time.Time `db:"paid_at" json:"paidAt,omitempty"`
}

// NewPayment creates a new draft payment.
func NewPayment(legalEntityID, clinicID, clientID, methodID id.ID, amount types.Money) *Payment {
	return &Payment{
		Document: entity.NewDocument(legalEntityID, clinicID),
		ClientID: clientID,
		MethodID: methodID,
		Amount:   amount,
	}
}

// Validate implements entity.Validatable.
func (p *Payment) Validate(ctx context.Context) error {
	if err := p.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(p.ClientID) {
		return apperror.NewValidation("client is required").
			WithDetail("field", "clientId")
	}
	if id.IsNil(p.MethodID) {
		return apperror.NewValidation("payment method is required").
			WithDetail("field", "methodId")
	}
	if !p.Amount.IsPositive() {
		return apperror.NewValidation("amount must be positive").
			WithDetail("field", "amount")
	}

	return nil
}

// GetDocumentType returns the document type name.
func (p *Payment) GetDocumentType() string {
	return "Payment"
}

// ToEvent assembles the monetary facts for journal generation.
func (p *Payment) ToEvent() posting.PaymentEvent {
	ev := posting.PaymentEvent{
		ID:            p.ID,
		Number:        p.Number,
		LegalEntityID: p.LegalEntityID,
		ClinicID:      p.ClinicID,
		ClientID:      p.ClientID,
		PaidAt:        p.Date,
		MethodID:      p.MethodID,
		Amount:        p.Amount,
	}
	if p.PaidAt != nil {
		ev.PaidAt = *p.PaidAt
	}
	return ev
}
