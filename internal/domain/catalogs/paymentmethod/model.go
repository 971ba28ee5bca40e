// Package paymentmethod provides the PaymentMethod catalog.
// Payment methods describe how money comes in or goes out (cash, card,
// transfer); each maps to a treasury account in the ledger.
package paymentmethod

import (
	"context"

	"clinova/internal/core/apperror"
	"clinova/internal/core/entity"
)

// Kind defines the settlement channel of a payment method.
type Kind string

const (
	KindCash     Kind = "cash"     // physical cash, counted in cash sessions
	KindCard     Kind = "card"     // card terminal
	KindTransfer Kind = "transfer" // bank transfer
	KindOnline   Kind = "online"   // online gateway
	KindVoucher  Kind = "voucher"  // gift cards and prepaid bonuses
)

// PaymentMethod represents a way clients pay or the business spends.
type PaymentMethod struct {
	entity.Catalog

	// Kind defines the settlement channel
	Kind Kind `db:"kind" json:"kind"`

	// IsActive indicates if the method is accepted at the till
	IsActive bool `db:"is_active" json:"isActive"`
}

// NewPaymentMethod creates a new PaymentMethod with required fields.
func NewPaymentMethod(code, name string, kind Kind) *PaymentMethod {
	return &PaymentMethod{
		Catalog:  entity.NewCatalog(code, name),
		Kind:     kind,
		IsActive: true,
	}
}

// Validate implements entity.Validatable interface.
func (p *PaymentMethod) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}

	switch p.Kind {
	case KindCash, KindCard, KindTransfer, KindOnline, KindVoucher:
	default:
		return apperror.NewValidation("invalid payment method kind").
			WithDetail("field", "kind").
			WithDetail("value", string(p.Kind))
	}

	return nil
}

// CountsInCashSession returns true if takings through this method are part of
// the drawer reconciliation.
func (p *PaymentMethod) CountsInCashSession() bool {
	return p.Kind == KindCash
}
