package ledger

import (
	"context"
	"time"

	"clinova/internal/core/apperror"
	"clinova/internal/core/entity"
	"clinova/internal/core/id"
)

// Concept names the kind of business reference a mapping binds to an account.
type Concept string

const (
	// ConceptPaymentMethod maps a payment method to its treasury account
	ConceptPaymentMethod Concept = "payment_method"
	// ConceptCategory maps a service/product category to its revenue account
	ConceptCategory Concept = "category"
	// ConceptExpenseCategory maps an expense category to its cost account
	ConceptExpenseCategory Concept = "expense_category"
	// ConceptVATOutput maps a VAT type to the output VAT liability account
	ConceptVATOutput Concept = "vat_output"
	// ConceptDiscount maps a discount type ("manual", "promotion") to its account
	ConceptDiscount Concept = "discount"
	// ConceptCash is the clinic cash drawer account (singleton, clinic-scoped)
	ConceptCash Concept = "cash"
	// ConceptCashOverShort absorbs cash reconciliation differences (singleton)
	ConceptCashOverShort Concept = "cash_over_short"
	// ConceptReceivable is the accounts receivable account (singleton)
	ConceptReceivable Concept = "receivable"
)

// Valid reports whether the concept is one of the known values.
func (c Concept) Valid() bool {
	switch c {
	case ConceptPaymentMethod, ConceptCategory, ConceptExpenseCategory,
		ConceptVATOutput, ConceptDiscount, ConceptCash,
		ConceptCashOverShort, ConceptReceivable:
		return true
	}
	return false
}

// Mapping binds a business concept to a ledger account for one legal entity.
// ReferenceKey identifies the concrete referent (a category ID, a payment
// method ID, a discount type name) and is empty for singleton concepts.
// A clinic-scoped mapping overrides the entity-wide one for that clinic.
// At most one active mapping exists per (concept, referenceKey, legal entity,
// clinic scope); the unique index enforces it.
type Mapping struct {
	entity.BaseEntity

	Concept       Concept `db:"concept" json:"concept"`
	ReferenceKey  string  `db:"reference_key" json:"referenceKey,omitempty"`
	LegalEntityID id.ID   `db:"legal_entity_id" json:"legalEntityId"`
	ClinicID      *id.ID  `db:"clinic_id" json:"clinicId,omitempty"`
	AccountID     id.ID   `db:"account_id" json:"accountId"`
	Active        bool    `db:"active" json:"active"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewMapping creates an active mapping.
func NewMapping(legalEntityID id.ID, concept Concept, referenceKey string, accountID id.ID) *Mapping {
	now := time.Now().UTC()
	return &Mapping{
		BaseEntity:    entity.NewBaseEntity(),
		Concept:       concept,
		ReferenceKey:  referenceKey,
		LegalEntityID: legalEntityID,
		AccountID:     accountID,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// ForClinic narrows the mapping to one clinic.
func (m *Mapping) ForClinic(clinicID id.ID) *Mapping {
	m.ClinicID = &clinicID
	return m
}

// Validate implements entity.Validatable interface.
func (m *Mapping) Validate(ctx context.Context) error {
	if !m.Concept.Valid() {
		return apperror.NewValidation("unknown mapping concept").
			WithDetail("field", "concept").
			WithDetail("value", string(m.Concept))
	}
	if id.IsNil(m.LegalEntityID) {
		return apperror.NewValidation("legal entity is required").
			WithDetail("field", "legalEntityId")
	}
	if id.IsNil(m.AccountID) {
		return apperror.NewValidation("account is required").
			WithDetail("field", "accountId")
	}
	return nil
}
