// Package legalentity provides the LegalEntity catalog.
// Legal entities are the fiscal units of a tenant: each owns its chart of
// accounts, its journal entry numbering and its tax identity.
package legalentity

import (
	"context"
	"regexp"

	"clinova/internal/core/apperror"
	"clinova/internal/core/entity"
)

// nifRE matches Spanish NIF/CIF formats: 8 digits + letter, or letter + 7 digits + char.
var nifRE = regexp.MustCompile(`^([0-9]{8}[A-Z]|[A-Z][0-9]{7}[0-9A-Z])$`)

// LegalEntity represents a fiscal/legal unit that clinics operate under.
type LegalEntity struct {
	entity.Catalog

	// FullName is the official registered name
	FullName *string `db:"full_name" json:"fullName,omitempty"`

	// TaxID is the fiscal identifier (NIF/CIF)
	TaxID *string `db:"tax_id" json:"taxId,omitempty"`

	// FiscalAddress is the registered address
	FiscalAddress *string `db:"fiscal_address" json:"fiscalAddress,omitempty"`

	// IsDefault indicates if this is the default legal entity for new clinics
	IsDefault bool `db:"is_default" json:"isDefault"`
}

// NewLegalEntity creates a new LegalEntity with required fields.
func NewLegalEntity(code, name string) *LegalEntity {
	return &LegalEntity{
		Catalog: entity.NewCatalog(code, name),
	}
}

// Validate implements entity.Validatable interface.
func (e *LegalEntity) Validate(ctx context.Context) error {
	if err := e.Catalog.Validate(ctx); err != nil {
		return err
	}

	if e.TaxID != nil && *e.TaxID != "" && !nifRE.MatchString(*e.TaxID) {
		return apperror.NewValidation("invalid tax ID format").
			WithDetail("field", "taxId").
			WithDetail("value", *e.TaxID)
	}

	return nil
}
