// Package clinic provides the Clinic catalog.
// Clinics are the physical locations where tickets, cash sessions and
// expenses originate. Every clinic belongs to exactly one legal entity.
package clinic

import (
	"context"

	"clinova/internal/core/apperror"
	"clinova/internal/core/entity"
	"clinova/internal/core/id"
)

// Clinic represents one physical location of the business.
type Clinic struct {
	entity.Catalog

	// LegalEntityID is the fiscal unit this clinic operates under
	LegalEntityID id.ID `db:"legal_entity_id" json:"legalEntityId"`

	// Address is the physical address
	Address *string `db:"address" json:"address,omitempty"`

	// Phone is the front-desk phone
	Phone *string `db:"phone" json:"phone,omitempty"`

	// Email is the contact email
	Email *string `db:"email" json:"email,omitempty"`

	// Timezone is the IANA timezone of the location (e.g. "Europe/Madrid")
	Timezone *string `db:"timezone" json:"timezone,omitempty"`

	// IsActive indicates if the clinic is operational
	IsActive bool `db:"is_active" json:"isActive"`

	// IsDefault indicates if this is the default clinic for new documents
	IsDefault bool `db:"is_default" json:"isDefault"`
}

// NewClinic creates a new Clinic with required fields.
func NewClinic(code, name string, legalEntityID id.ID) *Clinic {
	return &Clinic{
		Catalog:       entity.NewCatalog(code, name),
		LegalEntityID: legalEntityID,
		IsActive:      true,
	}
}

// Validate implements entity.Validatable interface.
func (c *Clinic) Validate(ctx context.Context) error {
	if err := c.Catalog.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(c.LegalEntityID) {
		return apperror.NewValidation("legal entity is required").
			WithDetail("field", "legalEntityId")
	}

	return nil
}

// CanOperate returns true if documents may be created on this clinic.
func (c *Clinic) CanOperate() bool {
	return c.IsActive && !c.IsFolder
}
