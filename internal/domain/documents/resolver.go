package documents

import (
	"context"
	"fmt"

	"clinova/internal/core/id"
	"clinova/internal/domain/catalogs/clinic"
	"clinova/internal/domain/catalogs/legalentity"
)

// ScopeResolver determines the legal entity a document belongs to.
// Every document originates at a clinic; the fiscal scope follows the clinic
// unless set explicitly.
type ScopeResolver struct {
	clinics  clinic.Repository
	entities legalentity.Repository
}

// NewScopeResolver creates a new ScopeResolver.
func NewScopeResolver(clinics clinic.Repository, entities legalentity.Repository) *ScopeResolver {
	return &ScopeResolver{
		clinics:  clinics,
		entities: entities,
	}
}

// ResolveLegalEntity determines the legal entity for a document based on
// explicit input, the clinic's owner, or the tenant default.
func (r *ScopeResolver) ResolveLegalEntity(
	ctx context.Context,
	explicitLegalEntityID id.ID,
	clinicID id.ID,
) (id.ID, error) {
	// 1. Explicit legal entity in document
	if !id.IsNil(explicitLegalEntityID) {
		return explicitLegalEntityID, nil
	}

	// 2. Clinic's owning legal entity
	if !id.IsNil(clinicID) {
		c, err := r.clinics.GetByID(ctx, clinicID)
		if err == nil && c != nil && !id.IsNil(c.LegalEntityID) {
			return c.LegalEntityID, nil
		}
	}

	// 3. Tenant default
	def, err := r.entities.GetDefault(ctx)
	if err != nil {
		return id.Nil(), fmt.Errorf("failed to determine legal entity: %w", err)
	}

	return def.ID, nil
}
