package clinic

import (
	"context"

	"clinova/internal/core/id"
	"clinova/internal/domain"
)

// Repository defines the interface for Clinic persistence.
type Repository interface {
	domain.CatalogRepository[*Clinic]

	// GetForUpdate retrieves clinic with row lock (for transactional updates).
	GetForUpdate(ctx context.Context, id id.ID) (*Clinic, error)

	// ListByLegalEntity retrieves all clinics of a legal entity.
	ListByLegalEntity(ctx context.Context, legalEntityID id.ID) ([]*Clinic, error)

	// ClearDefault clears the default flag on all clinics (before setting new default).
	ClearDefault(ctx context.Context) error
}
