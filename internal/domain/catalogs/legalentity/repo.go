package legalentity

import (
	"context"

	"clinova/internal/domain"
)

// Repository defines the interface for LegalEntity persistence.
type Repository interface {
	domain.CatalogRepository[*LegalEntity]

	// GetDefault retrieves the default legal entity.
	GetDefault(ctx context.Context) (*LegalEntity, error)

	// FindByTaxID retrieves legal entity by tax ID (unique within tenant).
	FindByTaxID(ctx context.Context, taxID string) (*LegalEntity, error)

	// ClearDefault clears the default flag on all legal entities (before setting new default).
	ClearDefault(ctx context.Context) error
}
