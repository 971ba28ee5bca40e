package vattype

import (
	"context"

	"clinova/internal/domain"
)

// Repository defines the interface for VATType persistence.
type Repository interface {
	domain.CatalogRepository[*VATType]

	// GetDefault retrieves the default VAT type.
	GetDefault(ctx context.Context) (*VATType, error)

	// ClearDefault clears the default flag on all VAT types (before setting new default).
	ClearDefault(ctx context.Context) error
}
