package paymentmethod

import (
	"context"

	"clinova/internal/domain"
)

// Repository defines the interface for PaymentMethod persistence.
type Repository interface {
	domain.CatalogRepository[*PaymentMethod]

	// ListActive retrieves methods currently accepted at the till.
	ListActive(ctx context.Context) ([]*PaymentMethod, error)
}
