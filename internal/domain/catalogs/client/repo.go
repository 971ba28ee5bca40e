package client

import (
	"context"

	"clinova/internal/core/id"
	"clinova/internal/domain"
)

// Repository defines the interface for Client persistence.
type Repository interface {
	domain.CatalogRepository[*Client]

	// FindByTaxID retrieves client by tax ID (unique within tenant).
	FindByTaxID(ctx context.Context, taxID string) (*Client, error)

	// FindByPhone retrieves client by phone.
	FindByPhone(ctx context.Context, phone string) (*Client, error)

	// GetForUpdate retrieves client with row lock (for transactional updates).
	GetForUpdate(ctx context.Context, id id.ID) (*Client, error)
}
