package paymentmethod

import (
	"context"

	"clinova/internal/domain"
)

// Service provides business logic for PaymentMethod catalog.
type Service struct {
	*domain.CatalogService[*PaymentMethod]
	repo Repository
}

// NewService creates a new PaymentMethod service.
func NewService(repo Repository) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*PaymentMethod]{
		Repo:       repo,
		EntityName: "payment method",
	})

	return &Service{
		CatalogService: base,
		repo:           repo,
	}
}

// ListActive retrieves methods currently accepted at the till.
func (s *Service) ListActive(ctx context.Context) ([]*PaymentMethod, error) {
	return s.repo.ListActive(ctx)
}
