package vattype

import (
	"context"

	"clinova/internal/core/apperror"
	"clinova/internal/domain"
)

// Service provides business logic for VATType catalog.
type Service struct {
	*domain.CatalogService[*VATType]
	repo Repository
}

// NewService creates a new VATType service.
func NewService(repo Repository) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*VATType]{
		Repo:       repo,
		EntityName: "VAT type",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
	}

	base.Hooks().OnBeforeCreate(svc.prepareForWrite)
	base.Hooks().OnBeforeUpdate(svc.prepareForWrite)
	base.Hooks().OnBeforeDelete(svc.validateBeforeDelete)

	return svc
}

// prepareForWrite handles the default flag.
func (s *Service) prepareForWrite(ctx context.Context, v *VATType) error {
	if v.IsDefault {
		if err := s.repo.ClearDefault(ctx); err != nil {
			return err
		}
	}
	return nil
}

// validateBeforeDelete prevents deletion of the default VAT type.
func (s *Service) validateBeforeDelete(ctx context.Context, v *VATType) error {
	if v.IsDefault {
		return apperror.NewValidation("cannot delete default VAT type")
	}
	return nil
}

// --- Entity-specific methods ---

// GetDefault retrieves the default VAT type.
func (s *Service) GetDefault(ctx context.Context) (*VATType, error) {
	return s.repo.GetDefault(ctx)
}
