package legalentity

import (
	"context"

	"clinova/internal/core/apperror"
	"clinova/internal/core/id"
	"clinova/internal/domain"
)

// Service provides business logic for LegalEntity catalog.
// Uses composition with domain.CatalogService for common CRUD operations.
type Service struct {
	*domain.CatalogService[*LegalEntity]
	repo Repository
}

// NewService creates a new LegalEntity service.
// In Database-per-Tenant, TxManager is obtained from context.
func NewService(repo Repository) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*LegalEntity]{
		Repo:       repo,
		EntityName: "legal entity",
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

// prepareForWrite handles tax ID uniqueness and the default flag.
func (s *Service) prepareForWrite(ctx context.Context, le *LegalEntity) error {
	if le.TaxID != nil && *le.TaxID != "" {
		exists, err := s.checkTaxIDExists(ctx, *le.TaxID, le.ID)
		if err != nil {
			return err
		}
		if exists {
			return apperror.NewConflict("legal entity with this tax ID already exists").
				WithDetail("taxId", *le.TaxID)
		}
	}

	if le.IsDefault {
		if err := s.repo.ClearDefault(ctx); err != nil {
			return err
		}
	}

	return nil
}

// validateBeforeDelete prevents deleting the default legal entity.
func (s *Service) validateBeforeDelete(ctx context.Context, le *LegalEntity) error {
	if le.IsDefault {
		return apperror.NewValidation("cannot delete default legal entity")
	}
	return nil
}

// --- Entity-specific methods ---

// GetDefault retrieves the default legal entity.
func (s *Service) GetDefault(ctx context.Context) (*LegalEntity, error) {
	return s.repo.GetDefault(ctx)
}

// FindByTaxID retrieves legal entity by tax ID.
func (s *Service) FindByTaxID(ctx context.Context, taxID string) (*LegalEntity, error) {
	return s.repo.FindByTaxID(ctx, taxID)
}

func (s *Service) checkTaxIDExists(ctx context.Context, taxID string, excludeID id.ID) (bool, error) {
	existing, err := s.repo.FindByTaxID(ctx, taxID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return existing.ID != excludeID, nil
}
