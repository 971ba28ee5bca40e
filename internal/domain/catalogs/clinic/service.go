package clinic

import (
	"context"
	"fmt"
	"time"

	"clinova/internal/core/id"
	coreseq "clinova/internal/core/sequence"
	"clinova/internal/domain"
)

// Service provides business logic for Clinic catalog.
// Uses composition with domain.CatalogService for common CRUD operations.
type Service struct {
	*domain.CatalogService[*Clinic]
	repo      Repository
	sequences coreseq.Allocator
}

// NewService creates a new Clinic service.
// In Database-per-Tenant, TxManager is obtained from context.
func NewService(repo Repository, sequences coreseq.Allocator) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Clinic]{
		Repo:       repo,
		EntityName: "clinic",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		sequences:      sequences,
	}

	base.Hooks().OnBeforeCreate(svc.prepareForCreate)
	base.Hooks().OnBeforeUpdate(svc.prepareForUpdate)

	return svc
}

// prepareForCreate handles code generation and the default flag.
func (s *Service) prepareForCreate(ctx context.Context, c *Clinic) error {
	if c.Code == "" {
		series, err := s.sequences.EnsureSeries(ctx, id.Nil(), "clinic", "default")
		if err != nil {
			return fmt.Errorf("ensure clinic code series: %w", err)
		}
		alloc, err := s.sequences.Allocate(ctx, series, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		c.Code = alloc.Formatted
	}

	if c.IsDefault {
		if err := s.repo.ClearDefault(ctx); err != nil {
			return err
		}
	}

	return nil
}

// prepareForUpdate handles the default flag.
func (s *Service) prepareForUpdate(ctx context.Context, c *Clinic) error {
	if c.IsDefault {
		if err := s.repo.ClearDefault(ctx); err != nil {
			return err
		}
	}
	return nil
}

// --- Entity-specific methods ---

// ListByLegalEntity retrieves all clinics of a legal entity.
func (s *Service) ListByLegalEntity(ctx context.Context, legalEntityID id.ID) ([]*Clinic, error) {
	return s.repo.ListByLegalEntity(ctx, legalEntityID)
}
