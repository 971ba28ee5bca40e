package client

import (
	"context"
	"fmt"
	"time"

	"clinova/internal/core/apperror"
	"clinova/internal/core/id"
	coreseq "clinova/internal/core/sequence"
	"clinova/internal/domain"
)

// Service provides business logic for Client catalog.
// Uses composition with domain.CatalogService for common CRUD operations.
type Service struct {
	*domain.CatalogService[*Client]
	repo      Repository
	sequences coreseq.Allocator
}

// NewService creates a new Client service.
// In Database-per-Tenant, TxManager is obtained from context.
func NewService(repo Repository, sequences coreseq.Allocator) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Client]{
		Repo:       repo,
		EntityName: "client",
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

// prepareForCreate handles code generation and uniqueness checks.
func (s *Service) prepareForCreate(ctx context.Context, c *Client) error {
	if c.Code == "" {
		series, err := s.sequences.EnsureSeries(ctx, id.Nil(), "client", "default")
		if err != nil {
			return fmt.Errorf("ensure client code series: %w", err)
		}
		alloc, err := s.sequences.Allocate(ctx, series, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		c.Code = alloc.Formatted
	}

	return s.checkUniqueness(ctx, c)
}

// prepareForUpdate handles uniqueness checks.
func (s *Service) prepareForUpdate(ctx context.Context, c *Client) error {
	return s.checkUniqueness(ctx, c)
}

func (s *Service) checkUniqueness(ctx context.Context, c *Client) error {
	if c.TaxID != nil && *c.TaxID != "" {
		exists, err := s.checkTaxIDExists(ctx, *c.TaxID, c.ID)
		if err != nil {
			return err
		}
		if exists {
			return apperror.NewConflict("client with this tax ID already exists").
				WithDetail("taxId", *c.TaxID)
		}
	}
	return nil
}

// --- Entity-specific methods ---

// FindByTaxID retrieves client by tax ID.
func (s *Service) FindByTaxID(ctx context.Context, taxID string) (*Client, error) {
	return s.repo.FindByTaxID(ctx, taxID)
}

// FindByPhone retrieves client by phone.
func (s *Service) FindByPhone(ctx context.Context, phone string) (*Client, error) {
	return s.repo.FindByPhone(ctx, phone)
}

func (s *Service) checkTaxIDExists(ctx context.Context, taxID string, excludeID id.ID) (bool, error) {
	existing, err := s.repo.FindByTaxID(ctx, taxID)
	if err != nil {
		// Not found is OK; other errors must be propagated (DB errors, timeouts, etc.).
		if apperror.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return existing.ID != excludeID, nil
}
