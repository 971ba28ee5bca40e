package item

import (
	"context"
	"fmt"
	"time"

	"clinova/internal/core/apperror"
	"clinova/internal/core/id"
	coreseq "clinova/internal/core/sequence"
	"clinova/internal/domain"
)

// Service provides business logic for Item catalog.
// Uses composition with domain.CatalogService for common CRUD operations.
type Service struct {
	*domain.CatalogService[*Item]
	repo      Repository
	sequences coreseq.Allocator
}

// NewService creates a new Item service.
// In Database-per-Tenant, TxManager is obtained from context.
func NewService(repo Repository, sequences coreseq.Allocator) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Item]{
		Repo:       repo,
		EntityName: "item",
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
func (s *Service) prepareForCreate(ctx context.Context, it *Item) error {
	if it.Code == "" {
		series, err := s.sequences.EnsureSeries(ctx, id.Nil(), "item", "default")
		if err != nil {
			return fmt.Errorf("ensure item code series: %w", err)
		}
		alloc, err := s.sequences.Allocate(ctx, series, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		it.Code = alloc.Formatted
	}

	return s.checkBarcode(ctx, it)
}

// prepareForUpdate handles uniqueness checks.
func (s *Service) prepareForUpdate(ctx context.Context, it *Item) error {
	return s.checkBarcode(ctx, it)
}

func (s *Service) checkBarcode(ctx context.Context, it *Item) error {
	if it.Barcode == nil || *it.Barcode == "" {
		return nil
	}
	existing, err := s.repo.FindByBarcode(ctx, *it.Barcode)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != it.ID {
		return apperror.NewConflict("item with this barcode already exists").
			WithDetail("barcode", *it.Barcode)
	}
	return nil
}

// --- Entity-specific methods ---

// FindByBarcode retrieves item by barcode.
func (s *Service) FindByBarcode(ctx context.Context, barcode string) (*Item, error) {
	return s.repo.FindByBarcode(ctx, barcode)
}

// ListByCategory retrieves items of a category.
func (s *Service) ListByCategory(ctx context.Context, categoryID id.ID, filter domain.ListFilter) (domain.ListResult[*Item], error) {
	return s.repo.ListByCategory(ctx, categoryID, filter)
}
