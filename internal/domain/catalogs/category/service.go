package category

import (
	"context"
	"fmt"
	"time"

	"clinova/internal/core/id"
	coreseq "clinova/internal/core/sequence"
	"clinova/internal/domain"
)

// Service provides business logic for Category catalog.
type Service struct {
	*domain.CatalogService[*Category]
	repo      Repository
	sequences coreseq.Allocator
}

// NewService creates a new Category service.
func NewService(repo Repository, sequences coreseq.Allocator) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Category]{
		Repo:       repo,
		EntityName: "category",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		sequences:      sequences,
	}

	base.Hooks().OnBeforeCreate(svc.prepareForCreate)

	return svc
}

// prepareForCreate handles code generation.
func (s *Service) prepareForCreate(ctx context.Context, c *Category) error {
	if c.Code == "" {
		series, err := s.sequences.EnsureSeries(ctx, id.Nil(), "category", "default")
		if err != nil {
			return fmt.Errorf("ensure category code series: %w", err)
		}
		alloc, err := s.sequences.Allocate(ctx, series, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		c.Code = alloc.Formatted
	}
	return nil
}

// --- Entity-specific methods ---

// ListByKind retrieves categories of one kind.
func (s *Service) ListByKind(ctx context.Context, kind Kind, filter domain.ListFilter) (domain.ListResult[*Category], error) {
	return s.repo.ListByKind(ctx, kind, filter)
}
