package expense

import (
	"context"
	"fmt"
	"time"

	"clinova/internal/core/apperror"
	"clinova/internal/core/id"
	coreseq "clinova/internal/core/sequence"
	"clinova/internal/core/tenant"
	"clinova/internal/core/tx"
	"clinova/internal/domain"
	"clinova/internal/domain/documents"
	"clinova/internal/domain/posting"
	"clinova/pkg/logger"
)

// Service provides business operations for expense documents.
type Service struct {
	repo      Repository
	engine    *posting.Engine
	sequences coreseq.Allocator
	publisher documents.EventPublisher // optional
	txManager tx.Manager               // Optional. If nil, obtained from context (DB-per-tenant).
	hooks     *domain.HookRegistry[*Expense]
}

// NewService creates a new expense service.
func NewService(
	repo Repository,
	engine *posting.Engine,
	sequences coreseq.Allocator,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:      repo,
		engine:    engine,
		sequences: sequences,
		txManager: txManager,
		hooks:     domain.NewHookRegistry[*Expense](),
	}
}

// WithPublisher attaches an outbox publisher for domain events.
func (s *Service) WithPublisher(p documents.EventPublisher) *Service {
	s.publisher = p
	return s
}

// Hooks returns the hook registry for registering callbacks.
func (s *Service) Hooks() *domain.HookRegistry[*Expense] {
	return s.hooks
}

func (s *Service) getTxManager(ctx context.Context) (tx.Manager, error) {
	if s.txManager != nil {
		return s.txManager, nil
	}
	return tenant.GetTxManager(ctx)
}

// Create creates a new draft expense.
func (s *Service) Create(ctx context.Context, doc *Expense) error {
	if err := s.hooks.RunBeforeCreate(ctx, doc); err != nil {
		return err
	}

	if err := doc.Validate(ctx); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, doc); err != nil {
		return fmt.Errorf("create document: %w", err)
	}

	if err := s.hooks.RunAfterCreate(ctx, doc); err != nil {
		logger.Warn(ctx, "after-create hook failed", "error", err)
	}

	logger.Info(ctx, "expense created", "id", doc.ID)
	return nil
}

// GetByID retrieves an expense.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*Expense, error) {
	return s.repo.GetByID(ctx, docID)
}

// Update updates a draft expense.
func (s *Service) Update(ctx context.Context, doc *Expense) error {
	if err := s.hooks.RunBeforeUpdate(ctx, doc); err != nil {
		return err
	}

	if err := doc.CanModify(); err != nil {
		return err
	}

	if err := doc.Validate(ctx); err != nil {
		return err
	}

	return s.repo.Update(ctx, doc)
}

// Delete soft-deletes a draft expense.
func (s *Service) Delete(ctx context.Context, docID id.ID) error {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return err
	}

	if doc.Posted {
		return doc.CanModify()
	}

	return s.repo.Delete(ctx, docID)
}

// Approve finalizes an expense: allocates the document number and generates
// the journal entry. Approving an already approved expense is a no-op.
func (s *Service) Approve(ctx context.Context, docID id.ID) (*Expense, error) {
	txm, err := s.getTxManager(ctx)
	if err != nil {
		return nil, apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}

	var doc *Expense
	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		doc, err = s.repo.GetForUpdate(ctx, docID)
		if err != nil {
			return err
		}

		if doc.Posted {
			return nil
		}

		if err := doc.Validate(ctx); err != nil {
			return err
		}

		now := time.Now().UTC()
		doc.SpentAt = &now

		if doc.Number == "" {
			if err := s.allocateNumber(ctx, txm, doc); err != nil {
				return err
			}
		}

		doc.MarkPosted()
		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update document: %w", err)
		}

		if _, err := s.engine.Generate(ctx, doc.ToEvent(), posting.Options{}); err != nil {
			return err
		}

		if s.publisher != nil {
			err := s.publisher.Publish(ctx, documents.Event{
				AggregateType: doc.GetDocumentType(),
				AggregateID:   doc.ID,
				EventType:     "ExpenseApproved",
				Payload: map[string]any{
					"number": doc.Number,
					"amount": doc.Amount.StringFixed(2),
				},
			})
			if err != nil {
				return fmt.Errorf("publish event: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "expense approved",
		"id", doc.ID,
		"number", doc.Number,
		"amount", doc.Amount.StringFixed(2),
	)
	return doc, nil
}

func (s *Service) allocateNumber(ctx context.Context, txm tx.Manager, doc *Expense) error {
	series, err := s.sequences.EnsureSeries(ctx, doc.ClinicID, "expense", "default")
	if err != nil {
		return fmt.Errorf("ensure expense series: %w", err)
	}

	_, err = coreseq.WithRetry(ctx, s.sequences, series, doc.Date, coreseq.DefaultMaxAttempts,
		func(ctx context.Context, alloc coreseq.Allocation) error {
			doc.Number = alloc.Formatted
			// Savepoint keeps a uniqueness conflict from poisoning the outer
			// transaction before the next attempt.
			return txm.RunInTransaction(ctx, func(ctx context.Context) error {
				return s.repo.SetNumber(ctx, doc.ID, doc.Number)
			})
		})
	return err
}

// RegenerateEntry replaces the journal entry of an approved expense.
func (s *Service) RegenerateEntry(ctx context.Context, docID id.ID) error {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return err
	}
	if !doc.Posted {
		return apperror.NewBusinessRule(
			apperror.CodeBusinessRule,
			"Cannot generate journal entry for a draft expense",
		).WithDetail("document_id", docID.String())
	}

	_, err = s.engine.Generate(ctx, doc.ToEvent(), posting.Options{Regenerate: true})
	return err
}

// List retrieves expenses with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Expense], error) {
	return s.repo.List(ctx, filter)
}
