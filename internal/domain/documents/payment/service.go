package payment

import (
	"context"
	"fmt"
	"time"

	"clinova/internal/core/apperror"
	"clinova/internal/core/entity"
	"clinova/internal/core/id"
	coreseq "clinova/internal/core/sequence"
	"clinova/internal/core/tenant"
	"clinova/internal/core/tx"
	"clinova/internal/domain"
	"clinova/internal/domain/documents"
	"clinova/internal/domain/posting"
	"clinova/internal/domain/registers/debt"
	"clinova/pkg/logger"
)

// Service provides business operations for payment documents.
type Service struct {
	repo      Repository
	engine    *posting.Engine
	sequences coreseq.Allocator
	debts     *debt.Service
	publisher documents.EventPublisher // optional
	txManager tx.Manager               // Optional. If nil, obtained from context (DB-per-tenant).
	hooks     *domain.HookRegistry[*Payment]
}

// NewService creates a new payment service.
func NewService(
	repo Repository,
	engine *posting.Engine,
	sequences coreseq.Allocator,
	debts *debt.Service,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:      repo,
		engine:    engine,
		sequences: sequences,
		debts:     debts,
		txManager: txManager,
		hooks:     domain.NewHookRegistry[*Payment](),
	}
}

// WithPublisher attaches an outbox publisher for domain events.
func (s *Service) WithPublisher(p documents.EventPublisher) *Service {
	s.publisher = p
	return s
}

// Hooks returns the hook registry for registering callbacks.
func (s *Service) Hooks() *domain.HookRegistry[*Payment] {
	return s.hooks
}

func (s *Service) getTxManager(ctx context.Context) (tx.Manager, error) {
	if s.txManager != nil {
		return s.txManager, nil
	}
	return tenant.GetTxManager(ctx)
}

// Create creates a new draft payment.
func (s *Service) Create(ctx context.Context, doc *Payment) error {
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

	logger.Info(ctx, "payment created", "id", doc.ID)
	return nil
}

// GetByID retrieves a payment.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*Payment, error) {
	return s.repo.GetByID(ctx, docID)
}

// Update updates a draft payment.
func (s *Service) Update(ctx context.Context, doc *Payment) error {
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

// Delete soft-deletes a draft payment.
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

// Confirm finalizes a payment: verifies the client owes at least the paid
// amount (the client's balance row stays locked until commit), allocates the
// document number, settles the debt and generates the journal entry.
// Confirming an already confirmed payment is a no-op.
func (s *Service) Confirm(ctx context.Context, docID id.ID) (*Payment, error) {
	txm, err := s.getTxManager(ctx)
	if err != nil {
		return nil, apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}

	var doc *Payment
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

		if err := s.debts.CheckCollectible(ctx, doc.ClinicID, doc.ClientID, doc.Amount); err != nil {
			return err
		}

		now := time.Now().UTC()
		doc.PaidAt = &now

		if doc.Number == "" {
			if err := s.allocateNumber(ctx, txm, doc); err != nil {
				return err
			}
		}

		doc.MarkPosted()
		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update document: %w", err)
		}

		movement := entity.NewDebtMovement(
			doc.ID, doc.GetDocumentType(), doc.PostedVersion,
			doc.Date, entity.RecordTypeExpense,
			doc.ClinicID, doc.ClientID, doc.Amount,
		)
		if err := s.debts.RecordMovements(ctx, []entity.DebtMovement{movement}); err != nil {
			return err
		}

		if _, err := s.engine.Generate(ctx, doc.ToEvent(), posting.Options{}); err != nil {
			return err
		}

		if s.publisher != nil {
			err := s.publisher.Publish(ctx, documents.Event{
				AggregateType: doc.GetDocumentType(),
				AggregateID:   doc.ID,
				EventType:     "PaymentConfirmed",
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

	logger.Info(ctx, "payment confirmed",
		"id", doc.ID,
		"number", doc.Number,
		"amount", doc.Amount.StringFixed(2),
	)
	return doc, nil
}

func (s *Service) allocateNumber(ctx context.Context, txm tx.Manager, doc *Payment) error {
	series, err := s.sequences.EnsureSeries(ctx, doc.ClinicID, "payment", "default")
	if err != nil {
		return fmt.Errorf("ensure payment series: %w", err)
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

// RegenerateEntry replaces the journal entry of a confirmed payment.
func (s *Service) RegenerateEntry(ctx context.Context, docID id.ID) error {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return err
	}
	if !doc.Posted {
		return apperror.NewBusinessRule(
			apperror.CodeBusinessRule,
			"Cannot generate journal entry for a draft payment",
		).WithDetail("document_id", docID.String())
	}

	_, err = s.engine.Generate(ctx, doc.ToEvent(), posting.Options{Regenerate: true})
	return err
}

// List retrieves payments with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Payment], error) {
	return s.repo.List(ctx, filter)
}
