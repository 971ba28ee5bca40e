package ticket

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

// Service provides business operations for ticket documents.
// In Database-per-Tenant architecture, TxManager is obtained from context.
type Service struct {
	repo      Repository
	engine    *posting.Engine
	sequences coreseq.Allocator
	debts     *debt.Service
	publisher documents.EventPublisher // optional
	txManager tx.Manager               // Optional. If nil, obtained from context (DB-per-tenant).
	hooks     *domain.HookRegistry[*Ticket]
}

// NewService creates a new ticket service.
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
		hooks:     domain.NewHookRegistry[*Ticket](),
	}
}

// WithPublisher attaches an outbox publisher for domain events.
func (s *Service) WithPublisher(p documents.EventPublisher) *Service {
	s.publisher = p
	return s
}

// Hooks returns the hook registry for registering callbacks.
func (s *Service) Hooks() *domain.HookRegistry[*Ticket] {
	return s.hooks
}

func (s *Service) getTxManager(ctx context.Context) (tx.Manager, error) {
	if s.txManager != nil {
		return s.txManager, nil
	}
	return tenant.GetTxManager(ctx)
}

// Create creates a new draft ticket.
func (s *Service) Create(ctx context.Context, doc *Ticket) error {
	if err := s.hooks.RunBeforeCreate(ctx, doc); err != nil {
		return err
	}

	if err := doc.Validate(ctx); err != nil {
		return err
	}

	txm, err := s.getTxManager(ctx)
	if err != nil {
		return apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}
	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, doc); err != nil {
			return fmt.Errorf("create document: %w", err)
		}
		if err := s.repo.SaveLines(ctx, doc.ID, doc.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		if err := s.repo.SavePayments(ctx, doc.ID, doc.Payments); err != nil {
			return fmt.Errorf("save payments: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.hooks.RunAfterCreate(ctx, doc); err != nil {
		logger.Warn(ctx, "after-create hook failed", "error", err)
	}

	logger.Info(ctx, "ticket created", "id", doc.ID)
	return nil
}

// GetByID retrieves a ticket with lines and payments.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*Ticket, error) {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	return s.loadParts(ctx, doc)
}

func (s *Service) loadParts(ctx context.Context, doc *Ticket) (*Ticket, error) {
	lines, err := s.repo.GetLines(ctx, doc.ID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	doc.Lines = lines

	payments, err := s.repo.GetPayments(ctx, doc.ID)
	if err != nil {
		return nil, fmt.Errorf("get payments: %w", err)
	}
	doc.Payments = payments

	return doc, nil
}

// Update updates a draft ticket.
func (s *Service) Update(ctx context.Context, doc *Ticket) error {
	if err := s.hooks.RunBeforeUpdate(ctx, doc); err != nil {
		return err
	}

	if err := doc.CanModify(); err != nil {
		return err
	}

	if err := doc.Validate(ctx); err != nil {
		return err
	}

	txm, err := s.getTxManager(ctx)
	if err != nil {
		return apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}
	return txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update document: %w", err)
		}
		if err := s.repo.SaveLines(ctx, doc.ID, doc.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		if err := s.repo.SavePayments(ctx, doc.ID, doc.Payments); err != nil {
			return fmt.Errorf("save payments: %w", err)
		}
		return nil
	})
}

// Delete soft-deletes a draft ticket. Closed tickets cannot be deleted.
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

// Close finalizes a ticket: allocates the document number, accrues client
// debt for the unpaid remainder and generates the journal entry. Everything
// commits or rolls back together. Closing an already closed ticket is a no-op.
func (s *Service) Close(ctx context.Context, docID id.ID) (*Ticket, error) {
	txm, err := s.getTxManager(ctx)
	if err != nil {
		return nil, apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}

	var doc *Ticket
	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		doc, err = s.repo.GetForUpdate(ctx, docID)
		if err != nil {
			return err
		}
		if doc, err = s.loadParts(ctx, doc); err != nil {
			return err
		}

		if doc.Posted {
			return nil
		}

		if err := doc.Validate(ctx); err != nil {
			return err
		}

		now := time.Now().UTC()
		doc.ClosedAt = &now

		if doc.Number == "" {
			if err := s.allocateNumber(ctx, txm, doc); err != nil {
				return err
			}
		}

		doc.MarkPosted()
		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update document: %w", err)
		}

		if pending := doc.Pending(); pending.IsPositive() {
			movement := entity.NewDebtMovement(
				doc.ID, doc.GetDocumentType(), doc.PostedVersion,
				doc.Date, entity.RecordTypeReceipt,
				doc.ClinicID, *doc.ClientID, pending,
			)
			if err := s.debts.RecordMovements(ctx, []entity.DebtMovement{movement}); err != nil {
				return err
			}
		}

		if _, err := s.engine.Generate(ctx, doc.ToEvent(), posting.Options{}); err != nil {
			return err
		}

		if s.publisher != nil {
			err := s.publisher.Publish(ctx, documents.Event{
				AggregateType: doc.GetDocumentType(),
				AggregateID:   doc.ID,
				EventType:     "TicketClosed",
				Payload: map[string]any{
					"number": doc.Number,
					"total":  doc.Total.StringFixed(2),
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

	logger.Info(ctx, "ticket closed",
		"id", doc.ID,
		"number", doc.Number,
		"total", doc.Total.StringFixed(2),
	)
	return doc, nil
}

// allocateNumber draws document numbers until one sticks. A uniqueness
// conflict burns the number and retries; any other failure releases it.
func (s *Service) allocateNumber(ctx context.Context, txm tx.Manager, doc *Ticket) error {
	series, err := s.sequences.EnsureSeries(ctx, doc.ClinicID, "ticket", "default")
	if err != nil {
		return fmt.Errorf("ensure ticket series: %w", err)
	}

	_, err = coreseq.WithRetry(ctx, s.sequences, series, doc.Date, coreseq.DefaultMaxAttempts,
		func(ctx context.Context, alloc coreseq.Allocation) error {
			doc.Number = alloc.Formatted
			// Nested transaction = savepoint: a uniqueness conflict must not
			// poison the outer transaction before the next attempt.
			return txm.RunInTransaction(ctx, func(ctx context.Context) error {
				return s.repo.SetNumber(ctx, doc.ID, doc.Number)
			})
		})
	return err
}

// RegenerateEntry replaces the journal entry of a closed ticket.
func (s *Service) RegenerateEntry(ctx context.Context, docID id.ID) error {
	doc, err := s.GetByID(ctx, docID)
	if err != nil {
		return err
	}
	if !doc.Posted {
		return apperror.NewBusinessRule(
			apperror.CodeBusinessRule,
			"Cannot generate journal entry for a draft ticket",
		).WithDetail("document_id", docID.String())
	}

	_, err = s.engine.Generate(ctx, doc.ToEvent(), posting.Options{Regenerate: true})
	return err
}

// List retrieves tickets with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Ticket], error) {
	return s.repo.List(ctx, filter)
}
