package invoice

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
	"clinova/internal/domain/documents/ticket"
	"clinova/internal/domain/posting"
	"clinova/internal/domain/registers/debt"
	"clinova/pkg/logger"
)

// Service provides business operations for invoice documents.
type Service struct {
	repo      Repository
	tickets   ticket.Repository
	engine    *posting.Engine
	sequences coreseq.Allocator
	debts     *debt.Service
	publisher documents.EventPublisher // optional
	txManager tx.Manager               // Optional. If nil, obtained from context (DB-per-tenant).
	hooks     *domain.HookRegistry[*Invoice]
}

// NewService creates a new invoice service.
func NewService(
	repo Repository,
	tickets ticket.Repository,
	engine *posting.Engine,
	sequences coreseq.Allocator,
	debts *debt.Service,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:      repo,
		tickets:   tickets,
		engine:    engine,
		sequences: sequences,
		debts:     debts,
		txManager: txManager,
		hooks:     domain.NewHookRegistry[*Invoice](),
	}
}

// WithPublisher attaches an outbox publisher for domain events.
func (s *Service) WithPublisher(p documents.EventPublisher) *Service {
	s.publisher = p
	return s
}

// Hooks returns the hook registry for registering callbacks.
func (s *Service) Hooks() *domain.HookRegistry[*Invoice] {
	return s.hooks
}

func (s *Service) getTxManager(ctx context.Context) (tx.Manager, error) {
	if s.txManager != nil {
		return s.txManager, nil
	}
	return tenant.GetTxManager(ctx)
}

// Create creates a new draft invoice.
func (s *Service) Create(ctx context.Context, doc *Invoice) error {
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

	logger.Info(ctx, "invoice created", "id", doc.ID)
	return nil
}

// CreateFromTicket drafts an invoice from a closed ticket, copying its lines
// and payments. A ticket can be invoiced at most once.
func (s *Service) CreateFromTicket(ctx context.Context, ticketID, clientID id.ID) (*Invoice, error) {
	src, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !src.Posted {
		return nil, apperror.NewBusinessRule(
			apperror.CodeBusinessRule,
			"Only closed tickets can be invoiced",
		).WithDetail("ticket_id", ticketID.String())
	}

	if existing, err := s.repo.FindByTicket(ctx, ticketID); err == nil && existing != nil {
		return nil, apperror.NewDuplicate("Invoice", "ticket", src.Number).
			WithDetail("invoice_id", existing.ID.String())
	} else if err != nil && !apperror.IsNotFound(err) {
		return nil, err
	}

	if id.IsNil(clientID) && src.ClientID != nil {
		clientID = *src.ClientID
	}

	doc := NewInvoice(src.LegalEntityID, src.ClinicID, clientID)
	doc.TicketID = &ticketID
	doc.Date = src.Date

	srcLines, err := s.tickets.GetLines(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("get ticket lines: %w", err)
	}
	for _, l := range srcLines {
		doc.AddLine(l.ItemID, l.CategoryID, l.VATTypeID, l.Description, l.Quantity, l.UnitPrice, l.VATRate)
		if l.DiscountAmount.IsPositive() {
			line := &doc.Lines[len(doc.Lines)-1]
			line.DiscountType = l.DiscountType
			line.DiscountAmount = l.DiscountAmount
			line.Amount = line.Amount.Sub(l.DiscountAmount)
		}
	}
	doc.recalculateTotals()

	srcPayments, err := s.tickets.GetPayments(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("get ticket payments: %w", err)
	}
	for _, p := range srcPayments {
		doc.AddPayment(p.MethodID, p.Amount)
	}

	if err := s.Create(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// GetByID retrieves an invoice with lines and payments.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*Invoice, error) {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	return s.loadParts(ctx, doc)
}

func (s *Service) loadParts(ctx context.Context, doc *Invoice) (*Invoice, error) {
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

// Update updates a draft invoice.
func (s *Service) Update(ctx context.Context, doc *Invoice) error {
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

// Delete soft-deletes a draft invoice. Issued invoices cannot be deleted.
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

// Issue finalizes an invoice: allocates the fiscal number from the legal
// entity's series, accrues client debt for the unpaid remainder of a
// standalone invoice and generates the journal entry. Issuing an already
// issued invoice is a no-op.
func (s *Service) Issue(ctx context.Context, docID id.ID) (*Invoice, error) {
	txm, err := s.getTxManager(ctx)
	if err != nil {
		return nil, apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}

	var doc *Invoice
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
		doc.IssuedAt = &now

		if doc.Number == "" {
			if err := s.allocateNumber(ctx, txm, doc); err != nil {
				return err
			}
		}

		doc.MarkPosted()
		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update document: %w", err)
		}

		// A ticket already accrued the debt for its sale; only standalone
		// invoices add to the receivable register here.
		if pending := doc.Pending(); pending.IsPositive() && doc.TicketID == nil {
			movement := entity.NewDebtMovement(
				doc.ID, doc.GetDocumentType(), doc.PostedVersion,
				doc.Date, entity.RecordTypeReceipt,
				doc.ClinicID, doc.ClientID, pending,
			)
			if err := s.debts.RecordMovements(ctx, []entity.DebtMovement{movement}); err != nil {
				return err
			}
		}

		// The ticket's entry already posted the sale; the invoice of a ticket
		// is a fiscal document only.
		if doc.TicketID == nil {
			if _, err := s.engine.Generate(ctx, doc.ToEvent(), posting.Options{}); err != nil {
				return err
			}
		}

		if s.publisher != nil {
			err := s.publisher.Publish(ctx, documents.Event{
				AggregateType: doc.GetDocumentType(),
				AggregateID:   doc.ID,
				EventType:     "InvoiceIssued",
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

	logger.Info(ctx, "invoice issued",
		"id", doc.ID,
		"number", doc.Number,
		"total", doc.Total.StringFixed(2),
	)
	return doc, nil
}

func (s *Service) allocateNumber(ctx context.Context, txm tx.Manager, doc *Invoice) error {
	series, err := s.sequences.EnsureSeries(ctx, doc.LegalEntityID, "invoice", "default")
	if err != nil {
		return fmt.Errorf("ensure invoice series: %w", err)
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

// RegenerateEntry replaces the journal entry of an issued standalone invoice.
func (s *Service) RegenerateEntry(ctx context.Context, docID id.ID) error {
	doc, err := s.GetByID(ctx, docID)
	if err != nil {
		return err
	}
	if !doc.Posted {
		return apperror.NewBusinessRule(
			apperror.CodeBusinessRule,
			"Cannot generate journal entry for a draft invoice",
		).WithDetail("document_id", docID.String())
	}
	if doc.TicketID != nil {
		return apperror.NewBusinessRule(
			apperror.CodeBusinessRule,
			"Invoices issued from a ticket carry no journal entry of their own",
		).WithDetail("document_id", docID.String())
	}

	_, err = s.engine.Generate(ctx, doc.ToEvent(), posting.Options{Regenerate: true})
	return err
}

// List retrieves invoices with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Invoice], error) {
	return s.repo.List(ctx, filter)
}
