package cashsession

import (
	"context"
	"fmt"
	"time"

	"clinova/internal/core/apperror"
	"clinova/internal/core/id"
	coreseq "clinova/internal/core/sequence"
	"clinova/internal/core/tenant"
	"clinova/internal/core/tx"
	"clinova/internal/core/types"
	"clinova/internal/domain"
	"clinova/internal/domain/documents"
	"clinova/internal/domain/posting"
	"clinova/pkg/logger"
)

// Service provides business operations for cash sessions.
type Service struct {
	repo      Repository
	engine    *posting.Engine
	sequences coreseq.Allocator
	publisher documents.EventPublisher // optional
	txManager tx.Manager               // Optional. If nil, obtained from context (DB-per-tenant).
}

// NewService creates a new cash session service.
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
	}
}

// WithPublisher attaches an outbox publisher for domain events.
func (s *Service) WithPublisher(p documents.EventPublisher) *Service {
	s.publisher = p
	return s
}

func (s *Service) getTxManager(ctx context.Context) (tx.Manager, error) {
	if s.txManager != nil {
		return s.txManager, nil
	}
	return tenant.GetTxManager(ctx)
}

// Open starts a new drawer session at the clinic. A clinic has at most one
// open session at a time.
func (s *Service) Open(ctx context.Context, legalEntityID, clinicID, openedBy id.ID, openingFloat types.Money) (*CashSession, error) {
	doc := NewCashSession(legalEntityID, clinicID, openedBy, openingFloat)
	if err := doc.Validate(ctx); err != nil {
		return nil, err
	}

	txm, err := s.getTxManager(ctx)
	if err != nil {
		return nil, apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}
	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		open, err := s.repo.FindOpenByClinic(ctx, clinicID)
		if err != nil && !apperror.IsNotFound(err) {
			return err
		}
		if open != nil {
			return apperror.NewBusinessRule(
				apperror.CodeBusinessRule,
				"Clinic already has an open cash session",
			).WithDetail("session_id", open.ID.String())
		}

		return s.repo.Create(ctx, doc)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "cash session opened",
		"id", doc.ID,
		"clinic_id", clinicID,
		"opening_float", openingFloat.StringFixed(2),
	)
	return doc, nil
}

// GetByID retrieves a cash session.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*CashSession, error) {
	return s.repo.GetByID(ctx, docID)
}

// GetOpen returns the clinic's current open session.
func (s *Service) GetOpen(ctx context.Context, clinicID id.ID) (*CashSession, error) {
	return s.repo.FindOpenByClinic(ctx, clinicID)
}

// Close reconciles the session: computes expected cash from the session's
// takings, records the physical count and generates the journal entry. The
// entry moves the counted amount off the drawer and books the difference as
// over/short. Closing an already closed session is a no-op.
func (s *Service) Close(ctx context.Context, docID, closedBy id.ID, countedCash types.Money) (*CashSession, error) {
	if countedCash.IsNegative() {
		return nil, apperror.NewValidation("counted cash cannot be negative").
			WithDetail("field", "countedCash")
	}

	txm, err := s.getTxManager(ctx)
	if err != nil {
		return nil, apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}

	var doc *CashSession
	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		doc, err = s.repo.GetForUpdate(ctx, docID)
		if err != nil {
			return err
		}

		if doc.Posted {
			return nil
		}

		now := time.Now().UTC()
		collected, err := s.repo.SumCashCollected(ctx, doc.ClinicID, doc.OpenedAt, now)
		if err != nil {
			return fmt.Errorf("sum cash collected: %w", err)
		}

		doc.ClosedAt = &now
		doc.ClosedBy = &closedBy
		doc.ExpectedCash = doc.OpeningFloat.Add(collected)
		doc.CountedCash = countedCash
		doc.Date = now

		if err := doc.Validate(ctx); err != nil {
			return err
		}

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
				EventType:     "CashSessionClosed",
				Payload: map[string]any{
					"number":     doc.Number,
					"expected":   doc.ExpectedCash.StringFixed(2),
					"counted":    doc.CountedCash.StringFixed(2),
					"difference": doc.Difference().StringFixed(2),
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

	logger.Info(ctx, "cash session closed",
		"id", doc.ID,
		"number", doc.Number,
		"expected", doc.ExpectedCash.StringFixed(2),
		"counted", doc.CountedCash.StringFixed(2),
		"difference", doc.Difference().StringFixed(2),
	)
	return doc, nil
}

func (s *Service) allocateNumber(ctx context.Context, txm tx.Manager, doc *CashSession) error {
	series, err := s.sequences.EnsureSeries(ctx, doc.ClinicID, "cash_session", "default")
	if err != nil {
		return fmt.Errorf("ensure cash session series: %w", err)
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

// RegenerateEntry replaces the journal entry of a closed session.
func (s *Service) RegenerateEntry(ctx context.Context, docID id.ID) error {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return err
	}
	if !doc.Posted {
		return apperror.NewBusinessRule(
			apperror.CodeBusinessRule,
			"Cannot generate journal entry for an open cash session",
		).WithDetail("document_id", docID.String())
	}

	_, err = s.engine.Generate(ctx, doc.ToEvent(), posting.Options{Regenerate: true})
	return err
}

// List retrieves cash sessions with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*CashSession], error) {
	return s.repo.List(ctx, filter)
}
