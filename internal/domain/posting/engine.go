package posting

import (
	"context"
	"fmt"
	"strconv"

	"time"

	"clinova/internal/core/apperror"
	"clinova/internal/core/id"
	coreseq "clinova/internal/core/sequence"
	"clinova/internal/core/security"
	"clinova/internal/core/tenant"
	"clinova/internal/domain/ledger"
	"clinova/pkg/logger"
)

// AuditRecorder records generation events for the audit trail.
type AuditRecorder interface {
	Record(ctx context.Context, action, entityType string, entityID id.ID, details map[string]any)
}

// Options control one Generate call.
type Options struct {
	// Regenerate replaces an existing entry instead of returning it.
	Regenerate bool
}

// Engine is the Ledger Generator: it turns finalized business events into
// balanced journal entries. Idempotent by default; with Regenerate it deletes
// the prior entry and re-creates inside one transaction, so observers never
// see a partial or duplicated entry.
type Engine struct {
	entries   ledger.EntryRepository
	resolver  *Resolver
	allocator coreseq.Allocator
	policy    security.PostingPolicy
	audit     AuditRecorder
}

// NewEngine creates the generator.
func NewEngine(entries ledger.EntryRepository, resolver *Resolver, allocator coreseq.Allocator, policy security.PostingPolicy) *Engine {
	if policy == nil {
		policy = security.OpenPolicy{}
	}
	return &Engine{
		entries:   entries,
		resolver:  resolver,
		allocator: allocator,
		policy:    policy,
	}
}

// WithAudit attaches an audit recorder.
func (g *Engine) WithAudit(a AuditRecorder) *Engine {
	g.audit = a
	return g
}

const (
	entryDocumentType = "journal_entry"
	entryPadding      = 6
)

// entrySeries describes the per-legal-entity per-year entry number counter.
// One series row per year; the year lives in the code and the prefix, so
// "2026/000123" restarts at 000001 each January without a reset sweep.
func entrySeries(legalEntityID id.ID, date time.Time) *coreseq.Series {
	year := strconv.Itoa(date.Year())
	return &coreseq.Series{
		ScopeID:      legalEntityID,
		DocumentType: entryDocumentType,
		Code:         year,
		Prefix:       year + "/",
		Padding:      entryPadding,
		ResetPolicy:  coreseq.ResetNever,
	}
}

// Generate derives and persists the journal entry for an event.
//
// If an entry for the event already exists it is returned unchanged, unless
// opts.Regenerate is set, in which case the old entry and its lines are
// deleted and a fresh one is created in the same transaction. Any missing
// account mapping aborts the whole generation; nothing is persisted.
func (g *Engine) Generate(ctx context.Context, ev Event, opts Options) (*ledger.Entry, error) {
	if err := g.policy.CanPost(ctx, ev.Date()); err != nil {
		return nil, err
	}

	existing, err := g.entries.GetBySource(ctx, ev.SourceType(), ev.SourceID())
	if err != nil && !apperror.IsNotFound(err) {
		return nil, err
	}
	if existing != nil && !opts.Regenerate {
		return existing, nil
	}
	if existing != nil {
		if err := g.policy.CanModify(ctx, existing.Date); err != nil {
			return nil, err
		}
	}

	entry := ledger.NewEntry(ev.LegalEntity(), ev.Clinic(), ev.SourceType(), ev.SourceID(), ev.Date(), ev.Description())
	if err := g.buildLines(ctx, entry, ev); err != nil {
		return nil, err
	}

	if len(entry.Lines) == 0 {
		return nil, apperror.NewBusinessRule(
			apperror.CodeBusinessRule,
			"Event produces no journal lines",
		).WithDetail("source_type", string(ev.SourceType())).WithDetail("source_id", ev.SourceID().String())
	}

	if err := entry.CheckBalance(); err != nil {
		// Never silently corrected. Full line detail goes to the log for audit.
		logger.Error(ctx, "journal entry imbalanced",
			"source_type", string(ev.SourceType()),
			"source_id", ev.SourceID().String(),
			"total_debit", entry.TotalDebit.StringFixed(2),
			"total_credit", entry.TotalCredit.StringFixed(2),
			"lines", entry.Lines,
		)
		return nil, err
	}

	txm, err := tenant.GetTxManager(ctx)
	if err != nil {
		return nil, apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}

	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if existing != nil {
			if err := g.entries.Delete(ctx, existing.ID); err != nil {
				return fmt.Errorf("delete prior entry: %w", err)
			}
		}

		// The entry number joins the transaction: it commits or rolls back
		// together with the entry rows.
		alloc, err := g.allocator.Allocate(ctx, entrySeries(ev.LegalEntity(), ev.Date()), ev.Date())
		if err != nil {
			return fmt.Errorf("allocate entry number: %w", err)
		}
		entry.SetNumber(alloc.Number, alloc.Formatted)

		if err := g.entries.Create(ctx, entry); err != nil {
			return fmt.Errorf("persist entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	action := "journal_entry.generated"
	if existing != nil {
		action = "journal_entry.regenerated"
	}
	logger.Info(ctx, action,
		"entry_number", entry.EntryNumber,
		"source_type", string(ev.SourceType()),
		"source_id", ev.SourceID().String(),
		"total", entry.TotalDebit.StringFixed(2),
	)
	if g.audit != nil {
		g.audit.Record(ctx, action, "JournalEntry", entry.ID, map[string]any{
			"entry_number": entry.EntryNumber,
			"source_type":  string(ev.SourceType()),
			"source_id":    ev.SourceID().String(),
			"lines":        len(entry.Lines),
			"total_debit":  entry.TotalDebit.StringFixed(2),
			"total_credit": entry.TotalCredit.StringFixed(2),
		})
	}

	return entry, nil
}

// buildLines dispatches on the event variant.
func (g *Engine) buildLines(ctx context.Context, entry *ledger.Entry, ev Event) error {
	switch ev := ev.(type) {
	case TicketEvent:
		return buildSale(ctx, g.resolver, entry, ev.LegalEntityID, ev.ClinicID, saleFacts{
			revenue:   ev.Revenue,
			taxes:     ev.Taxes,
			discounts: ev.Discounts,
			payments:  ev.Payments,
			pending:   ev.Pending,
		})
	case InvoiceEvent:
		return buildSale(ctx, g.resolver, entry, ev.LegalEntityID, ev.ClinicID, saleFacts{
			revenue:   ev.Revenue,
			taxes:     ev.Taxes,
			discounts: ev.Discounts,
			payments:  ev.Payments,
			pending:   ev.Pending,
		})
	case PaymentEvent:
		return buildPayment(ctx, g.resolver, entry, ev)
	case CashSessionEvent:
		return buildCashSession(ctx, g.resolver, entry, ev)
	case ExpenseEvent:
		return buildExpense(ctx, g.resolver, entry, ev)
	default:
		return apperror.NewValidation("unknown business event type").
			WithDetail("type", fmt.Sprintf("%T", ev))
	}
}
