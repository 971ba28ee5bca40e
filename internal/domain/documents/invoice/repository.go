package invoice

import (
	"context"
	"time"

	"clinova/internal/core/id"
	"clinova/internal/domain"
)

// Repository defines operations for invoice documents.
type Repository interface {
	// CRUD operations
	Create(ctx context.Context, doc *Invoice) error
	GetByID(ctx context.Context, docID id.ID) (*Invoice, error)
	GetByNumber(ctx context.Context, number string) (*Invoice, error)
	Update(ctx context.Context, doc *Invoice) error
	Delete(ctx context.Context, docID id.ID) error

	// SetNumber persists an allocated fiscal number.
	// Returns a DUPLICATE_ENTRY error when the number is already taken.
	SetNumber(ctx context.Context, docID id.ID, number string) error

	// FindByTicket returns the invoice issued from a ticket, if any.
	FindByTicket(ctx context.Context, ticketID id.ID) (*Invoice, error)

	// Line operations
	GetLines(ctx context.Context, docID id.ID) ([]Line, error)
	SaveLines(ctx context.Context, docID id.ID, lines []Line) error
	GetPayments(ctx context.Context, docID id.ID) ([]Payment, error)
	SavePayments(ctx context.Context, docID id.ID, payments []Payment) error

	// List operations
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Invoice], error)

	// Locking
	GetForUpdate(ctx context.Context, docID id.ID) (*Invoice, error)
}

// ListFilter for filtering invoices.
type ListFilter struct {
	domain.ListFilter

	// Document-specific filters
	LegalEntityID *id.ID
	ClinicID      *id.ID
	ClientID      *id.ID
	Posted        *bool
	DateFrom      *time.Time
	DateTo        *time.Time
}
