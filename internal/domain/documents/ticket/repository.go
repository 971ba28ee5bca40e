package ticket

import (
	"context"
	"time"

	"clinova/internal/core/id"
	"clinova/internal/domain"
)

// Repository defines operations for ticket documents.
type Repository interface {
	// CRUD operations
	Create(ctx context.Context, doc *Ticket) error
	GetByID(ctx context.Context, docID id.ID) (*Ticket, error)
	GetByNumber(ctx context.Context, number string) (*Ticket, error)
	Update(ctx context.Context, doc *Ticket) error
	Delete(ctx context.Context, docID id.ID) error

	// SetNumber persists an allocated document number.
	// Returns a DUPLICATE_ENTRY error when the number is already taken.
	SetNumber(ctx context.Context, docID id.ID, number string) error

	// Line operations
	GetLines(ctx context.Context, docID id.ID) ([]Line, error)
	SaveLines(ctx context.Context, docID id.ID, lines []Line) error
	GetPayments(ctx context.Context, docID id.ID) ([]Payment, error)
	SavePayments(ctx context.Context, docID id.ID, payments []Payment) error

	// List operations
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Ticket], error)

	// Locking
	GetForUpdate(ctx context.Context, docID id.ID) (*Ticket, error)
}

// ListFilter for filtering tickets.
type ListFilter struct {
	domain.ListFilter

	// Document-specific filters
	ClinicID *id.ID
	ClientID *id.ID
	Posted   *bool
	DateFrom *time.Time
	DateTo   *time.Time
}
