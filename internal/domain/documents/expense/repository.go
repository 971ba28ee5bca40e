package expense

import (
	"context"
	"time"

	"clinova/internal/core/id"
	"clinova/internal/domain"
)

// Repository defines operations for expense documents.
type Repository interface {
	// CRUD operations
	Create(ctx context.Context, doc *Expense) error
	GetByID(ctx context.Context, docID id.ID) (*Expense, error)
	GetByNumber(ctx context.Context, number string) (*Expense, error)
	Update(ctx context.Context, doc *Expense) error
	Delete(ctx context.Context, docID id.ID) error

	// SetNumber persists an allocated document number.
	// Returns a DUPLICATE_ENTRY error when the number is already taken.
	SetNumber(ctx context.Context, docID id.ID, number string) error

	// List operations
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Expense], error)

	// Locking
	GetForUpdate(ctx context.Context, docID id.ID) (*Expense, error)
}

// ListFilter for filtering expenses.
type ListFilter struct {
	domain.ListFilter

	// Document-specific filters
	ClinicID   *id.ID
	CategoryID *id.ID
	Posted     *bool
	DateFrom   *time.Time
	DateTo     *time.Time
}
