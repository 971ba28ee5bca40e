package payment

import (
	"context"
	"time"

	"clinova/internal/core/id"
	"clinova/internal/domain"
)

// Repository defines operations for payment documents.
type Repository interface {
	// CRUD operations
	Create(ctx context.Context, doc *Payment) error
	GetByID(ctx context.Context, docID id.ID) (*Payment, error)
	GetByNumber(ctx context.Context, number string) (*Payment, error)
	Update(ctx context.Context, doc *Payment) error
	Delete(ctx context.Context, docID id.ID) error

	// SetNumber persists an allocated document number.
	// Returns a DUPLICATE_ENTRY error when the number is already taken.
	SetNumber(ctx context.Context, docID id.ID, number string) error

	// List operations
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Payment], error)

	// Locking
	GetForUpdate(ctx context.Context, docID id.ID) (*Payment, error)
}

// ListFilter for filtering payments.
type ListFilter struct {
	domain.ListFilter

	// Document-specific filters
	ClinicID *id.ID
	ClientID *id.ID
	MethodID *id.ID
	Posted   *bool
	DateFrom *time.Time
	DateTo   *time.Time
}
