package cashsession

import (
	"context"
	"time"

	"clinova/internal/core/id"
	"clinova/internal/core/types"
	"clinova/internal/domain"
)

// Repository defines operations for cash session documents.
type Repository interface {
	// CRUD operations
	Create(ctx context.Context, doc *CashSession) error
	GetByID(ctx context.Context, docID id.ID) (*CashSession, error)
	GetByNumber(ctx context.Context, number string) (*CashSession, error)
	Update(ctx context.Context, doc *CashSession) error
	Delete(ctx context.Context, docID id.ID) error

	// SetNumber persists an allocated document number.
	// Returns a DUPLICATE_ENTRY error when the number is already taken.
	SetNumber(ctx context.Context, docID id.ID, number string) error

	// FindOpenByClinic returns the clinic's open session, if any.
	FindOpenByClinic(ctx context.Context, clinicID id.ID) (*CashSession, error)

	// SumCashCollected totals cash-method takings at the clinic between from
	// and to: cash splits on closed tickets plus confirmed cash payments.
	SumCashCollected(ctx context.Context, clinicID id.ID, from, to time.Time) (types.Money, error)

	// List operations
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*CashSession], error)

	// Locking
	GetForUpdate(ctx context.Context, docID id.ID) (*CashSession, error)
}

// ListFilter for filtering cash sessions.
type ListFilter struct {
	domain.ListFilter

	// Document-specific filters
	ClinicID *id.ID
	Open     *bool
	Posted   *bool
	DateFrom *time.Time
	DateTo   *time.Time
}
