// Package expense provides the Expense document: a paid business outgoing
// (supplies, rent, utilities). Approving an expense allocates its number and
// generates the journal entry.
package expense

import (
	"context"
	"time"

	"clinova/internal/core/apperror"
	"clinova/internal/core/entity"
	"clinova/internal/core/id"
	"clinova/internal/core/types"
	"clinova/internal/domain/posting"
)

// Expense represents a paid business expense.
type Expense struct {
	entity.Document

	CategoryID id.ID `db:"category_id" json:"categoryId"`
	MethodID   id.ID `db:"method_id" json:"methodId"`

	Amount types.Money `db:"amount" json:"amount"`
	Note   string      `db:"note" json:"note,omitempty"`

	// SpentAt is when the expense was approved
	SpentAt *time.Time `db:"spent_at" json:"spentAt,omitempty"`
}

// NewExpense creates a new draft expense.
func NewExpense(legalEntityID, clinicID, categoryID, methodID id.ID, amount types.Money) *Expense {
	return &Expense{
		Document:   entity.NewDocument(legalEntityID, clinicID),
		CategoryID: categoryID,
		MethodID:   methodID,
		Amount:     amount,
	}
}

// Validate implements entity.Validatable.
func (e *Expense) Validate(ctx context.Context) error {
	if err := e.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(e.CategoryID) {
		return apperror.NewValidation("expense category is required").
			WithDetail("field", "categoryId")
	}
	if id.IsNil(e.MethodID) {
		return apperror.NewValidation("payment method is required").
			WithDetail("field", "methodId")
	}
	if !e.Amount.IsPositive() {
		return apperror.NewValidation("amount must be positive").
			WithDetail("field", "amount")
	}

	return nil
}

// GetDocumentType returns the document type name.
func (e *Expense) GetDocumentType() string {
	return "Expense"
}

// ToEvent assembles the monetary facts for journal generation.
func (e *Expense) ToEvent() posting.ExpenseEvent {
	ev := posting.ExpenseEvent{
		ID:            e.ID,
		Number:        e.Number,
		LegalEntityID: e.LegalEntityID,
		ClinicID:      e.ClinicID,
		SpentAt:       e.Date,
		CategoryID:    e.CategoryID,
		MethodID:      e.MethodID,
		Amount:        e.Amount,
		Note:          e.Note,
	}
	if e.SpentAt != nil {
		ev.SpentAt = *e.SpentAt
	}
	return ev
}
