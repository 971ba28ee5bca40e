package dto

import (
	"time"

	"clinova/internal/core/id"
	"clinova/internal/core/types"
	"clinova/internal/domain/documents/expense"
)

// CreateExpenseRequest is the DTO for creating an expense.
type CreateExpenseRequest struct {
	LegalEntityID id.ID       `json:"legalEntityId" binding:"required"`
	ClinicID      id.ID       `json:"clinicId" binding:"required"`
	CategoryID    id.ID       `json:"categoryId" binding:"required"`
	MethodID      id.ID       `json:"methodId" binding:"required"`
	Amount        types.Money `json:"amount" binding:"required"`
	Note          string      `json:"note"`
	Date          *time.Time  `json:"date"`
	Comment       string      `json:"comment"`
}

func (r CreateExpenseRequest) ToEntity() *expense.Expense {
	e := expense.NewExpense(r.LegalEntityID, r.ClinicID, r.CategoryID, r.MethodID, r.Amount)
	e.Note = r.Note
	e.Comment = r.Comment
	if r.Date != nil {
		e.Date = *r.Date
	}
	return e
}

// UpdateExpenseRequest is the DTO for updating a draft expense.
type UpdateExpenseRequest struct {
	Version    int         `json:"version" binding:"required"`
	CategoryID id.ID       `json:"categoryId" binding:"required"`
	MethodID   id.ID       `json:"methodId" binding:"required"`
	Amount     types.Money `json:"amount" binding:"required"`
	Note       string      `json:"note"`
	Date       *time.Time  `json:"date"`
	Comment    string      `json:"comment"`
}

func (r UpdateExpenseRequest) ApplyTo(e *expense.Expense) {
	e.CategoryID = r.CategoryID
	e.MethodID = r.MethodID
	e.Amount = r.Amount
	e.Note = r.Note
	e.Comment = r.Comment
	if r.Date != nil {
		e.Date = *r.Date
	}
}

// ExpenseResponse is the DTO for returning expense data.
type ExpenseResponse struct {
	DocumentResponse
	CategoryID id.ID       `json:"categoryId"`
	MethodID   id.ID       `json:"methodId"`
	Amount     types.Money `json:"amount"`
	Note       string      `json:"note,omitempty"`
	SpentAt    *time.Time  `json:"spentAt,omitempty"`
}

func FromExpense(e *expense.Expense) ExpenseResponse {
	return ExpenseResponse{
		DocumentResponse: FromDocument(e.Document),
		CategoryID:       e.CategoryID,
		MethodID:         e.MethodID,
		Amount:           e.Amount,
		Note:             e.Note,
		SpentAt:          e.SpentAt,
	}
}

// ListExpensesRequest carries the expense list filters.
type ListExpensesRequest struct {
	ClinicID   *id.ID     `form:"clinicId"`
	CategoryID *id.ID     `form:"categoryId"`
	Posted     *bool      `form:"posted"`
	DateFrom   *time.Time `form:"dateFrom" time_format:"2006-01-02"`
	DateTo     *time.Time `form:"dateTo" time_format:"2006-01-02"`
	Limit      int        `form:"limit"`
	Offset     int        `form:"offset"`
}
