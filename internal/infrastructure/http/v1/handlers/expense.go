package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"clinova/internal/domain/documents/expense"
	"clinova/internal/infrastructure/http/v1/dto"
)

// ExpenseHandler handles HTTP requests for Expenses.
type ExpenseHandler struct {
	*BaseDocumentHandler[*expense.Expense, dto.CreateExpenseRequest, dto.UpdateExpenseRequest]
	service *expense.Service
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(base *BaseHandler, service *expense.Service) *ExpenseHandler {
	docBase := NewBaseDocumentHandler(base, BaseDocumentHandlerConfig[*expense.Expense, dto.CreateExpenseRequest, dto.UpdateExpenseRequest]{
		Service:    service,
		EntityName: "expense",

		MapCreateDTO: func(req dto.CreateExpenseRequest) (*expense.Expense, error) {
			return req.ToEntity(), nil
		},

		MapUpdateDTO: func(req dto.UpdateExpenseRequest, existing *expense.Expense) (*expense.Expense, error) {
			req.ApplyTo(existing)
			return existing, nil
		},

		MapToDTO: func(e *expense.Expense) any {
			return dto.FromExpense(e)
		},
	})

	return &ExpenseHandler{BaseDocumentHandler: docBase, service: service}
}

// List handles GET /expenses
func (h *ExpenseHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ListExpensesRequest
	if !h.BindQuery(c, &req) {
		return
	}

	filter := expense.ListFilter{
		ClinicID:   req.ClinicID,
		CategoryID: req.CategoryID,
		Posted:     req.Posted,
		DateFrom:   req.DateFrom,
		DateTo:     req.DateTo,
	}
	filter.Limit = req.Limit
	filter.Offset = req.Offset

	result, err := h.service.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]any, len(result.Items))
	for i, e := range result.Items {
		items[i] = dto.FromExpense(e)
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Approve handles POST /expenses/:id/approve - finalize the outflow.
func (h *ExpenseHandler) Approve(c *gin.Context) {
	ctx := c.Request.Context()

	docID, ok := h.parseID(c)
	if !ok {
		return
	}

	doc, err := h.service.Approve(ctx, docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	response := dto.FromExpense(doc)
	h.CompleteIdempotency(c, http.StatusOK, "application/json", response)
	c.JSON(http.StatusOK, response)
}

// RegenerateEntry handles POST /expenses/:id/regenerate-entry
func (h *ExpenseHandler) RegenerateEntry(c *gin.Context) {
	ctx := c.Request.Context()

	docID, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.service.RegenerateEntry(ctx, docID); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "journal entry regenerated")
}
