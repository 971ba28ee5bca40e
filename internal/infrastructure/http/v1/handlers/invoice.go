package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"clinova/internal/domain/documents/invoice"
	"clinova/internal/infrastructure/http/v1/dto"
)

// InvoiceHandler handles HTTP requests for Invoices.
type InvoiceHandler struct {
	*BaseDocumentHandler[*invoice.Invoice, dto.CreateInvoiceRequest, dto.UpdateInvoiceRequest]
	service *invoice.Service
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(base *BaseHandler, service *invoice.Service) *InvoiceHandler {
	docBase := NewBaseDocumentHandler(base, BaseDocumentHandlerConfig[*invoice.Invoice, dto.CreateInvoiceRequest, dto.UpdateInvoiceRequest]{
		Service:    service,
		EntityName: "invoice",

		MapCreateDTO: func(req dto.CreateInvoiceRequest) (*invoice.Invoice, error) {
			return req.ToEntity()
		},

		MapUpdateDTO: func(req dto.UpdateInvoiceRequest, existing *invoice.Invoice) (*invoice.Invoice, error) {
			if err := req.ApplyTo(existing); err != nil {
				return nil, err
			}
			return existing, nil
		},

		MapToDTO: func(inv *invoice.Invoice) any {
			return dto.FromInvoice(inv)
		},
	})

	return &InvoiceHandler{BaseDocumentHandler: docBase, service: service}
}

// List handles GET /invoices
func (h *InvoiceHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ListInvoicesRequest
	if !h.BindQuery(c, &req) {
		return
	}

	filter := invoice.ListFilter{
		LegalEntityID: req.LegalEntityID,
		ClinicID:      req.ClinicID,
		ClientID:      req.ClientID,
		Posted:        req.Posted,
		DateFrom:      req.DateFrom,
		DateTo:        req.DateTo,
	}
	filter.Limit = req.Limit
	filter.Offset = req.Offset

	result, err := h.service.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]any, len(result.Items))
	for i, inv := range result.Items {
		items[i] = dto.FromInvoice(inv)
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// CreateFromTicket handles POST /invoices/from-ticket - invoice a closed sale.
func (h *InvoiceHandler) CreateFromTicket(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateInvoiceFromTicketRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.service.CreateFromTicket(ctx, req.TicketID, req.ClientID)
	if err != nil {
		h.Error(c, err)
		return
	}

	response := dto.FromInvoice(doc)
	h.CompleteIdempotency(c, http.StatusCreated, "application/json", response)
	c.JSON(http.StatusCreated, response)
}

// Issue handles POST /invoices/:id/issue - finalize the fiscal invoice.
func (h *InvoiceHandler) Issue(c *gin.Context) {
	ctx := c.Request.Context()

	docID, ok := h.parseID(c)
	if !ok {
		return
	}

	doc, err := h.service.Issue(ctx, docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	response := dto.FromInvoice(doc)
	h.CompleteIdempotency(c, http.StatusOK, "application/json", response)
	c.JSON(http.StatusOK, response)
}

// RegenerateEntry handles POST /invoices/:id/regenerate-entry
func (h *InvoiceHandler) RegenerateEntry(c *gin.Context) {
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
