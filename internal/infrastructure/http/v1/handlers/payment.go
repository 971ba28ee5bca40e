package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"clinova/internal/domain/documents/payment"
	"clinova/internal/infrastructure/http/v1/dto"
)

// PaymentHandler handles HTTP requests for debt Payments.
type PaymentHandler struct {
	*BaseDocumentHandler[*payment.Payment, dto.CreatePaymentRequest, dto.UpdatePaymentRequest]
	service *payment.Service
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(base *BaseHandler, service *payment.Service) *PaymentHandler {
	docBase := NewBaseDocumentHandler(base, BaseDocumentHandlerConfig[*payment.Payment, dto.CreatePaymentRequest, dto.UpdatePaymentRequest]{
		Service:    service,
		EntityName: "payment",

		MapCreateDTO: func(req dto.CreatePaymentRequest) (*payment.Payment, error) {
			return req.ToEntity(), nil
		},

		MapUpdateDTO: func(req dto.UpdatePaymentRequest, existing *payment.Payment) (*payment.Payment, error) {
			req.ApplyTo(existing)
			return existing, nil
		},

		MapToDTO: func(p *payment.Payment) any {
			return dto.FromPayment(p)
		},
	})

	return &PaymentHandler{BaseDocumentHandler: docBase, service: service}
}

// List handles GET /payments
func (h *PaymentHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ListPaymentsRequest
	if !h.BindQuery(c, &req) {
		return
	}

	filter := payment.ListFilter{
		ClinicID: req.ClinicID,
		ClientID: req.ClientID,
		MethodID: req.MethodID,
		Posted:   req.Posted,
		DateFrom: req.DateFrom,
		DateTo:   req.DateTo,
	}
	filter.Limit = req.Limit
	filter.Offset = req.Offset

	result, err := h.service.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]any, len(result.Items))
	for i, p := range result.Items {
		items[i] = dto.FromPayment(p)
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Confirm handles POST /payments/:id/confirm - finalize the collection.
func (h *PaymentHandler) Confirm(c *gin.Context) {
	ctx := c.Request.Context()

	docID, ok := h.parseID(c)
	if !ok {
		return
	}

	doc, err := h.service.Confirm(ctx, docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	response := dto.FromPayment(doc)
	h.CompleteIdempotency(c, http.StatusOK, "application/json", response)
	c.JSON(http.StatusOK, response)
}

// RegenerateEntry handles POST /payments/:id/regenerate-entry
func (h *PaymentHandler) RegenerateEntry(c *gin.Context) {
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
