package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"clinova/internal/domain/documents/ticket"
	"clinova/internal/infrastructure/http/v1/dto"
)

// TicketHandler handles HTTP requests for Tickets.
type TicketHandler struct {
	*BaseDocumentHandler[*ticket.Ticket, dto.CreateTicketRequest, dto.UpdateTicketRequest]
	service *ticket.Service
}

// NewTicketHandler creates a new TicketHandler.
func NewTicketHandler(base *BaseHandler, service *ticket.Service) *TicketHandler {
	docBase := NewBaseDocumentHandler(base, BaseDocumentHandlerConfig[*ticket.Ticket, dto.CreateTicketRequest, dto.UpdateTicketRequest]{
		Service:    service,
		EntityName: "ticket",

		MapCreateDTO: func(req dto.CreateTicketRequest) (*ticket.Ticket, error) {
			return req.ToEntity()
		},

		MapUpdateDTO: func(req dto.UpdateTicketRequest, existing *ticket.Ticket) (*ticket.Ticket, error) {
			if err := req.ApplyTo(existing); err != nil {
				return nil, err
			}
			return existing, nil
		},

		MapToDTO: func(t *ticket.Ticket) any {
			return dto.FromTicket(t)
		},
	})

	return &TicketHandler{BaseDocumentHandler: docBase, service: service}
}

// List handles GET /tickets
func (h *TicketHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ListTicketsRequest
	if !h.BindQuery(c, &req) {
		return
	}

	filter := ticket.ListFilter{
		ClinicID: req.ClinicID,
		ClientID: req.ClientID,
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
	for i, t := range result.Items {
		items[i] = dto.FromTicket(t)
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Close handles POST /tickets/:id/close - finalize the sale.
func (h *TicketHandler) Close(c *gin.Context) {
	ctx := c.Request.Context()

	docID, ok := h.parseID(c)
	if !ok {
		return
	}

	doc, err := h.service.Close(ctx, docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	response := dto.FromTicket(doc)
	h.CompleteIdempotency(c, http.StatusOK, "application/json", response)
	c.JSON(http.StatusOK, response)
}

// RegenerateEntry handles POST /tickets/:id/regenerate-entry
func (h *TicketHandler) RegenerateEntry(c *gin.Context) {
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
