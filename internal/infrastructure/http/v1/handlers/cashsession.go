package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"clinova/internal/core/apperror"
	"clinova/internal/core/id"
	"clinova/internal/domain/documents/cashsession"
	"clinova/internal/infrastructure/http/v1/dto"
)

// CashSessionHandler handles HTTP requests for cash drawer sessions.
// Sessions do not follow the generic document CRUD: they are opened and
// closed, never created as drafts or edited.
type CashSessionHandler struct {
	*BaseHandler
	service *cashsession.Service
}

// NewCashSessionHandler creates a new CashSessionHandler.
func NewCashSessionHandler(base *BaseHandler, service *cashsession.Service) *CashSessionHandler {
	return &CashSessionHandler{BaseHandler: base, service: service}
}

// Open handles POST /cash-sessions/open
func (h *CashSessionHandler) Open(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.OpenCashSessionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	openedBy, ok := h.currentUser(c)
	if !ok {
		return
	}

	doc, err := h.service.Open(ctx, req.LegalEntityID, req.ClinicID, openedBy, req.OpeningFloat)
	if err != nil {
		h.Error(c, err)
		return
	}

	response := dto.FromCashSession(doc)
	h.CompleteIdempotency(c, http.StatusCreated, "application/json", response)
	c.JSON(http.StatusCreated, response)
}

// Get handles GET /cash-sessions/:id
func (h *CashSessionHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	docID, ok := h.parseID(c)
	if !ok {
		return
	}

	doc, err := h.service.GetByID(ctx, docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromCashSession(doc))
}

// GetOpen handles GET /cash-sessions/open?clinicId=...
func (h *CashSessionHandler) GetOpen(c *gin.Context) {
	ctx := c.Request.Context()

	clinicID, err := id.Parse(c.Query("clinicId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid clinicId"))
		return
	}

	doc, err := h.service.GetOpen(ctx, clinicID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromCashSession(doc))
}

// Close handles POST /cash-sessions/:id/close - reconcile the drawer.
func (h *CashSessionHandler) Close(c *gin.Context) {
	ctx := c.Request.Context()

	docID, ok := h.parseID(c)
	if !ok {
		return
	}

	var req dto.CloseCashSessionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	closedBy, ok := h.currentUser(c)
	if !ok {
		return
	}

	doc, err := h.service.Close(ctx, docID, closedBy, req.CountedCash)
	if err != nil {
		h.Error(c, err)
		return
	}

	response := dto.FromCashSession(doc)
	h.CompleteIdempotency(c, http.StatusOK, "application/json", response)
	c.JSON(http.StatusOK, response)
}

// List handles GET /cash-sessions
func (h *CashSessionHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ListCashSessionsRequest
	if !h.BindQuery(c, &req) {
		return
	}

	filter := cashsession.ListFilter{
		ClinicID: req.ClinicID,
		Open:     req.Open,
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
	for i, s := range result.Items {
		items[i] = dto.FromCashSession(s)
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// RegenerateEntry handles POST /cash-sessions/:id/regenerate-entry
func (h *CashSessionHandler) RegenerateEntry(c *gin.Context) {
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

func (h *CashSessionHandler) parseID(c *gin.Context) (id.ID, bool) {
	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return id.Nil(), false
	}
	return docID, true
}

// currentUser resolves the authenticated user from the request scope.
func (h *CashSessionHandler) currentUser(c *gin.Context) (id.ID, bool) {
	userID, err := id.Parse(h.GetUserID(c))
	if err != nil {
		h.Error(c, apperror.NewUnauthorized("missing user identity"))
		return id.Nil(), false
	}
	return userID, true
}
