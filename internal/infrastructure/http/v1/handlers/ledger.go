package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"clinova/internal/core/apperror"
	"clinova/internal/core/id"
	"clinova/internal/domain/ledger"
	"clinova/internal/infrastructure/http/v1/dto"
)

// LedgerHandler handles HTTP requests for the chart of accounts, account
// mappings and journal entries. Entries are read-only: they are produced
// by document posting, never created over HTTP.
type LedgerHandler struct {
	*BaseHandler
	service *ledger.Service
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(base *BaseHandler, service *ledger.Service) *LedgerHandler {
	return &LedgerHandler{BaseHandler: base, service: service}
}

// --- Chart of accounts ---

// CreateAccount handles POST /ledger/accounts
func (h *LedgerHandler) CreateAccount(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateAccountRequest
	if !h.BindJSON(c, &req) {
		return
	}

	account := req.ToEntity()
	if err := h.service.CreateAccount(ctx, account); err != nil {
		h.Error(c, err)
		return
	}

	response := dto.FromAccount(account)
	h.CompleteIdempotency(c, http.StatusCreated, "application/json", response)
	c.JSON(http.StatusCreated, response)
}

// GetAccount handles GET /ledger/accounts/:id
func (h *LedgerHandler) GetAccount(c *gin.Context) {
	ctx := c.Request.Context()

	accountID, ok := h.parseID(c)
	if !ok {
		return
	}

	account, err := h.service.GetAccount(ctx, accountID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromAccount(account))
}

// UpdateAccount handles PUT /ledger/accounts/:id
func (h *LedgerHandler) UpdateAccount(c *gin.Context) {
	ctx := c.Request.Context()

	accountID, ok := h.parseID(c)
	if !ok {
		return
	}

	var req dto.UpdateAccountRequest
	if !h.BindJSON(c, &req) {
		return
	}

	account, err := h.service.GetAccount(ctx, accountID)
	if err != nil {
		h.Error(c, err)
		return
	}
	req.ApplyTo(account)

	if err := h.service.UpdateAccount(ctx, account); err != nil {
		h.Error(c, err)
		return
	}

	response := dto.FromAccount(account)
	h.CompleteIdempotency(c, http.StatusOK, "application/json", response)
	c.JSON(http.StatusOK, response)
}

// GetChart handles GET /ledger/accounts?legalEntityId=...
func (h *LedgerHandler) GetChart(c *gin.Context) {
	ctx := c.Request.Context()

	legalEntityID, err := id.Parse(c.Query("legalEntityId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid legalEntityId"))
		return
	}

	accounts, err := h.service.GetChart(ctx, legalEntityID)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.AccountResponse, len(accounts))
	for i, a := range accounts {
		items[i] = dto.FromAccount(a)
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// --- Account mappings ---

// CreateMapping handles POST /ledger/mappings
func (h *LedgerHandler) CreateMapping(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateMappingRequest
	if !h.BindJSON(c, &req) {
		return
	}

	mapping := req.ToEntity()
	if err := h.service.CreateMapping(ctx, mapping); err != nil {
		h.Error(c, err)
		return
	}

	response := dto.FromMapping(mapping)
	h.CompleteIdempotency(c, http.StatusCreated, "application/json", response)
	c.JSON(http.StatusCreated, response)
}

// UpdateMapping handles PUT /ledger/mappings/:id
func (h *LedgerHandler) UpdateMapping(c *gin.Context) {
	ctx := c.Request.Context()

	mappingID, ok := h.parseID(c)
	if !ok {
		return
	}

	var req dto.UpdateMappingRequest
	if !h.BindJSON(c, &req) {
		return
	}

	mapping, err := h.service.GetMapping(ctx, mappingID)
	if err != nil {
		h.Error(c, err)
		return
	}
	req.ApplyTo(mapping)

	if err := h.service.UpdateMapping(ctx, mapping); err != nil {
		h.Error(c, err)
		return
	}

	response := dto.FromMapping(mapping)
	h.CompleteIdempotency(c, http.StatusOK, "application/json", response)
	c.JSON(http.StatusOK, response)
}

// ListMappings handles GET /ledger/mappings?legalEntityId=...
func (h *LedgerHandler) ListMappings(c *gin.Context) {
	ctx := c.Request.Context()

	legalEntityID, err := id.Parse(c.Query("legalEntityId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid legalEntityId"))
		return
	}

	mappings, err := h.service.ListMappings(ctx, legalEntityID)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.MappingResponse, len(mappings))
	for i, m := range mappings {
		items[i] = dto.FromMapping(m)
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// DeactivateMapping handles POST /ledger/mappings/:id/deactivate
func (h *LedgerHandler) DeactivateMapping(c *gin.Context) {
	ctx := c.Request.Context()

	mappingID, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.service.DeactivateMapping(ctx, mappingID); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "mapping deactivated")
}

// --- Journal entries ---

// GetEntry handles GET /ledger/entries/:id
func (h *LedgerHandler) GetEntry(c *gin.Context) {
	ctx := c.Request.Context()

	entryID, ok := h.parseID(c)
	if !ok {
		return
	}

	entry, err := h.service.GetEntry(ctx, entryID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromEntry(entry))
}

// GetEntryBySource handles GET /ledger/entries/by-source?sourceType=...&sourceId=...
func (h *LedgerHandler) GetEntryBySource(c *gin.Context) {
	ctx := c.Request.Context()

	sourceType := ledger.SourceType(c.Query("sourceType"))
	if sourceType == "" {
		h.Error(c, apperror.NewValidation("sourceType is required"))
		return
	}

	sourceID, err := id.Parse(c.Query("sourceId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid sourceId"))
		return
	}

	entry, err := h.service.GetEntryBySource(ctx, sourceType, sourceID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromEntry(entry))
}

func (h *LedgerHandler) parseID(c *gin.Context) (id.ID, bool) {
	parsed, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return id.Nil(), false
	}
	return parsed, true
}
