package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"clinova/internal/domain/reports"
	"clinova/internal/infrastructure/http/v1/dto"
)

// ReportsHandler handles HTTP requests for reports.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service *reports.Service) *ReportsHandler {
	return &ReportsHandler{
		BaseHandler: base,
		service:     service,
	}
}

// GetTrialBalance handles GET /reports/trial-balance
func (h *ReportsHandler) GetTrialBalance(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.TrialBalanceRequest
	if !h.BindQuery(c, &req) {
		return
	}

	report, err := h.service.GetTrialBalance(ctx, req.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetJournal handles GET /reports/journal
func (h *ReportsHandler) GetJournal(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.JournalRequest
	if !h.BindQuery(c, &req) {
		return
	}

	journal, err := h.service.GetJournal(ctx, req.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, journal)
}

// GetDebtors handles GET /reports/debtors
func (h *ReportsHandler) GetDebtors(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.DebtorsRequest
	if !h.BindQuery(c, &req) {
		return
	}

	report, err := h.service.GetDebtors(ctx, req.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetSalesSummary handles GET /reports/sales-summary
func (h *ReportsHandler) GetSalesSummary(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.SalesSummaryRequest
	if !h.BindQuery(c, &req) {
		return
	}

	report, err := h.service.GetSalesSummary(ctx, req.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}
