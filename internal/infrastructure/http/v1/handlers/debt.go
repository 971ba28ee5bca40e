package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"clinova/internal/core/apperror"
	"clinova/internal/core/entity"
	"clinova/internal/core/id"
	"clinova/internal/domain/registers/debt"
	"clinova/internal/infrastructure/http/v1/dto"
)

// DebtHandler handles HTTP requests for the client debt register.
// The register is read-only over HTTP; movements are written by document
// posting.
type DebtHandler struct {
	*BaseHandler
	service *debt.Service
}

// NewDebtHandler creates a new DebtHandler.
func NewDebtHandler(base *BaseHandler, service *debt.Service) *DebtHandler {
	return &DebtHandler{BaseHandler: base, service: service}
}

// GetClientDebt handles GET /debt/clients/:id - total outstanding across clinics.
func (h *DebtHandler) GetClientDebt(c *gin.Context) {
	ctx := c.Request.Context()

	clientID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	total, err := h.service.GetClientDebt(ctx, clientID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"clientId": clientID,
		"total":    total,
	})
}

// GetClinicDebtors handles GET /debt/clinics/:id/debtors
func (h *DebtHandler) GetClinicDebtors(c *gin.Context) {
	ctx := c.Request.Context()

	clinicID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	balances, err := h.service.GetClinicDebtors(ctx, clinicID)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.DebtBalanceResponse, len(balances))
	for i, b := range balances {
		items[i] = dto.FromDebtBalance(b)
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// GetMovementHistory handles GET /debt/clients/:id/movements
func (h *DebtHandler) GetMovementHistory(c *gin.Context) {
	ctx := c.Request.Context()

	clientID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	filter := debt.MovementFilter{
		Limit:  h.ParseIntQuery(c, "limit", 50),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}
	if v := c.Query("clinicId"); v != "" {
		clinicID, err := id.Parse(v)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid clinicId"))
			return
		}
		filter.ClinicID = &clinicID
	}
	if v := c.Query("recordType"); v != "" {
		rt := entity.RecordType(v)
		filter.RecordType = &rt
	}
	if v := c.Query("fromDate"); v != "" {
		from, err := time.Parse("2006-01-02", v)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid fromDate"))
			return
		}
		filter.FromDate = &from
	}
	if v := c.Query("toDate"); v != "" {
		to, err := time.Parse("2006-01-02", v)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid toDate"))
			return
		}
		filter.ToDate = &to
	}

	movements, err := h.service.GetMovementHistory(ctx, clientID, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.DebtMovementResponse, len(movements))
	for i, m := range movements {
		items[i] = dto.FromDebtMovement(m)
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// GetTurnover handles GET /debt/turnover
func (h *DebtHandler) GetTurnover(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.DebtTurnoverRequest
	if !h.BindQuery(c, &req) {
		return
	}

	turnover, err := h.service.GetDebtReport(ctx, debt.TurnoverFilter{
		ClinicID: req.ClinicID,
		ClientID: req.ClientID,
		FromDate: req.FromDate,
		ToDate:   req.ToDate,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, turnover)
}
