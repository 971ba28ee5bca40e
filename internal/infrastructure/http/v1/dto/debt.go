package dto

import (
	"time"

	"clinova/internal/core/entity"
	"clinova/internal/core/id"
	"clinova/internal/core/types"
)

// DebtBalanceResponse is one clinic/client debt balance.
type DebtBalanceResponse struct {
	ClinicID  id.ID       `json:"clinicId"`
	ClientID  id.ID       `json:"clientId"`
	Amount    types.Money `json:"amount"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

func FromDebtBalance(b entity.DebtBalance) DebtBalanceResponse {
	return DebtBalanceResponse{
		ClinicID:  b.ClinicID,
		ClientID:  b.ClientID,
		Amount:    b.Amount,
		UpdatedAt: b.UpdatedAt,
	}
}

// DebtMovementResponse is one debt register movement.
type DebtMovementResponse struct {
	LineID       id.ID       `json:"lineId"`
	RecorderID   id.ID       `json:"recorderId"`
	RecorderType string      `json:"recorderType"`
	Period       time.Time   `json:"period"`
	RecordType   string      `json:"recordType"`
	ClinicID     id.ID       `json:"clinicId"`
	ClientID     id.ID       `json:"clientId"`
	Amount       types.Money `json:"amount"`
}

func FromDebtMovement(m entity.DebtMovement) DebtMovementResponse {
	return DebtMovementResponse{
		LineID:       m.LineID,
		RecorderID:   m.RecorderID,
		RecorderType: m.RecorderType,
		Period:       m.Period,
		RecordType:   string(m.RecordType),
		ClinicID:     m.ClinicID,
		ClientID:     m.ClientID,
		Amount:       m.Amount,
	}
}

// DebtTurnoverRequest carries the turnover report filters.
type DebtTurnoverRequest struct {
	ClinicID *id.ID    `form:"clinicId"`
	ClientID *id.ID    `form:"clientId"`
	FromDate time.Time `form:"fromDate" time_format:"2006-01-02" binding:"required"`
	ToDate   time.Time `form:"toDate" time_format:"2006-01-02" binding:"required"`
}
