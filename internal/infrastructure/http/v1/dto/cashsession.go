package dto

import (
	"time"

	"clinova/internal/core/id"
	"clinova/internal/core/types"
	"clinova/internal/domain/documents/cashsession"
)

// OpenCashSessionRequest is the DTO for opening a cash session.
type OpenCashSessionRequest struct {
	LegalEntityID id.ID       `json:"legalEntityId" binding:"required"`
	ClinicID      id.ID       `json:"clinicId" binding:"required"`
	OpeningFloat  types.Money `json:"openingFloat"`
}

// CloseCashSessionRequest is the DTO for closing a cash session.
type CloseCashSessionRequest struct {
	CountedCash types.Money `json:"countedCash" binding:"required"`
}

// CashSessionResponse is the DTO for returning cash session data.
type CashSessionResponse struct {
	DocumentResponse
	OpenedAt     time.Time   `json:"openedAt"`
	ClosedAt     *time.Time  `json:"closedAt,omitempty"`
	OpenedBy     id.ID       `json:"openedBy"`
	ClosedBy     *id.ID      `json:"closedBy,omitempty"`
	OpeningFloat types.Money `json:"openingFloat"`
	ExpectedCash types.Money `json:"expectedCash"`
	CountedCash  types.Money `json:"countedCash"`
	Difference   types.Money `json:"difference"`
	Open         bool        `json:"open"`
}

func FromCashSession(s *cashsession.CashSession) CashSessionResponse {
	return CashSessionResponse{
		DocumentResponse: FromDocument(s.Document),
		OpenedAt:         s.OpenedAt,
		ClosedAt:         s.ClosedAt,
		OpenedBy:         s.OpenedBy,
		ClosedBy:         s.ClosedBy,
		OpeningFloat:     s.OpeningFloat,
		ExpectedCash:     s.ExpectedCash,
		CountedCash:      s.CountedCash,
		Difference:       s.Difference(),
		Open:             s.IsOpen(),
	}
}

// ListCashSessionsRequest carries the cash session list filters.
type ListCashSessionsRequest struct {
	ClinicID *id.ID     `form:"clinicId"`
	Open     *bool      `form:"open"`
	Posted   *bool      `form:"posted"`
	DateFrom *time.Time `form:"dateFrom" time_format:"2006-01-02"`
	DateTo   *time.Time `form:"dateTo" time_format:"2006-01-02"`
	Limit    int        `form:"limit"`
	Offset   int        `form:"offset"`
}
