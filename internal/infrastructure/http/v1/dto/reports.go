package dto

import (
	"time"

	"clinova/internal/core/id"
	"clinova/internal/core/types"
	"clinova/internal/domain/ledger"
	"clinova/internal/domain/reports"
)

// TrialBalanceRequest carries the trial balance filters.
type TrialBalanceRequest struct {
	LegalEntityID id.ID     `form:"legalEntityId" binding:"required"`
	FromDate      time.Time `form:"fromDate" time_format:"2006-01-02" binding:"required"`
	ToDate        time.Time `form:"toDate" time_format:"2006-01-02" binding:"required"`
	ClinicID      *id.ID    `form:"clinicId"`
	ExcludeZero   bool      `form:"excludeZero"`
}

func (r TrialBalanceRequest) ToFilter() reports.TrialBalanceFilter {
	return reports.TrialBalanceFilter{
		LegalEntityID: r.LegalEntityID,
		FromDate:      r.FromDate,
		ToDate:        r.ToDate,
		ClinicID:      r.ClinicID,
		ExcludeZero:   r.ExcludeZero,
	}
}

// JournalRequest carries the journal listing filters.
type JournalRequest struct {
	LegalEntityID *id.ID     `form:"legalEntityId"`
	ClinicID      *id.ID     `form:"clinicId"`
	SourceType    string     `form:"sourceType"`
	AccountID     *id.ID     `form:"accountId"`
	FromDate      *time.Time `form:"fromDate" time_format:"2006-01-02"`
	ToDate        *time.Time `form:"toDate" time_format:"2006-01-02"`
	WithLines     bool       `form:"withLines"`
	Limit         int        `form:"limit"`
	Offset        int        `form:"offset"`
}

func (r JournalRequest) ToFilter() reports.JournalFilter {
	f := reports.JournalFilter{
		LegalEntityID: r.LegalEntityID,
		ClinicID:      r.ClinicID,
		AccountID:     r.AccountID,
		FromDate:      r.FromDate,
		ToDate:        r.ToDate,
		WithLines:     r.WithLines,
		Limit:         r.Limit,
		Offset:        r.Offset,
	}
	if r.SourceType != "" {
		st := ledger.SourceType(r.SourceType)
		f.SourceType = &st
	}
	return f
}

// DebtorsRequest carries the debtors report filters.
type DebtorsRequest struct {
	ClinicID  *id.ID       `form:"clinicId"`
	AsOfDate  *time.Time   `form:"asOfDate" time_format:"2006-01-02"`
	MinAmount *types.Money `form:"minAmount"`
	Limit     int          `form:"limit"`
	Offset    int          `form:"offset"`
}

func (r DebtorsRequest) ToFilter() reports.DebtorsFilter {
	return reports.DebtorsFilter{
		ClinicID:  r.ClinicID,
		AsOfDate:  r.AsOfDate,
		MinAmount: r.MinAmount,
		Limit:     r.Limit,
		Offset:    r.Offset,
	}
}

// SalesSummaryRequest carries the sales summary filters.
type SalesSummaryRequest struct {
	ClinicID *id.ID    `form:"clinicId"`
	FromDate time.Time `form:"fromDate" time_format:"2006-01-02" binding:"required"`
	ToDate   time.Time `form:"toDate" time_format:"2006-01-02" binding:"required"`
}

func (r SalesSummaryRequest) ToFilter() reports.SalesSummaryFilter {
	return reports.SalesSummaryFilter{
		ClinicID: r.ClinicID,
		FromDate: r.FromDate,
		ToDate:   r.ToDate,
	}
}
