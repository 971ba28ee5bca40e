package reports

import (
	"context"
	"fmt"
	"time"

	"clinova/internal/core/id"
)

// Service provides report generation operations.
type Service struct {
	repo Repository
}

// NewService creates a new reports service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetTrialBalance generates a trial balance for a legal entity and period.
func (s *Service) GetTrialBalance(ctx context.Context, filter TrialBalanceFilter) (*TrialBalance, error) {
	if id.IsNil(filter.LegalEntityID) {
		return nil, fmt.Errorf("legalEntityId is required")
	}

	if filter.FromDate.IsZero() || filter.ToDate.IsZero() {
		return nil, fmt.Errorf("fromDate and toDate are required")
	}

	if filter.FromDate.After(filter.ToDate) {
		return nil, fmt.Errorf("fromDate must be before toDate")
	}

	report, err := s.repo.GetTrialBalance(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("get trial balance: %w", err)
	}

	return report, nil
}

// GetJournal returns the journal listing.
func (s *Service) GetJournal(ctx context.Context, filter JournalFilter) (*Journal, error) {
	// Set default pagination
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 500 {
		filter.Limit = 500
	}

	journal, err := s.repo.GetJournal(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("get journal: %w", err)
	}

	return journal, nil
}

// GetDebtors generates the outstanding debts report with aging buckets.
func (s *Service) GetDebtors(ctx context.Context, filter DebtorsFilter) (*DebtorsReport, error) {
	// Default to current time if not specified
	if filter.AsOfDate == nil {
		now := time.Now()
		filter.AsOfDate = &now
	}

	// Set default pagination
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.Limit > 1000 {
		filter.Limit = 1000
	}

	report, err := s.repo.GetDebtorsReport(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("get debtors report: %w", err)
	}

	return report, nil
}

// GetSalesSummary generates per-day sales totals.
func (s *Service) GetSalesSummary(ctx context.Context, filter SalesSummaryFilter) (*SalesSummary, error) {
	if filter.FromDate.IsZero() || filter.ToDate.IsZero() {
		return nil, fmt.Errorf("fromDate and toDate are required")
	}

	if filter.FromDate.After(filter.ToDate) {
		return nil, fmt.Errorf("fromDate must be before toDate")
	}

	report, err := s.repo.GetSalesSummary(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("get sales summary: %w", err)
	}

	return report, nil
}
