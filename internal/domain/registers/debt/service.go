// Package debt provides the client debt accumulation register service.
package debt

import (
	"context"
	"fmt"

	"clinova/internal/core/apperror"
	"clinova/internal/core/entity"
	"clinova/internal/core/id"
	"clinova/internal/core/types"
	"clinova/pkg/logger"
)

// Service provides business operations for the debt register.
// In Database-per-Tenant architecture, transactions are managed by the caller (document services).
type Service struct {
	repo Repository
}

// NewService creates a new debt register service.
func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
	}
}

// RecordMovements records debt movements from a document posting.
// This is called during document posting within a transaction.
func (s *Service) RecordMovements(ctx context.Context, movements []entity.DebtMovement) error {
	if len(movements) == 0 {
		return nil
	}

	// Validate movements
	for i, m := range movements {
		if !m.Amount.IsPositive() {
			return apperror.NewValidation(fmt.Sprintf("movement %d: amount must be positive", i))
		}
		if id.IsNil(m.RecorderID) {
			return apperror.NewValidation(fmt.Sprintf("movement %d: recorder_id is required", i))
		}
		if id.IsNil(m.ClientID) {
			return apperror.NewValidation(fmt.Sprintf("movement %d: client_id is required", i))
		}
	}

	// Create movements (triggers will update balances)
	if err := s.repo.CreateMovements(ctx, movements); err != nil {
		return fmt.Errorf("create movements: %w", err)
	}

	logger.Info(ctx, "recorded debt movements",
		"count", len(movements),
		"recorder_id", movements[0].RecorderID,
	)

	return nil
}

// ReverseMovements removes movements for a document (used during unposting).
func (s *Service) ReverseMovements(ctx context.Context, recorderID id.ID, beforeVersion int) error {
	if err := s.repo.DeleteMovementsByRecorder(ctx, recorderID, beforeVersion); err != nil {
		return fmt.Errorf("delete movements: %w", err)
	}

	logger.Info(ctx, "reversed debt movements",
		"recorder_id", recorderID,
		"before_version", beforeVersion,
	)

	return nil
}

// CheckCollectible verifies a payment does not collect more than the client
// owes. Uses pessimistic locking; call within a transaction before recording
// the collection movement.
func (s *Service) CheckCollectible(ctx context.Context, clinicID, clientID id.ID, amount types.Money) error {
	balance, err := s.repo.GetBalanceForUpdate(ctx, clinicID, clientID)
	if err != nil {
		return fmt.Errorf("get debt balance for %s: %w", clientID, err)
	}

	if balance.Amount.LessThan(amount) {
		return apperror.NewBusinessRule(
			apperror.CodeBusinessRule,
			"Payment exceeds outstanding client debt",
		).WithDetail("client_id", clientID.String()).
			WithDetail("outstanding", balance.Amount.StringFixed(2)).
			WithDetail("payment", amount.StringFixed(2))
	}

	return nil
}

// GetClientDebt returns total outstanding debt across clinics.
func (s *Service) GetClientDebt(ctx context.Context, clientID id.ID) (types.Money, error) {
	balances, err := s.repo.GetBalancesByClient(ctx, clientID)
	if err != nil {
		return types.Zero(), fmt.Errorf("get balances: %w", err)
	}

	total := types.Zero()
	for _, b := range balances {
		total = total.Add(b.Amount)
	}

	return total, nil
}

// GetClinicDebtors returns all clients with outstanding debt at a clinic.
func (s *Service) GetClinicDebtors(ctx context.Context, clinicID id.ID) ([]entity.DebtBalance, error) {
	return s.repo.GetBalancesByClinic(ctx, clinicID, BalanceFilter{
		ExcludeZero: true,
	})
}

// GetMovementHistory returns a client's debt movement history.
func (s *Service) GetMovementHistory(ctx context.Context, clientID id.ID, filter MovementFilter) ([]entity.DebtMovement, error) {
	return s.repo.GetMovementHistory(ctx, clientID, filter)
}

// GetDebtReport generates a turnover report for the period.
func (s *Service) GetDebtReport(ctx context.Context, filter TurnoverFilter) (Turnover, error) {
	return s.repo.GetTurnover(ctx, filter)
}
