// Package debt provides the client debt accumulation register.
package debt

import (
	"context"
	"time"

	"clinova/internal/core/entity"
	"clinova/internal/core/id"
	"clinova/internal/core/types"
)

// Repository defines operations for the debt register.
type Repository interface {
	// Movement operations

	// CreateMovements batch inserts movements (used during posting)
	CreateMovements(ctx context.Context, movements []entity.DebtMovement) error

	// DeleteMovementsByRecorder removes all movements for a document version
	// Used during unposting or re-posting
	DeleteMovementsByRecorder(ctx context.Context, recorderID id.ID, beforeVersion int) error

	// GetMovementsByRecorder retrieves all movements for a document
	GetMovementsByRecorder(ctx context.Context, recorderID id.ID) ([]entity.DebtMovement, error)

	// Balance operations

	// GetBalance returns current debt for clinic+client
	GetBalance(ctx context.Context, clinicID, clientID id.ID) (entity.DebtBalance, error)

	// GetBalanceForUpdate returns balance with row lock (for collection checks)
	GetBalanceForUpdate(ctx context.Context, clinicID, clientID id.ID) (entity.DebtBalance, error)

	// GetBalancesByClinic returns all non-zero debts for a clinic
	GetBalancesByClinic(ctx context.Context, clinicID id.ID, filter BalanceFilter) ([]entity.DebtBalance, error)

	// GetBalancesByClient returns debts across all clinics for a client
	GetBalancesByClient(ctx context.Context, clientID id.ID) ([]entity.DebtBalance, error)

	// GetBalanceAtDate calculates a client's debt as of a specific date (for reports)
	GetBalanceAtDate(ctx context.Context, clinicID, clientID id.ID, date time.Time) (types.Money, error)

	// Reporting

	// GetMovementHistory returns debt movement history for a client
	GetMovementHistory(ctx context.Context, clientID id.ID, filter MovementFilter) ([]entity.DebtMovement, error)

	// GetTurnover calculates debt growth and collection totals for a period
	GetTurnover(ctx context.Context, filter TurnoverFilter) (Turnover, error)

	// Maintenance

	// RecalculateBalances rebuilds balance table from movements
	RecalculateBalances(ctx context.Context, clinicID, clientID *id.ID) error
}

// BalanceFilter for filtering balance queries.
type BalanceFilter struct {
	ClientIDs   []id.ID
	ExcludeZero bool
	MinAmount   *types.Money
}

// MovementFilter for filtering movement history.
type MovementFilter struct {
	ClinicID   *id.ID
	RecordType *entity.RecordType
	FromDate   *time.Time
	ToDate     *time.Time
	Limit      int
	Offset     int
}

// TurnoverFilter for turnover reports.
type TurnoverFilter struct {
	ClinicID *id.ID
	ClientID *id.ID
	FromDate time.Time
	ToDate   time.Time
}

// Turnover represents debt growth/collection totals.
type Turnover struct {
	ClinicID       id.ID       `json:"clinicId,omitempty"`
	ClientID       id.ID       `json:"clientId,omitempty"`
	OpeningBalance types.Money `json:"openingBalance"`
	Accrued        types.Money `json:"accrued"`
	Collected      types.Money `json:"collected"`
	ClosingBalance types.Money `json:"closingBalance"`
}
