// Package entity provides core domain entities.
package entity

import (
	"time"

	"clinova/internal/core/id"
	"clinova/internal/core/types"
)

// RecordType defines movement direction for accumulation registers.
type RecordType string

const (
	// RecordTypeReceipt increases balance
	RecordTypeReceipt RecordType = "receipt"
	// RecordTypeExpense decreases balance
	RecordTypeExpense RecordType = "expense"
)

// RegisterKind defines the type of register.
type RegisterKind string

const (
	// RegisterKindAccumulation tracks quantities and amounts over time
	RegisterKindAccumulation RegisterKind = "accumulation"
	// RegisterKindInformation stores dimensional data
	RegisterKindInformation RegisterKind = "information"
)

// MovementBase contains common fields for all register movements.
// Movements are immutable - they are never updated, only deleted and recreated.
type MovementBase struct {
	// LineID is unique identifier for this movement line (UUIDv7)
	// Used instead of hash for deterministic tracking
	LineID id.ID `db:"line_id" json:"lineId"`

	// RecorderID is the document that created this movement
	RecorderID id.ID `db:"recorder_id" json:"recorderId"`

	// RecorderType is the document type (e.g., "Ticket", "Payment")
	RecorderType string `db:"recorder_type" json:"recorderType"`

	// RecorderVersion tracks which posting iteration created this movement
	// Allows efficient cleanup: DELETE WHERE recorder_id = X AND recorder_version < Y
	RecorderVersion int `db:"recorder_version" json:"recorderVersion"`

	// Period is the business date for the movement (for period-based queries)
	Period time.Time `db:"period" json:"period"`

	// RecordType: receipt or expense
	RecordType RecordType `db:"record_type" json:"recordType"`

	// CreatedAt is when the movement was recorded
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewMovementBase creates a new movement base with generated LineID.
func NewMovementBase(recorderID id.ID, recorderType string, recorderVersion int, period time.Time, recordType RecordType) MovementBase {
	return MovementBase{
		LineID:          id.New(),
		RecorderID:      recorderID,
		RecorderType:    recorderType,
		RecorderVersion: recorderVersion,
		Period:          period,
		RecordType:      recordType,
		CreatedAt:       time.Now().UTC(),
	}
}

// DebtMovement represents a movement in the client debt accumulation register.
// Receipt increases what a client owes (deferred payment on a closed ticket),
// expense decreases it (debt collection payment).
type DebtMovement struct {
	MovementBase

	// Dimensions
	ClinicID id.ID `db:"clinic_id" json:"clinicId"`
	ClientID id.ID `db:"client_id" json:"clientId"`

	// Resources
	Amount types.Money `db:"amount" json:"amount"`
}

// NewDebtMovement creates a new debt movement.
func NewDebtMovement(
	recorderID id.ID,
	recorderType string,
	recorderVersion int,
	period time.Time,
	recordType RecordType,
	clinicID, clientID id.ID,
	amount types.Money,
) DebtMovement {
	return DebtMovement{
		MovementBase: NewMovementBase(recorderID, recorderType, recorderVersion, period, recordType),
		ClinicID:     clinicID,
		ClientID:     clientID,
		Amount:       amount,
	}
}

// SignedAmount returns the amount with sign based on record type.
// Receipt = positive (debt grows), Expense = negative (debt shrinks).
func (m *DebtMovement) SignedAmount() types.Money {
	if m.RecordType == RecordTypeExpense {
		return m.Amount.Neg()
	}
	return m.Amount
}

// DebtBalance represents the current balance in the debt register.
// This is a materialized/cached view for fast balance queries.
type DebtBalance struct {
	// Dimensions
	ClinicID id.ID `db:"clinic_id" json:"clinicId"`
	ClientID id.ID `db:"client_id" json:"clientId"`

	// Balances
	Amount types.Money `db:"amount" json:"amount"`

	// Metadata
	LastMovementAt time.Time `db:"last_movement_at" json:"lastMovementAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}
