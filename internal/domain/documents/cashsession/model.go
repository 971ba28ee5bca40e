// Package cashsession provides the CashSession document: one cash drawer
// shift at a clinic. Reconciling a session compares counted cash against the
// expected amount and posts any difference as over/short.
package cashsession

import (
	"context"
	"time"

	"clinova/internal/core/apperror"
	"clinova/internal/core/entity"
	"clinova/internal/core/id"
	"clinova/internal/core/types"
	"clinova/internal/domain/posting"
)

// CashSession represents a cash drawer shift.
type CashSession struct {
	entity.Document

	OpenedAt time.Time  `db:"opened_at" json:"openedAt"`
	ClosedAt *time.Time `db:"closed_at" json:"closedAt,omitempty"`

	// OpenedBy and ClosedBy identify the users working the drawer
	OpenedBy id.ID  `db:"opened_by" json:"openedBy"`
	ClosedBy *id.ID `db:"closed_by" json:"closedBy,omitempty"`

	// OpeningFloat is the cash placed in the drawer at open
	OpeningFloat types.Money `db:"opening_float" json:"openingFloat"`

	// ExpectedCash is computed at close: opening float plus cash collected
	// during the session
	ExpectedCash types.Money `db:"expected_cash" json:"expectedCash"`

	// CountedCash is the physical count entered at close
	CountedCash types.Money `db:"counted_cash" json:"countedCash"`
}

// NewCashSession opens a new drawer session.
func NewCashSession(legalEntityID, clinicID, openedBy id.ID, openingFloat types.Money) *CashSession {
	return &CashSession{
		Document:     entity.NewDocument(legalEntityID, clinicID),
		OpenedAt:     time.Now().UTC(),
		OpenedBy:     openedBy,
		OpeningFloat: openingFloat,
	}
}

// IsOpen reports whether the session is still collecting cash.
func (cs *CashSession) IsOpen() bool {
	return cs.ClosedAt == nil
}

// Difference returns counted minus expected cash.
func (cs *CashSession) Difference() types.Money {
	return cs.CountedCash.Sub(cs.ExpectedCash)
}

// Validate implements entity.Validatable.
func (cs *CashSession) Validate(ctx context.Context) error {
	if err := cs.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(cs.OpenedBy) {
		return apperror.NewValidation("opening user is required").
			WithDetail("field", "openedBy")
	}
	if cs.OpeningFloat.IsNegative() {
		return apperror.NewValidation("opening float cannot be negative").
			WithDetail("field", "openingFloat")
	}
	if cs.CountedCash.IsNegative() {
		return apperror.NewValidation("counted cash cannot be negative").
			WithDetail("field", "countedCash")
	}
	if cs.ClosedAt != nil && cs.ClosedAt.Before(cs.OpenedAt) {
		return apperror.NewValidation("close time precedes open time").
			WithDetail("field", "closedAt")
	}

	return nil
}

// GetDocumentType returns the document type name.
func (cs *CashSession) GetDocumentType() string {
	return "CashSession"
}

// ToEvent assembles the monetary facts for journal generation.
func (cs *CashSession) ToEvent() posting.CashSessionEvent {
	ev := posting.CashSessionEvent{
		ID:            cs.ID,
		Number:        cs.Number,
		LegalEntityID: cs.LegalEntityID,
		ClinicID:      cs.ClinicID,
		ClosedAt:      cs.Date,
		ExpectedCash:  cs.ExpectedCash,
		CountedCash:   cs.CountedCash,
	}
	if cs.ClosedAt != nil {
		ev.ClosedAt = *cs.ClosedAt
	}
	return ev
}
