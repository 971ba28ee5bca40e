package entity

import (
	"context"
	"time"

	"clinova/internal/core/apperror"
	"clinova/internal/core/id"
)

// Document is the base type for business transactions.
// Examples: Ticket, Invoice, Payment, CashSession, Expense.
type Document struct {
	BaseDocument

	// Number is the document number (allocated from a series, unique within type)
	Number string `db:"number" json:"number"`

	// Date is the business date of the document
	Date time.Time `db:"date" json:"date"`

	// Posted indicates if the document is finalized and reflected in the ledger
	Posted bool `db:"posted" json:"posted"`

	// PostedVersion tracks posting iterations for movement reconciliation
	// Incremented each time document is posted/modified while posted
	PostedVersion int `db:"posted_version" json:"postedVersion"`

	// LegalEntityID is the owning legal entity (accounting scope)
	LegalEntityID id.ID `db:"legal_entity_id" json:"legalEntityId"`

	// ClinicID is the clinic where the document originated
	ClinicID id.ID `db:"clinic_id" json:"clinicId"`

	// Comment is an optional user comment
	Comment string `db:"comment" json:"comment,omitempty"`
}

// NewDocument creates a new Document with generated ID.
// In Database-per-Tenant architecture, tenantID is not required.
func NewDocument(legalEntityID, clinicID id.ID) Document {
	return Document{
		BaseDocument:  NewBaseDocument(),
		Date:          time.Now().UTC(),
		LegalEntityID: legalEntityID,
		ClinicID:      clinicID,
	}
}

// Validate implements Validatable interface.
func (d *Document) Validate(ctx context.Context) error {
	if id.IsNil(d.LegalEntityID) {
		return apperror.NewValidation("legal entity is required").
			WithDetail("field", "legalEntityId")
	}

	if id.IsNil(d.ClinicID) {
		return apperror.NewValidation("clinic is required").
			WithDetail("field", "clinicId")
	}

	if d.Date.IsZero() {
		return apperror.NewValidation("date is required").
			WithDetail("field", "date")
	}

	return nil
}

// CanModify checks if document can be modified.
// Posted documents require unposting first.
func (d *Document) CanModify() error {
	if d.Posted {
		return apperror.NewBusinessRule(
			apperror.CodeDocumentPosted,
			"Cannot modify posted document. Unpost first.",
		).WithDetail("document_id", d.ID.String())
	}
	return nil
}

// MarkPosted sets the posted flag and increments version.
func (d *Document) MarkPosted() {
	d.Posted = true
	d.PostedVersion++
	d.Touch()
}

// MarkUnposted clears the posted flag.
func (d *Document) MarkUnposted() {
	d.Posted = false
	d.Touch()
}

// IsBackdated checks if document date is in the past.
func (d *Document) IsBackdated() bool {
	return d.Date.Before(time.Now().UTC().Truncate(24 * time.Hour))
}

// GetID returns the document ID.
func (d *Document) GetID() id.ID {
	return d.ID
}

// GetPostedVersion returns the current posting version.
func (d *Document) GetPostedVersion() int {
	return d.PostedVersion
}

// IsPosted returns true if document is currently posted.
func (d *Document) IsPosted() bool {
	return d.Posted
}
