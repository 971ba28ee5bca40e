// Package client provides the Client catalog.
// Clients are the people (or companies) the clinics serve; they can carry
// outstanding debt that the ledger tracks on the receivable account.
package client

import (
	"context"
	"regexp"
	"time"

	"clinova/internal/core/apperror"
	"clinova/internal/core/entity"
)

// Pre-compiled regex patterns for validation.
var (
	emailRE = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phoneRE = regexp.MustCompile(`^\+?[0-9 ()-]{6,20}$`)
	nifRE   = regexp.MustCompile(`^([0-9]{8}[A-Z]|[A-Z][0-9]{7}[0-9A-Z])$`)
)

// Client represents a person or company served by the clinics.
type Client struct {
	entity.Catalog

	// FullName is the complete legal name
	FullName *string `db:"full_name" json:"fullName,omitempty"`

	// TaxID is the fiscal identifier, required for invoicing
	TaxID *string `db:"tax_id" json:"taxId,omitempty"`

	// Phone is the primary contact phone
	Phone *string `db:"phone" json:"phone,omitempty"`

	// Email is the primary contact email
	Email *string `db:"email" json:"email,omitempty"`

	// Address is the billing address
	Address *string `db:"address" json:"address,omitempty"`

	// BirthDate for age-related treatments and marketing
	BirthDate *time.Time `db:"birth_date" json:"birthDate,omitempty"`

	// Comment is a free-form note
	Comment *string `db:"comment" json:"comment,omitempty"`
}

// NewClient creates a new Client with required fields.
func NewClient(code, name string) *Client {
	return &Client{
		Catalog: entity.NewCatalog(code, name),
	}
}

// Validate implements entity.Validatable interface.
func (c *Client) Validate(ctx context.Context) error {
	if err := c.Catalog.Validate(ctx); err != nil {
		return err
	}

	if c.TaxID != nil && *c.TaxID != "" && !nifRE.MatchString(*c.TaxID) {
		return apperror.NewValidation("invalid tax ID format").
			WithDetail("field", "taxId").
			WithDetail("value", *c.TaxID)
	}

	if c.Email != nil && *c.Email != "" && !emailRE.MatchString(*c.Email) {
		return apperror.NewValidation("invalid email format").
			WithDetail("field", "email")
	}

	if c.Phone != nil && *c.Phone != "" && !phoneRE.MatchString(*c.Phone) {
		return apperror.NewValidation("invalid phone format").
			WithDetail("field", "phone")
	}

	return nil
}

// CanBeInvoiced returns true if the client has the data an invoice requires.
func (c *Client) CanBeInvoiced() bool {
	return c.TaxID != nil && *c.TaxID != "" && c.FullName != nil && *c.FullName != ""
}
