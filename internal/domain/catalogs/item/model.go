// Package item provides the Item catalog.
// Items are the services and products sold on tickets and invoices; each
// carries the category and VAT type the posting engine maps to accounts.
package item

import (
	"context"

	"github.com/shopspring/decimal"

	"clinova/internal/core/apperror"
	"clinova/internal/core/entity"
	"clinova/internal/core/id"
)

// Kind defines the item category.
type Kind string

const (
	KindService Kind = "service" // treatments, consultations
	KindProduct Kind = "product" // retail products sold over the counter
)

// Item represents a sellable service or product.
type Item struct {
	entity.Catalog

	// Kind defines whether this is a service or a retail product
	Kind Kind `db:"kind" json:"kind"`

	// CategoryID classifies the item for revenue mapping
	CategoryID id.ID `db:"category_id" json:"categoryId"`

	// VATTypeID is the tax rate applied when sold
	VATTypeID id.ID `db:"vat_type_id" json:"vatTypeId"`

	// Price is the gross list price (tax included)
	Price decimal.Decimal `db:"price" json:"price"`

	// Barcode for retail products (EAN-13, etc.)
	Barcode *string `db:"barcode" json:"barcode,omitempty"`

	// DurationMinutes for services, used by scheduling
	DurationMinutes *int `db:"duration_minutes" json:"durationMinutes,omitempty"`

	// Description is a detailed description
	Description *string `db:"description" json:"description,omitempty"`

	// IsActive indicates if the item can be sold
	IsActive bool `db:"is_active" json:"isActive"`
}

// NewItem creates a new Item with required fields.
func NewItem(code, name string, kind Kind, categoryID, vatTypeID id.ID) *Item {
	return &Item{
		Catalog:    entity.NewCatalog(code, name),
		Kind:       kind,
		CategoryID: categoryID,
		VATTypeID:  vatTypeID,
		Price:      decimal.Zero,
		IsActive:   true,
	}
}

// Validate implements entity.Validatable interface.
func (i *Item) Validate(ctx context.Context) error {
	if err := i.Catalog.Validate(ctx); err != nil {
		return err
	}

	switch i.Kind {
	case KindService, KindProduct:
	default:
		return apperror.NewValidation("invalid item kind").
			WithDetail("field", "kind").
			WithDetail("value", string(i.Kind))
	}

	if id.IsNil(i.CategoryID) {
		return apperror.NewValidation("category is required").
			WithDetail("field", "categoryId")
	}
	if id.IsNil(i.VATTypeID) {
		return apperror.NewValidation("VAT type is required").
			WithDetail("field", "vatTypeId")
	}

	if i.Price.IsNegative() {
		return apperror.NewValidation("price cannot be negative").
			WithDetail("field", "price")
	}

	// Barcodes belong to retail products
	if i.Kind == KindService && i.Barcode != nil && *i.Barcode != "" {
		return apperror.NewValidation("services cannot have barcodes").
			WithDetail("field", "barcode")
	}

	return nil
}

// IsSellable returns true if the item can appear on a ticket.
func (i *Item) IsSellable() bool {
	return i.IsActive && !i.IsFolder
}
