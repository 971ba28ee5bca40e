// Package vattype provides the VATType catalog.
// VAT types carry the tax rate applied to sale lines; the posting engine
// credits output VAT per type through the account mapping.
package vattype

import (
	"context"

	"github.com/shopspring/decimal"

	"clinova/internal/core/apperror"
	"clinova/internal/core/entity"
)

// VATType represents one value-added-tax rate ("General 21%", "Reduced 10%").
type VATType struct {
	entity.Catalog

	// Rate is the tax fraction (0.21 for 21%)
	Rate decimal.Decimal `db:"rate" json:"rate"`

	// IsDefault indicates if this is the default rate for new items
	IsDefault bool `db:"is_default" json:"isDefault"`

	// IsExempt marks the zero-rate exemption type
	IsExempt bool `db:"is_exempt" json:"isExempt"`
}

// NewVATType creates a new VATType with required fields.
func NewVATType(code, name string, rate decimal.Decimal) *VATType {
	return &VATType{
		Catalog: entity.NewCatalog(code, name),
		Rate:    rate,
	}
}

// Validate implements entity.Validatable interface.
func (v *VATType) Validate(ctx context.Context) error {
	if err := v.Catalog.Validate(ctx); err != nil {
		return err
	}

	if v.Rate.IsNegative() || v.Rate.GreaterThan(decimal.NewFromInt(1)) {
		return apperror.NewValidation("rate must be between 0 and 1").
			WithDetail("field", "rate").
			WithDetail("value", v.Rate.String())
	}
	if v.IsExempt && !v.Rate.IsZero() {
		return apperror.NewValidation("exempt VAT type must have zero rate").
			WithDetail("field", "rate")
	}

	return nil
}

// TaxOn returns the tax amount for a base, rounded to cents.
func (v *VATType) TaxOn(base decimal.Decimal) decimal.Decimal {
	return base.Mul(v.Rate).Round(2)
}
