// Package category provides the Category catalog.
// Categories classify sale items for revenue mapping and expenses for cost
// mapping; the posting engine resolves accounts per category.
package category

import (
	"context"

	"clinova/internal/core/apperror"
	"clinova/internal/core/entity"
)

// Kind separates sale categories from expense categories.
type Kind string

const (
	KindRevenue Kind = "revenue" // services and products sold
	KindExpense Kind = "expense" // operating costs
)

// Category represents a revenue or expense classification node.
// Hierarchy uses the catalog's ParentID/IsFolder fields.
type Category struct {
	entity.Catalog

	// Kind defines whether this category classifies sales or expenses
	Kind Kind `db:"kind" json:"kind"`

	// Description is a free-form note
	Description *string `db:"description" json:"description,omitempty"`
}

// NewCategory creates a new Category with required fields.
func NewCategory(code, name string, kind Kind) *Category {
	return &Category{
		Catalog: entity.NewCatalog(code, name),
		Kind:    kind,
	}
}

// Validate implements entity.Validatable interface.
func (c *Category) Validate(ctx context.Context) error {
	if err := c.Catalog.Validate(ctx); err != nil {
		return err
	}

	switch c.Kind {
	case KindRevenue, KindExpense:
	default:
		return apperror.NewValidation("invalid category kind").
			WithDetail("field", "kind").
			WithDetail("value", string(c.Kind))
	}

	return nil
}
