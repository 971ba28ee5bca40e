// Package ledger provides the double-entry accounting core: the chart of
// accounts, concept-to-account mappings and journal entries.
package ledger

import (
	"context"

	"clinova/internal/core/apperror"
	"clinova/internal/core/entity"
	"clinova/internal/core/id"
)

// AccountType classifies an account in the chart of accounts.
type AccountType string

const (
	AccountAsset     AccountType = "asset"
	AccountLiability AccountType = "liability"
	AccountEquity    AccountType = "equity"
	AccountRevenue   AccountType = "revenue"
	AccountExpense   AccountType = "expense"
)

// Valid reports whether the type is one of the known values.
func (t AccountType) Valid() bool {
	switch t {
	case AccountAsset, AccountLiability, AccountEquity, AccountRevenue, AccountExpense:
		return true
	}
	return false
}

// Account is one node of a legal entity's chart of accounts.
// Code holds the account number ("430", "7050"); the hierarchy uses the
// catalog's ParentID/IsFolder fields. Only accounts with AllowsDirectEntry
// may carry journal lines - grouping nodes exist for reporting rollups.
type Account struct {
	entity.Catalog

	// LegalEntityID scopes the chart: each legal entity owns its own tree
	LegalEntityID id.ID `db:"legal_entity_id" json:"legalEntityId"`

	// Type drives report placement and normal balance side
	Type AccountType `db:"type" json:"type"`

	// AllowsDirectEntry permits journal lines on this account
	AllowsDirectEntry bool `db:"allows_direct_entry" json:"allowsDirectEntry"`

	// IsActive allows retiring accounts without losing history
	IsActive bool `db:"is_active" json:"isActive"`
}

// NewAccount creates an account with required fields.
func NewAccount(legalEntityID id.ID, number, name string, accountType AccountType) *Account {
	return &Account{
		Catalog:           entity.NewCatalog(number, name),
		LegalEntityID:     legalEntityID,
		Type:              accountType,
		AllowsDirectEntry: true,
		IsActive:          true,
	}
}

// Number returns the account number (the catalog code).
func (a *Account) Number() string {
	return a.Code
}

// Validate implements entity.Validatable interface.
func (a *Account) Validate(ctx context.Context) error {
	if err := a.Catalog.Validate(ctx); err != nil {
		return err
	}
	if a.Code == "" {
		return apperror.NewValidation("account number is required").
			WithDetail("field", "code")
	}
	if id.IsNil(a.LegalEntityID) {
		return apperror.NewValidation("legal entity is required").
			WithDetail("field", "legalEntityId")
	}
	if !a.Type.Valid() {
		return apperror.NewValidation("unknown account type").
			WithDetail("field", "type").
			WithDetail("value", string(a.Type))
	}
	return nil
}
