package posting

import (
	"context"

	"clinova/internal/core/apperror"
	"clinova/internal/core/id"
	"clinova/internal/domain/ledger"
)

// Resolver turns business concepts into postable account IDs.
// A missing mapping is fatal for the whole entry: the caller must not persist
// anything after receiving MAPPING_NOT_FOUND.
type Resolver struct {
	mappings ledger.MappingRepository
	accounts ledger.AccountRepository
}

// NewResolver creates a resolver over the mapping and account repositories.
func NewResolver(mappings ledger.MappingRepository, accounts ledger.AccountRepository) *Resolver {
	return &Resolver{mappings: mappings, accounts: accounts}
}

// Account resolves (concept, referenceKey) to an account within a legal
// entity. A clinic-scoped mapping wins over the entity-wide one. The resolved
// account must be active and allow direct entry.
func (r *Resolver) Account(ctx context.Context, concept ledger.Concept, referenceKey string, legalEntityID id.ID, clinicID *id.ID) (id.ID, error) {
	m, err := r.mappings.Resolve(ctx, concept, referenceKey, legalEntityID, clinicID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return id.Nil(), apperror.NewMappingNotFound(string(concept), referenceKey, legalEntityID.String())
		}
		return id.Nil(), err
	}

	account, err := r.accounts.GetByID(ctx, m.AccountID)
	if err != nil {
		return id.Nil(), err
	}
	if !account.IsActive {
		return id.Nil(), apperror.NewBusinessRule(
			apperror.CodeBusinessRule,
			"Mapped account is inactive",
		).WithDetail("account", account.Number()).WithDetail("concept", string(concept))
	}
	if !account.AllowsDirectEntry {
		return id.Nil(), apperror.NewBusinessRule(
			apperror.CodeBusinessRule,
			"Mapped account does not allow direct entry",
		).WithDetail("account", account.Number()).WithDetail("concept", string(concept))
	}

	return account.ID, nil
}
