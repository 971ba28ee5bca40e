package ledger

import (
	"context"

	"clinova/internal/core/apperror"
	"clinova/internal/core/id"
)

// Service manages the chart of accounts and the mapping configuration.
// Journal entries are created only by the posting engine; here they are
// read-only.
type Service struct {
	accounts AccountRepository
	mappings MappingRepository
	entries  EntryRepository
}

// NewService creates the ledger service.
func NewService(accounts AccountRepository, mappings MappingRepository, entries EntryRepository) *Service {
	return &Service{
		accounts: accounts,
		mappings: mappings,
		entries:  entries,
	}
}

// --- Chart of accounts ---

// CreateAccount adds an account to a legal entity's chart.
func (s *Service) CreateAccount(ctx context.Context, a *Account) error {
	if err := a.Validate(ctx); err != nil {
		return err
	}

	existing, err := s.accounts.GetByNumber(ctx, a.LegalEntityID, a.Code)
	if err != nil && !apperror.IsNotFound(err) {
		return err
	}
	if existing != nil {
		return apperror.NewDuplicate("account", "code", a.Code)
	}

	return s.accounts.Create(ctx, a)
}

// UpdateAccount updates an account.
func (s *Service) UpdateAccount(ctx context.Context, a *Account) error {
	if err := a.Validate(ctx); err != nil {
		return err
	}
	return s.accounts.Update(ctx, a)
}

// GetAccount loads one account.
func (s *Service) GetAccount(ctx context.Context, accountID id.ID) (*Account, error) {
	return s.accounts.GetByID(ctx, accountID)
}

// GetChart returns the full chart of a legal entity, ordered by number.
func (s *Service) GetChart(ctx context.Context, legalEntityID id.ID) ([]*Account, error) {
	return s.accounts.ListByLegalEntity(ctx, legalEntityID)
}

// --- Mappings ---

// CreateMapping binds a concept to an account. The account must belong to
// the same legal entity and accept direct entries.
func (s *Service) CreateMapping(ctx context.Context, m *Mapping) error {
	if err := m.Validate(ctx); err != nil {
		return err
	}

	account, err := s.accounts.GetByID(ctx, m.AccountID)
	if err != nil {
		return err
	}
	if account.LegalEntityID != m.LegalEntityID {
		return apperror.NewValidation("account belongs to another legal entity").
			WithDetail("accountId", m.AccountID.String())
	}
	if !account.AllowsDirectEntry {
		return apperror.NewValidation("account does not allow direct entries").
			WithDetail("accountId", m.AccountID.String()).
			WithDetail("account", account.Code)
	}

	return s.mappings.Create(ctx, m)
}

// UpdateMapping re-points a mapping at another account.
func (s *Service) UpdateMapping(ctx context.Context, m *Mapping) error {
	if err := m.Validate(ctx); err != nil {
		return err
	}

	account, err := s.accounts.GetByID(ctx, m.AccountID)
	if err != nil {
		return err
	}
	if account.LegalEntityID != m.LegalEntityID {
		return apperror.NewValidation("account belongs to another legal entity").
			WithDetail("accountId", m.AccountID.String())
	}

	return s.mappings.Update(ctx, m)
}

// GetMapping loads one mapping.
func (s *Service) GetMapping(ctx context.Context, mappingID id.ID) (*Mapping, error) {
	return s.mappings.GetByID(ctx, mappingID)
}

// ListMappings returns all mappings of a legal entity.
func (s *Service) ListMappings(ctx context.Context, legalEntityID id.ID) ([]*Mapping, error) {
	return s.mappings.ListByLegalEntity(ctx, legalEntityID)
}

// DeactivateMapping retires a mapping. History referencing it stays intact.
func (s *Service) DeactivateMapping(ctx context.Context, mappingID id.ID) error {
	return s.mappings.Deactivate(ctx, mappingID)
}

// --- Journal (read-only) ---

// GetEntry loads one journal entry with its lines.
func (s *Service) GetEntry(ctx context.Context, entryID id.ID) (*Entry, error) {
	return s.entries.GetByID(ctx, entryID)
}

// GetEntryBySource loads the journal entry of a source document.
func (s *Service) GetEntryBySource(ctx context.Context, sourceType SourceType, sourceID id.ID) (*Entry, error) {
	return s.entries.GetBySource(ctx, sourceType, sourceID)
}
