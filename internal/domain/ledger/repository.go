package ledger

import (
	"context"
	"time"

	"clinova/internal/core/id"
	"clinova/internal/domain"
)

// AccountRepository defines storage for the chart of accounts.
type AccountRepository interface {
	domain.CatalogRepository[*Account]

	// GetByNumber finds an account by its number within a legal entity's chart.
	GetByNumber(ctx context.Context, legalEntityID id.ID, number string) (*Account, error)

	// ListByLegalEntity returns the whole chart, ordered by account number.
	ListByLegalEntity(ctx context.Context, legalEntityID id.ID) ([]*Account, error)
}

// MappingRepository defines storage for concept-to-account mappings.
type MappingRepository interface {
	Create(ctx context.Context, m *Mapping) error
	Update(ctx context.Context, m *Mapping) error
	GetByID(ctx context.Context, mappingID id.ID) (*Mapping, error)

	// Resolve finds the active mapping for (concept, referenceKey) within a
	// legal entity. When clinicID is given, a clinic-scoped mapping wins over
	// the entity-wide one. Returns apperror NOT_FOUND when nothing matches.
	Resolve(ctx context.Context, concept Concept, referenceKey string, legalEntityID id.ID, clinicID *id.ID) (*Mapping, error)

	// ListByLegalEntity returns all mappings of a legal entity.
	ListByLegalEntity(ctx context.Context, legalEntityID id.ID) ([]*Mapping, error)

	// Deactivate retires a mapping without deleting it.
	Deactivate(ctx context.Context, mappingID id.ID) error
}

// EntryFilter narrows journal listings.
type EntryFilter struct {
	LegalEntityID *id.ID
	ClinicID      *id.ID
	SourceType    *SourceType
	AccountID     *id.ID
	DateFrom      *time.Time
	DateTo        *time.Time
	Limit         int
	Offset        int
}

// EntryRepository defines storage for journal entries.
// Entries are immutable: there is no Update. Regeneration deletes and
// re-creates inside one transaction.
type EntryRepository interface {
	// Create persists the entry and all its lines.
	Create(ctx context.Context, e *Entry) error

	// GetByID loads an entry with its lines.
	GetByID(ctx context.Context, entryID id.ID) (*Entry, error)

	// GetBySource loads the entry derived from a source document, with lines.
	// Returns apperror NOT_FOUND when the source has no entry yet.
	GetBySource(ctx context.Context, sourceType SourceType, sourceID id.ID) (*Entry, error)

	// Delete removes an entry and its lines.
	Delete(ctx context.Context, entryID id.ID) error

	// List returns entries (without lines) matching the filter.
	List(ctx context.Context, f EntryFilter) (domain.ListResult[*Entry], error)
}
