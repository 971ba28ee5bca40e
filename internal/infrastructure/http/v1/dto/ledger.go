package dto

import (
	"clinova/internal/core/id"
	"clinova/internal/domain/ledger"
)

// --- Chart of accounts ---

// CreateAccountRequest is the DTO for adding an account to the chart.
type CreateAccountRequest struct {
	LegalEntityID     id.ID   `json:"legalEntityId" binding:"required"`
	Code              string  `json:"code" binding:"required"`
	Name              string  `json:"name" binding:"required"`
	Type              string  `json:"type" binding:"required,oneof=asset liability equity revenue expense"`
	AllowsDirectEntry *bool   `json:"allowsDirectEntry"`
	ParentID          *string `json:"parentId"`
	IsFolder          bool    `json:"isFolder"`
}

func (r CreateAccountRequest) ToEntity() *ledger.Account {
	a := ledger.NewAccount(r.LegalEntityID, r.Code, r.Name, ledger.AccountType(r.Type))
	if r.AllowsDirectEntry != nil {
		a.AllowsDirectEntry = *r.AllowsDirectEntry
	}
	a.ParentID = r.ParentID
	a.IsFolder = r.IsFolder
	return a
}

// UpdateAccountRequest is the DTO for updating an account.
type UpdateAccountRequest struct {
	Version           int    `json:"version" binding:"required"`
	Code              string `json:"code" binding:"required"`
	Name              string `json:"name" binding:"required"`
	Type              string `json:"type" binding:"required,oneof=asset liability equity revenue expense"`
	AllowsDirectEntry bool   `json:"allowsDirectEntry"`
	IsActive          bool   `json:"isActive"`
}

func (r UpdateAccountRequest) ApplyTo(a *ledger.Account) {
	a.Code = r.Code
	a.Name = r.Name
	a.Type = ledger.AccountType(r.Type)
	a.AllowsDirectEntry = r.AllowsDirectEntry
	a.IsActive = r.IsActive
}

// AccountResponse is the DTO for returning account data.
type AccountResponse struct {
	CatalogResponse
	LegalEntityID     id.ID  `json:"legalEntityId"`
	Type              string `json:"type"`
	AllowsDirectEntry bool   `json:"allowsDirectEntry"`
	IsActive          bool   `json:"isActive"`
}

func FromAccount(a *ledger.Account) AccountResponse {
	return AccountResponse{
		CatalogResponse:   FromCatalog(a.Catalog),
		LegalEntityID:     a.LegalEntityID,
		Type:              string(a.Type),
		AllowsDirectEntry: a.AllowsDirectEntry,
		IsActive:          a.IsActive,
	}
}

// --- Account mappings ---

// CreateMappingRequest binds a business concept to an account.
type CreateMappingRequest struct {
	LegalEntityID id.ID  `json:"legalEntityId" binding:"required"`
	Concept       string `json:"concept" binding:"required"`
	ReferenceKey  string `json:"referenceKey"`
	ClinicID      *id.ID `json:"clinicId"`
	AccountID     id.ID  `json:"accountId" binding:"required"`
}

func (r CreateMappingRequest) ToEntity() *ledger.Mapping {
	m := ledger.NewMapping(r.LegalEntityID, ledger.Concept(r.Concept), r.ReferenceKey, r.AccountID)
	m.ClinicID = r.ClinicID
	return m
}

// UpdateMappingRequest re-points a mapping at another account.
type UpdateMappingRequest struct {
	Version   int   `json:"version" binding:"required"`
	AccountID id.ID `json:"accountId" binding:"required"`
	Active    bool  `json:"active"`
}

func (r UpdateMappingRequest) ApplyTo(m *ledger.Mapping) {
	m.AccountID = r.AccountID
	m.Active = r.Active
}

// MappingResponse is the DTO for returning mapping data.
type MappingResponse struct {
	ID            id.ID  `json:"id"`
	Version       int    `json:"version"`
	LegalEntityID id.ID  `json:"legalEntityId"`
	Concept       string `json:"concept"`
	ReferenceKey  string `json:"referenceKey,omitempty"`
	ClinicID      *id.ID `json:"clinicId,omitempty"`
	AccountID     id.ID  `json:"accountId"`
	Active        bool   `json:"active"`
}

func FromMapping(m *ledger.Mapping) MappingResponse {
	return MappingResponse{
		ID:            m.ID,
		Version:       m.Version,
		LegalEntityID: m.LegalEntityID,
		Concept:       string(m.Concept),
		ReferenceKey:  m.ReferenceKey,
		ClinicID:      m.ClinicID,
		AccountID:     m.AccountID,
		Active:        m.Active,
	}
}

// --- Journal entries ---

// EntryResponse is the DTO for returning a journal entry.
// Entries are read-only over HTTP; there is no create or update request.
type EntryResponse struct {
	ID            id.ID             `json:"id"`
	EntryNumber   string            `json:"entryNumber"`
	Date          string            `json:"date"`
	LegalEntityID id.ID             `json:"legalEntityId"`
	ClinicID      id.ID             `json:"clinicId"`
	SourceType    string            `json:"sourceType"`
	SourceID      id.ID             `json:"sourceId"`
	Description   string            `json:"description"`
	TotalDebit    string            `json:"totalDebit"`
	TotalCredit   string            `json:"totalCredit"`
	Lines         []EntryLineDetail `json:"lines,omitempty"`
}

// EntryLineDetail is one debit/credit line of an entry.
type EntryLineDetail struct {
	LineNo      int    `json:"lineNo"`
	AccountID   id.ID  `json:"accountId"`
	Debit       string `json:"debit"`
	Credit      string `json:"credit"`
	Description string `json:"description,omitempty"`
}

func FromEntry(e *ledger.Entry) EntryResponse {
	resp := EntryResponse{
		ID:            e.ID,
		EntryNumber:   e.EntryNumber,
		Date:          e.Date.Format("2006-01-02"),
		LegalEntityID: e.LegalEntityID,
		ClinicID:      e.ClinicID,
		SourceType:    string(e.SourceType),
		SourceID:      e.SourceID,
		Description:   e.Description,
		TotalDebit:    e.TotalDebit.StringFixed(2),
		TotalCredit:   e.TotalCredit.StringFixed(2),
	}
	for _, l := range e.Lines {
		resp.Lines = append(resp.Lines, EntryLineDetail{
			LineNo:      l.LineNo,
			AccountID:   l.AccountID,
			Debit:       l.Debit.StringFixed(2),
			Credit:      l.Credit.StringFixed(2),
			Description: l.Description,
		})
	}
	return resp
}
