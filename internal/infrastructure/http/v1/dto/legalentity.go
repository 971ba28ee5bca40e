package dto

import (
	"clinova/internal/domain/catalogs/legalentity"
)

// CreateLegalEntityRequest is the DTO for creating a legal entity.
type CreateLegalEntityRequest struct {
	Code          string `json:"code"`
	Name          string `json:"name" binding:"required"`
	FullName      string `json:"fullName"`
	TaxID         string `json:"taxId"`
	FiscalAddress string `json:"fiscalAddress"`
	IsDefault     bool   `json:"isDefault"`
}

func (r CreateLegalEntityRequest) ToEntity() *legalentity.LegalEntity {
	e := legalentity.NewLegalEntity(r.Code, r.Name)
	if r.FullName != "" {
		e.FullName = &r.FullName
	}
	if r.TaxID != "" {
		e.TaxID = &r.TaxID
	}
	if r.FiscalAddress != "" {
		e.FiscalAddress = &r.FiscalAddress
	}
	e.IsDefault = r.IsDefault
	return e
}

// UpdateLegalEntityRequest is the DTO for updating a legal entity.
type UpdateLegalEntityRequest struct {
	Version       int    `json:"version" binding:"required"`
	Code          string `json:"code"`
	Name          string `json:"name" binding:"required"`
	FullName      string `json:"fullName"`
	TaxID         string `json:"taxId"`
	FiscalAddress string `json:"fiscalAddress"`
	IsDefault     bool   `json:"isDefault"`
	DeletionMark  bool   `json:"deletionMark"`
}

func (r UpdateLegalEntityRequest) ApplyTo(e *legalentity.LegalEntity) {
	e.Code = r.Code
	e.Name = r.Name
	e.FullName = optString(r.FullName)
	e.TaxID = optString(r.TaxID)
	e.FiscalAddress = optString(r.FiscalAddress)
	e.IsDefault = r.IsDefault
	e.DeletionMark = r.DeletionMark
}

// LegalEntityResponse is the DTO for returning legal entity data.
type LegalEntityResponse struct {
	CatalogResponse
	FullName      string `json:"fullName,omitempty"`
	TaxID         string `json:"taxId,omitempty"`
	FiscalAddress string `json:"fiscalAddress,omitempty"`
	IsDefault     bool   `json:"isDefault"`
}

func FromLegalEntity(e *legalentity.LegalEntity) LegalEntityResponse {
	return LegalEntityResponse{
		CatalogResponse: FromCatalog(e.Catalog),
		FullName:        derefString(e.FullName),
		TaxID:           derefString(e.TaxID),
		FiscalAddress:   derefString(e.FiscalAddress),
		IsDefault:       e.IsDefault,
	}
}

// optString maps an empty string to nil.
func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// derefString maps nil to the empty string.
func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
