package dto

import (
	"github.com/shopspring/decimal"

	"clinova/internal/domain/catalogs/vattype"
)

// CreateVATTypeRequest is the DTO for creating a VAT type.
type CreateVATTypeRequest struct {
	Code      string          `json:"code"`
	Name      string          `json:"name" binding:"required"`
	Rate      decimal.Decimal `json:"rate"`
	IsDefault bool            `json:"isDefault"`
	IsExempt  bool            `json:"isExempt"`
}

func (r CreateVATTypeRequest) ToEntity() *vattype.VATType {
	v := vattype.NewVATType(r.Code, r.Name, r.Rate)
	v.IsDefault = r.IsDefault
	v.IsExempt = r.IsExempt
	return v
}

// UpdateVATTypeRequest is the DTO for updating a VAT type.
type UpdateVATTypeRequest struct {
	Version      int             `json:"version" binding:"required"`
	Code         string          `json:"code"`
	Name         string          `json:"name" binding:"required"`
	Rate         decimal.Decimal `json:"rate"`
	IsDefault    bool            `json:"isDefault"`
	IsExempt     bool            `json:"isExempt"`
	DeletionMark bool            `json:"deletionMark"`
}

func (r UpdateVATTypeRequest) ApplyTo(v *vattype.VATType) {
	v.Code = r.Code
	v.Name = r.Name
	v.Rate = r.Rate
	v.IsDefault = r.IsDefault
	v.IsExempt = r.IsExempt
	v.DeletionMark = r.DeletionMark
}

// VATTypeResponse is the DTO for returning VAT type data.
type VATTypeResponse struct {
	CatalogResponse
	Rate      decimal.Decimal `json:"rate"`
	IsDefault bool            `json:"isDefault"`
	IsExempt  bool            `json:"isExempt"`
}

func FromVATType(v *vattype.VATType) VATTypeResponse {
	return VATTypeResponse{
		CatalogResponse: FromCatalog(v.Catalog),
		Rate:            v.Rate,
		IsDefault:       v.IsDefault,
		IsExempt:        v.IsExempt,
	}
}
