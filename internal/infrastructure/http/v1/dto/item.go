package dto

import (
	"github.com/shopspring/decimal"

	"clinova/internal/core/id"
	"clinova/internal/domain/catalogs/item"
)

// CreateItemRequest is the DTO for creating an item.
type CreateItemRequest struct {
	Code            string          `json:"code"`
	Name            string          `json:"name" binding:"required"`
	Kind            string          `json:"kind" binding:"required,oneof=service product"`
	CategoryID      id.ID           `json:"categoryId" binding:"required"`
	VATTypeID       id.ID           `json:"vatTypeId" binding:"required"`
	Price           decimal.Decimal `json:"price"`
	Barcode         string          `json:"barcode"`
	DurationMinutes *int            `json:"durationMinutes"`
	Description     string          `json:"description"`
}

func (r CreateItemRequest) ToEntity() *item.Item {
	i := item.NewItem(r.Code, r.Name, item.Kind(r.Kind), r.CategoryID, r.VATTypeID)
	i.Price = r.Price
	i.Barcode = optString(r.Barcode)
	i.DurationMinutes = r.DurationMinutes
	i.Description = optString(r.Description)
	return i
}

// UpdateItemRequest is the DTO for updating an item.
type UpdateItemRequest struct {
	Version         int             `json:"version" binding:"required"`
	Code            string          `json:"code"`
	Name            string          `json:"name" binding:"required"`
	Kind            string          `json:"kind" binding:"required,oneof=service product"`
	CategoryID      id.ID           `json:"categoryId" binding:"required"`
	VATTypeID       id.ID           `json:"vatTypeId" binding:"required"`
	Price           decimal.Decimal `json:"price"`
	Barcode         string          `json:"barcode"`
	DurationMinutes *int            `json:"durationMinutes"`
	Description     string          `json:"description"`
	IsActive        bool            `json:"isActive"`
	DeletionMark    bool            `json:"deletionMark"`
}

func (r UpdateItemRequest) ApplyTo(i *item.Item) {
	i.Code = r.Code
	i.Name = r.Name
	i.Kind = item.Kind(r.Kind)
	i.CategoryID = r.CategoryID
	i.VATTypeID = r.VATTypeID
	i.Price = r.Price
	i.Barcode = optString(r.Barcode)
	i.DurationMinutes = r.DurationMinutes
	i.Description = optString(r.Description)
	i.IsActive = r.IsActive
	i.DeletionMark = r.DeletionMark
}

// ItemResponse is the DTO for returning item data.
type ItemResponse struct {
	CatalogResponse
	Kind            string          `json:"kind"`
	CategoryID      id.ID           `json:"categoryId"`
	VATTypeID       id.ID           `json:"vatTypeId"`
	Price           decimal.Decimal `json:"price"`
	Barcode         string          `json:"barcode,omitempty"`
	DurationMinutes *int            `json:"durationMinutes,omitempty"`
	Description     string          `json:"description,omitempty"`
	IsActive        bool            `json:"isActive"`
}

func FromItem(i *item.Item) ItemResponse {
	return ItemResponse{
		CatalogResponse: FromCatalog(i.Catalog),
		Kind:            string(i.Kind),
		CategoryID:      i.CategoryID,
		VATTypeID:       i.VATTypeID,
		Price:           i.Price,
		Barcode:         derefString(i.Barcode),
		DurationMinutes: i.DurationMinutes,
		Description:     derefString(i.Description),
		IsActive:        i.IsActive,
	}
}
