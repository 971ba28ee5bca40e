package dto

import (
	"clinova/internal/domain/catalogs/category"
)

// CreateCategoryRequest is the DTO for creating a category.
type CreateCategoryRequest struct {
	Code        string  `json:"code"`
	Name        string  `json:"name" binding:"required"`
	Kind        string  `json:"kind" binding:"required,oneof=revenue expense"`
	Description string  `json:"description"`
	ParentID    *string `json:"parentId"`
	IsFolder    bool    `json:"isFolder"`
}

func (r CreateCategoryRequest) ToEntity() *category.Category {
	c := category.NewCategory(r.Code, r.Name, category.Kind(r.Kind))
	c.Description = optString(r.Description)
	c.ParentID = r.ParentID
	c.IsFolder = r.IsFolder
	return c
}

// UpdateCategoryRequest is the DTO for updating a category.
type UpdateCategoryRequest struct {
	Version      int     `json:"version" binding:"required"`
	Code         string  `json:"code"`
	Name         string  `json:"name" binding:"required"`
	Kind         string  `json:"kind" binding:"required,oneof=revenue expense"`
	Description  string  `json:"description"`
	ParentID     *string `json:"parentId"`
	DeletionMark bool    `json:"deletionMark"`
}

func (r UpdateCategoryRequest) ApplyTo(c *category.Category) {
	c.Code = r.Code
	c.Name = r.Name
	c.Kind = category.Kind(r.Kind)
	c.Description = optString(r.Description)
	c.ParentID = r.ParentID
	c.DeletionMark = r.DeletionMark
}

// CategoryResponse is the DTO for returning category data.
type CategoryResponse struct {
	CatalogResponse
	Kind        string `json:"kind"`
	Description string `json:"description,omitempty"`
}

func FromCategory(c *category.Category) CategoryResponse {
	return CategoryResponse{
		CatalogResponse: FromCatalog(c.Catalog),
		Kind:            string(c.Kind),
		Description:     derefString(c.Description),
	}
}
