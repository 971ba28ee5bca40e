package dto

import (
	"clinova/internal/core/id"
	"clinova/internal/domain/catalogs/clinic"
)

// CreateClinicRequest is the DTO for creating a clinic.
type CreateClinicRequest struct {
	Code          string `json:"code"`
	Name          string `json:"name" binding:"required"`
	LegalEntityID id.ID  `json:"legalEntityId" binding:"required"`
	Address       string `json:"address"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Timezone      string `json:"timezone"`
	IsDefault     bool   `json:"isDefault"`
}

func (r CreateClinicRequest) ToEntity() *clinic.Clinic {
	c := clinic.NewClinic(r.Code, r.Name, r.LegalEntityID)
	c.Address = optString(r.Address)
	c.Phone = optString(r.Phone)
	c.Email = optString(r.Email)
	c.Timezone = optString(r.Timezone)
	c.IsDefault = r.IsDefault
	return c
}

// UpdateClinicRequest is the DTO for updating a clinic.
type UpdateClinicRequest struct {
	Version       int    `json:"version" binding:"required"`
	Code          string `json:"code"`
	Name          string `json:"name" binding:"required"`
	LegalEntityID id.ID  `json:"legalEntityId" binding:"required"`
	Address       string `json:"address"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Timezone      string `json:"timezone"`
	IsActive      bool   `json:"isActive"`
	IsDefault     bool   `json:"isDefault"`
	DeletionMark  bool   `json:"deletionMark"`
}

func (r UpdateClinicRequest) ApplyTo(c *clinic.Clinic) {
	c.Code = r.Code
	c.Name = r.Name
	c.LegalEntityID = r.LegalEntityID
	c.Address = optString(r.Address)
	c.Phone = optString(r.Phone)
	c.Email = optString(r.Email)
	c.Timezone = optString(r.Timezone)
	c.IsActive = r.IsActive
	c.IsDefault = r.IsDefault
	c.DeletionMark = r.DeletionMark
}

// ClinicResponse is the DTO for returning clinic data.
type ClinicResponse struct {
	CatalogResponse
	LegalEntityID id.ID  `json:"legalEntityId"`
	Address       string `json:"address,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Email         string `json:"email,omitempty"`
	Timezone      string `json:"timezone,omitempty"`
	IsActive      bool   `json:"isActive"`
	IsDefault     bool   `json:"isDefault"`
}

func FromClinic(c *clinic.Clinic) ClinicResponse {
	return ClinicResponse{
		CatalogResponse: FromCatalog(c.Catalog),
		LegalEntityID:   c.LegalEntityID,
		Address:         derefString(c.Address),
		Phone:           derefString(c.Phone),
		Email:           derefString(c.Email),
		Timezone:        derefString(c.Timezone),
		IsActive:        c.IsActive,
		IsDefault:       c.IsDefault,
	}
}
