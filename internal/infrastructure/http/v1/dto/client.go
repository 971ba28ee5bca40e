package dto

import (
	"time"

	"clinova/internal/domain/catalogs/client"
)

// CreateClientRequest is the DTO for creating a client.
type CreateClientRequest struct {
	Code      string     `json:"code"`
	Name      string     `json:"name" binding:"required"`
	FullName  string     `json:"fullName"`
	TaxID     string     `json:"taxId"`
	Phone     string     `json:"phone"`
	Email     string     `json:"email"`
	Address   string     `json:"address"`
	BirthDate *time.Time `json:"birthDate"`
	Comment   string     `json:"comment"`
}

func (r CreateClientRequest) ToEntity() *client.Client {
	c := client.NewClient(r.Code, r.Name)
	c.FullName = optString(r.FullName)
	c.TaxID = optString(r.TaxID)
	c.Phone = optString(r.Phone)
	c.Email = optString(r.Email)
	c.Address = optString(r.Address)
	c.BirthDate = r.BirthDate
	c.Comment = optString(r.Comment)
	return c
}

// UpdateClientRequest is the DTO for updating a client.
type UpdateClientRequest struct {
	Version      int        `json:"version" binding:"required"`
	Code         string     `json:"code"`
	Name         string     `json:"name" binding:"required"`
	FullName     string     `json:"fullName"`
	TaxID        string     `json:"taxId"`
	Phone        string     `json:"phone"`
	Email        string     `json:"email"`
	Address      string     `json:"address"`
	BirthDate    *time.Time `json:"birthDate"`
	Comment      string     `json:"comment"`
	DeletionMark bool       `json:"deletionMark"`
}

func (r UpdateClientRequest) ApplyTo(c *client.Client) {
	c.Code = r.Code
	c.Name = r.Name
	c.FullName = optString(r.FullName)
	c.TaxID = optString(r.TaxID)
	c.Phone = optString(r.Phone)
	c.Email = optString(r.Email)
	c.Address = optString(r.Address)
	c.BirthDate = r.BirthDate
	c.Comment = optString(r.Comment)
	c.DeletionMark = r.DeletionMark
}

// ClientResponse is the DTO for returning client data.
type ClientResponse struct {
	CatalogResponse
	FullName      string     `json:"fullName,omitempty"`
	TaxID         string     `json:"taxId,omitempty"`
	Phone         string     `json:"phone,omitempty"`
	Email         string     `json:"email,omitempty"`
	Address       string     `json:"address,omitempty"`
	BirthDate     *time.Time `json:"birthDate,omitempty"`
	Comment       string     `json:"comment,omitempty"`
	CanBeInvoiced bool       `json:"canBeInvoiced"`
}

func FromClient(c *client.Client) ClientResponse {
	return ClientResponse{
		CatalogResponse: FromCatalog(c.Catalog),
		FullName:        derefString(c.FullName),
		TaxID:           derefString(c.TaxID),
		Phone:           derefString(c.Phone),
		Email:           derefString(c.Email),
		Address:         derefString(c.Address),
		BirthDate:       c.BirthDate,
		Comment:         derefString(c.Comment),
		CanBeInvoiced:   c.CanBeInvoiced(),
	}
}
