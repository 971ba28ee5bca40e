package dto

import (
	"clinova/internal/domain/catalogs/paymentmethod"
)

// CreatePaymentMethodRequest is the DTO for creating a payment method.
type CreatePaymentMethodRequest struct {
	Code string `json:"code"`
	Name string `json:"name" binding:"required"`
	Kind string `json:"kind" binding:"required,oneof=cash card transfer online voucher"`
}

func (r CreatePaymentMethodRequest) ToEntity() *paymentmethod.PaymentMethod {
	return paymentmethod.NewPaymentMethod(r.Code, r.Name, paymentmethod.Kind(r.Kind))
}

// UpdatePaymentMethodRequest is the DTO for updating a payment method.
type UpdatePaymentMethodRequest struct {
	Version      int    `json:"version" binding:"required"`
	Code         string `json:"code"`
	Name         string `json:"name" binding:"required"`
	Kind         string `json:"kind" binding:"required,oneof=cash card transfer online voucher"`
	IsActive     bool   `json:"isActive"`
	DeletionMark bool   `json:"deletionMark"`
}

func (r UpdatePaymentMethodRequest) ApplyTo(p *paymentmethod.PaymentMethod) {
	p.Code = r.Code
	p.Name = r.Name
	p.Kind = paymentmethod.Kind(r.Kind)
	p.IsActive = r.IsActive
	p.DeletionMark = r.DeletionMark
}

// PaymentMethodResponse is the DTO for returning payment method data.
type PaymentMethodResponse struct {
	CatalogResponse
	Kind     string `json:"kind"`
	IsActive bool   `json:"isActive"`
}

func FromPaymentMethod(p *paymentmethod.PaymentMethod) PaymentMethodResponse {
	return PaymentMethodResponse{
		CatalogResponse: FromCatalog(p.Catalog),
		Kind:            string(p.Kind),
		IsActive:        p.IsActive,
	}
}
