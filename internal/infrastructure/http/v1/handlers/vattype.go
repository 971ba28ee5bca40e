package handlers

import (
	"clinova/internal/domain/catalogs/vattype"
	"clinova/internal/infrastructure/http/v1/dto"
)

// VATTypeHandler handles HTTP requests for VAT types.
type VATTypeHandler = CatalogHandler[
	*vattype.VATType,
	dto.CreateVATTypeRequest,
	dto.UpdateVATTypeRequest,
]

// NewVATTypeHandler creates a new VATTypeHandler.
func NewVATTypeHandler(base *BaseHandler, service *vattype.Service) *VATTypeHandler {
	config := CatalogHandlerConfig[
		*vattype.VATType,
		dto.CreateVATTypeRequest,
		dto.UpdateVATTypeRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "vat_type",

		MapCreateDTO: func(req dto.CreateVATTypeRequest) *vattype.VATType {
			return req.ToEntity()
		},

		MapUpdateDTO: func(req dto.UpdateVATTypeRequest, existing *vattype.VATType) *vattype.VATType {
			req.ApplyTo(existing)
			return existing
		},

		MapToDTO: func(entity *vattype.VATType) any {
			return dto.FromVATType(entity)
		},
	}

	return NewCatalogHandler(base, config)
}
