package handlers

import (
	"clinova/internal/domain/catalogs/clinic"
	"clinova/internal/infrastructure/http/v1/dto"
)

// ClinicHandler handles HTTP requests for Clinics.
type ClinicHandler = CatalogHandler[
	*clinic.Clinic,
	dto.CreateClinicRequest,
	dto.UpdateClinicRequest,
]

// NewClinicHandler creates a new ClinicHandler.
func NewClinicHandler(base *BaseHandler, service *clinic.Service) *ClinicHandler {
	config := CatalogHandlerConfig[
		*clinic.Clinic,
		dto.CreateClinicRequest,
		dto.UpdateClinicRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "clinic",

		MapCreateDTO: func(req dto.CreateClinicRequest) *clinic.Clinic {
			return req.ToEntity()
		},

		MapUpdateDTO: func(req dto.UpdateClinicRequest, existing *clinic.Clinic) *clinic.Clinic {
			req.ApplyTo(existing)
			return existing
		},

		MapToDTO: func(entity *clinic.Clinic) any {
			return dto.FromClinic(entity)
		},
	}

	return NewCatalogHandler(base, config)
}
