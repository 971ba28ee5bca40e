package handlers

import (
	"clinova/internal/domain/catalogs/legalentity"
	"clinova/internal/infrastructure/http/v1/dto"
)

// LegalEntityHandler handles HTTP requests for LegalEntities.
type LegalEntityHandler = CatalogHandler[
	*legalentity.LegalEntity,
	dto.CreateLegalEntityRequest,
	dto.UpdateLegalEntityRequest,
]

// NewLegalEntityHandler creates a new LegalEntityHandler.
func NewLegalEntityHandler(base *BaseHandler, service *legalentity.Service) *LegalEntityHandler {
	config := CatalogHandlerConfig[
		*legalentity.LegalEntity,
		dto.CreateLegalEntityRequest,
		dto.UpdateLegalEntityRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "legal_entity",

		MapCreateDTO: func(req dto.CreateLegalEntityRequest) *legalentity.LegalEntity {
			return req.ToEntity()
		},

		MapUpdateDTO: func(req dto.UpdateLegalEntityRequest, existing *legalentity.LegalEntity) *legalentity.LegalEntity {
			req.ApplyTo(existing)
			return existing
		},

		MapToDTO: func(entity *legalentity.LegalEntity) any {
			return dto.FromLegalEntity(entity)
		},
	}

	return NewCatalogHandler(base, config)
}
