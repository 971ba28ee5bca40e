package handlers

import (
	"clinova/internal/domain/catalogs/client"
	"clinova/internal/infrastructure/http/v1/dto"
)

// ClientHandler handles HTTP requests for Clients.
type ClientHandler = CatalogHandler[
	*client.Client,
	dto.CreateClientRequest,
	dto.UpdateClientRequest,
]

// NewClientHandler creates a new ClientHandler.
func NewClientHandler(base *BaseHandler, service *client.Service) *ClientHandler {
	config := CatalogHandlerConfig[
		*client.Client,
		dto.CreateClientRequest,
		dto.UpdateClientRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "client",

		MapCreateDTO: func(req dto.CreateClientRequest) *client.Client {
			return req.ToEntity()
		},

		MapUpdateDTO: func(req dto.UpdateClientRequest, existing *client.Client) *client.Client {
			req.ApplyTo(existing)
			return existing
		},

		MapToDTO: func(entity *client.Client) any {
			return dto.FromClient(entity)
		},
	}

	return NewCatalogHandler(base, config)
}
