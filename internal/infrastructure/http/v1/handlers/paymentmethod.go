package handlers

import (
	"clinova/internal/domain/catalogs/paymentmethod"
	"clinova/internal/infrastructure/http/v1/dto"
)

// PaymentMethodHandler handles HTTP requests for PaymentMethods.
type PaymentMethodHandler = CatalogHandler[
	*paymentmethod.PaymentMethod,
	dto.CreatePaymentMethodRequest,
	dto.UpdatePaymentMethodRequest,
]

// NewPaymentMethodHandler creates a new PaymentMethodHandler.
func NewPaymentMethodHandler(base *BaseHandler, service *paymentmethod.Service) *PaymentMethodHandler {
	config := CatalogHandlerConfig[
		*paymentmethod.PaymentMethod,
		dto.CreatePaymentMethodRequest,
		dto.UpdatePaymentMethodRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "payment_method",

		MapCreateDTO: func(req dto.CreatePaymentMethodRequest) *paymentmethod.PaymentMethod {
			return req.ToEntity()
		},

		MapUpdateDTO: func(req dto.UpdatePaymentMethodRequest, existing *paymentmethod.PaymentMethod) *paymentmethod.PaymentMethod {
			req.ApplyTo(existing)
			return existing
		},

		MapToDTO: func(entity *paymentmethod.PaymentMethod) any {
			return dto.FromPaymentMethod(entity)
		},
	}

	return NewCatalogHandler(base, config)
}
