package main

import (
	"clinova/internal/domain/catalogs/category"
	"clinova/internal/domain/catalogs/client"
	"clinova/internal/domain/catalogs/clinic"
	"clinova/internal/domain/catalogs/item"
	"clinova/internal/domain/catalogs/legalentity"
	"clinova/internal/domain/catalogs/paymentmethod"
	"clinova/internal/domain/catalogs/vattype"
	"clinova/internal/domain/documents/cashsession"
	"clinova/internal/domain/documents/expense"
	"clinova/internal/domain/documents/invoice"
	"clinova/internal/domain/documents/payment"
	"clinova/internal/domain/documents/ticket"
	"clinova/internal/metadata"
)

// setupMetadataRegistry initializes and populates the metadata registry.
func setupMetadataRegistry() *metadata.Registry {
	reg := metadata.NewRegistry()

	// Helper to register entity with a display label
	register := func(entity interface{}, name string, typ metadata.EntityType, label string) {
		def := metadata.Inspect(entity, name, typ)
		def.Label = label

		// Here we could also augment fields with labels if we had a translation map.
		// For MVP we rely on Inspect's auto-guessing based on field names.

		reg.Register(def)
	}

	// --- Catalogs ---
	register(legalentity.LegalEntity{}, "LegalEntity", metadata.TypeCatalog, "Legal entities")
	register(clinic.Clinic{}, "Clinic", metadata.TypeCatalog, "Clinics")
	register(category.Category{}, "Category", metadata.TypeCatalog, "Categories")
	register(vattype.VATType{}, "VATType", metadata.TypeCatalog, "VAT types")
	register(paymentmethod.PaymentMethod{}, "PaymentMethod", metadata.TypeCatalog, "Payment methods")
	register(client.Client{}, "Client", metadata.TypeCatalog, "Clients")
	register(item.Item{}, "Item", metadata.TypeCatalog, "Items")

	// --- Documents ---
	register(ticket.Ticket{}, "Ticket", metadata.TypeDocument, "Tickets")
	register(invoice.Invoice{}, "Invoice", metadata.TypeDocument, "Invoices")
	register(payment.Payment{}, "Payment", metadata.TypeDocument, "Payments")
	register(cashsession.CashSession{}, "CashSession", metadata.TypeDocument, "Cash sessions")
	register(expense.Expense{}, "Expense", metadata.TypeDocument, "Expenses")

	return reg
}
