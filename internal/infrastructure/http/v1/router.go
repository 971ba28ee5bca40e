// Package v1 provides HTTP API version 1.
package v1

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"clinova/internal/core/security"
	coreseq "clinova/internal/core/sequence"
	"clinova/internal/core/tenant"
	"clinova/internal/domain/audit"
	"clinova/internal/domain/auth"
	"clinova/internal/domain/catalogs/category"
	"clinova/internal/domain/catalogs/client"
	"clinova/internal/domain/catalogs/clinic"
	"clinova/internal/domain/catalogs/item"
	"clinova/internal/domain/catalogs/legalentity"
	"clinova/internal/domain/catalogs/paymentmethod"
	"clinova/internal/domain/catalogs/vattype"
	"clinova/internal/domain/documents"
	"clinova/internal/domain/documents/cashsession"
	"clinova/internal/domain/documents/expense"
	"clinova/internal/domain/documents/invoice"
	"clinova/internal/domain/documents/payment"
	"clinova/internal/domain/documents/ticket"
	"clinova/internal/domain/ledger"
	"clinova/internal/domain/posting"
	"clinova/internal/domain/registers/debt"
	"clinova/internal/domain/reports"
	"clinova/internal/infrastructure/http/v1/handlers"
	"clinova/internal/infrastructure/http/v1/middleware"
	"clinova/internal/infrastructure/storage/postgres"
	"clinova/internal/infrastructure/storage/postgres/catalog_repo"
	"clinova/internal/infrastructure/storage/postgres/document_repo"
	"clinova/internal/infrastructure/storage/postgres/ledger_repo"
	"clinova/internal/infrastructure/storage/postgres/register_repo"
	"clinova/internal/infrastructure/storage/postgres/report_repo"
	"clinova/internal/metadata"
	"clinova/pkg/logger"
)

// RouterConfig holds router configuration for multi-tenant architecture.
type RouterConfig struct {
	// TenantManager manages database connections for all tenants
	TenantManager *tenant.Manager

	// MetaPool is connection to meta-database (for health checks)
	MetaPool *pgxpool.Pool

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// AuthService for authentication endpoints
	AuthService *auth.Service

	// Sequences allocates document and entry numbers
	Sequences coreseq.Allocator

	// PostingPolicy guards posting against closed periods.
	// Nil means open (no period is closed).
	PostingPolicy security.PostingPolicy

	// IdempotencyEnabled enables idempotency middleware
	IdempotencyEnabled bool

	// MetadataRegistry stores entity definitions
	MetadataRegistry *metadata.Registry
}

// NewRouter creates and configures the Gin router for multi-tenant architecture.
func NewRouter(cfg RouterConfig) *gin.Engine {
	// Set Gin mode based on environment
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth, no tenant required)
	healthHandler := handlers.NewHealthHandlerMultiTenant(cfg.MetaPool, cfg.TenantManager)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
		health.GET("/tenants", healthHandler.TenantsStats) // Admin endpoint for tenant stats
	}

	// API v1
	v1 := router.Group("/api/v1")
	{
		// Auth routes - need TenantDB middleware BEFORE auth
		registerAuthRoutes(v1, cfg)

		// Protected endpoints - TenantDB runs first, then Auth
		protected := v1.Group("")
		protected.Use(middleware.TenantDB(cfg.TenantManager)) // 1. Resolve tenant, get DB pool
		protected.Use(middleware.Auth(cfg.JWTValidator))      // 2. Validate JWT
		protected.Use(middleware.UserContext())               // 3. Add UserID to context for domain layer

		// Apply idempotency middleware for mutating operations
		if cfg.IdempotencyEnabled {
			protected.Use(idempotencyMiddleware(10 * time.Minute))
		}

		// Register entity routes
		registerCatalogRoutes(protected, cfg)
		registerDocumentRoutes(protected, cfg)
		registerLedgerRoutes(protected, cfg)
		registerRegisterRoutes(protected, cfg)
		registerReportRoutes(protected, cfg)
		registerMetaRoutes(protected, cfg)
	}

	return router
}

// idempotencyMiddleware creates idempotency middleware that uses tenant pool + TxManager from context.
func idempotencyMiddleware(ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		pool := tenant.MustGetPool(ctx)
		txm := postgres.MustGetTxManager(ctx)
		store := postgres.NewIdempotencyStoreFromRawPool(pool, txm, ttl)
		middleware.Idempotency(store)(c)
	}
}

// registerAuthRoutes registers authentication endpoints.
func registerAuthRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	if cfg.AuthService == nil {
		return
	}

	baseHandler := handlers.NewBaseHandler()
	authHandler := handlers.NewAuthHandler(baseHandler, cfg.AuthService)

	// Public auth endpoints (no JWT required, but need tenant for DB access)
	publicAuth := rg.Group("/auth")
	publicAuth.Use(middleware.TenantDB(cfg.TenantManager))

	// Protected auth endpoints (JWT required)
	protectedAuth := rg.Group("/auth")
	protectedAuth.Use(middleware.TenantDB(cfg.TenantManager))
	protectedAuth.Use(middleware.Auth(cfg.JWTValidator))

	authHandler.RegisterRoutes(publicAuth, protectedAuth)
}

// registerCatalogRoutes registers catalog endpoints.
func registerCatalogRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	catalogs := rg.Group("/catalog")
	baseHandler := handlers.NewBaseHandler()

	// Note: Repos and services are created once but TxManager is obtained from context per-request

	// --- LEGAL ENTITIES ---
	{
		repo := catalog_repo.NewLegalEntityRepo()
		service := legalentity.NewService(repo)
		handler := handlers.NewLegalEntityHandler(baseHandler, service)
		RegisterCatalogRoutes(catalogs.Group("/legal-entities"), handler, "catalog:legal_entity")
	}

	// --- CLINICS ---
	{
		repo := catalog_repo.NewClinicRepo()
		service := clinic.NewService(repo, cfg.Sequences)
		handler := handlers.NewClinicHandler(baseHandler, service)
		RegisterCatalogRoutes(catalogs.Group("/clinics"), handler, "catalog:clinic")
	}

	// --- CATEGORIES ---
	{
		repo := catalog_repo.NewCategoryRepo()
		service := category.NewService(repo, cfg.Sequences)
		handler := handlers.NewCategoryHandler(baseHandler, service)
		RegisterCatalogRoutes(catalogs.Group("/categories"), handler, "catalog:category")
	}

	// --- VAT TYPES ---
	{
		repo := catalog_repo.NewVATTypeRepo()
		service := vattype.NewService(repo)
		handler := handlers.NewVATTypeHandler(baseHandler, service)
		RegisterCatalogRoutes(catalogs.Group("/vat-types"), handler, "catalog:vat_type")
	}

	// --- PAYMENT METHODS ---
	{
		repo := catalog_repo.NewPaymentMethodRepo()
		service := paymentmethod.NewService(repo)
		handler := handlers.NewPaymentMethodHandler(baseHandler, service)
		RegisterCatalogRoutes(catalogs.Group("/payment-methods"), handler, "catalog:payment_method")
	}

	// --- CLIENTS ---
	{
		repo := catalog_repo.NewClientRepo()
		service := client.NewService(repo, cfg.Sequences)
		handler := handlers.NewClientHandler(baseHandler, service)
		RegisterCatalogRoutes(catalogs.Group("/clients"), handler, "catalog:client")
	}

	// --- ITEMS ---
	{
		repo := catalog_repo.NewItemRepo()
		service := item.NewService(repo, cfg.Sequences)
		handler := handlers.NewItemHandler(baseHandler, service)
		RegisterCatalogRoutes(catalogs.Group("/items"), handler, "catalog:item")
	}
}

// newPostingEngine builds the shared journal entry generator.
func newPostingEngine(cfg RouterConfig) *posting.Engine {
	accountRepo := ledger_repo.NewAccountRepo()
	mappingRepo := ledger_repo.NewMappingRepo()
	entryRepo := ledger_repo.NewEntryRepo()

	resolver := posting.NewResolver(mappingRepo, accountRepo)
	engine := posting.NewEngine(entryRepo, resolver, cfg.Sequences, cfg.PostingPolicy)

	// Audit is best-effort: the engine works without it.
	if auditService, err := postgres.NewAuditService(nil); err == nil {
		engine = engine.WithAudit(auditService)
	}

	return engine
}

// registerDocumentRoutes registers document endpoints.
func registerDocumentRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	docsGroup := rg.Group("/document")
	baseHandler := handlers.NewBaseHandler()

	// Shared dependencies for documents
	engine := newPostingEngine(cfg)
	debtService := debt.NewService(register_repo.NewDebtRepo())
	publisher := postgres.NewDocumentEventPublisher(postgres.NewOutboxPublisher(nil))
	scope := documents.NewScopeResolver(catalog_repo.NewClinicRepo(), catalog_repo.NewLegalEntityRepo())

	ticketRepo := document_repo.NewTicketRepo()

	// --- TICKETS ---
	{
		service := ticket.NewService(ticketRepo, engine, cfg.Sequences, debtService, nil).
			WithPublisher(publisher)

		service.Hooks().OnBeforeCreate(func(ctx context.Context, doc *ticket.Ticket) error {
			audit.EnrichCreatedByDirect(ctx, &doc.CreatedBy, &doc.UpdatedBy)
			legalEntityID, err := scope.ResolveLegalEntity(ctx, doc.LegalEntityID, doc.ClinicID)
			if err != nil {
				return err
			}
			doc.LegalEntityID = legalEntityID
			return nil
		})
		service.Hooks().OnBeforeUpdate(func(ctx context.Context, doc *ticket.Ticket) error {
			audit.EnrichUpdatedByDirect(ctx, &doc.UpdatedBy)
			return nil
		})

		handler := handlers.NewTicketHandler(baseHandler, service)
		group := docsGroup.Group("/tickets")
		RegisterDocumentRoutes(group, handler, "document:ticket")
		group.POST("/:id/close", middleware.RequirePermission("document:ticket:post"), handler.Close)
	}

	// --- INVOICES ---
	{
		repo := document_repo.NewInvoiceRepo()
		service := invoice.NewService(repo, ticketRepo, engine, cfg.Sequences, debtService, nil).
			WithPublisher(publisher)

		service.Hooks().OnBeforeCreate(func(ctx context.Context, doc *invoice.Invoice) error {
			audit.EnrichCreatedByDirect(ctx, &doc.CreatedBy, &doc.UpdatedBy)
			legalEntityID, err := scope.ResolveLegalEntity(ctx, doc.LegalEntityID, doc.ClinicID)
			if err != nil {
				return err
			}
			doc.LegalEntityID = legalEntityID
			return nil
		})
		service.Hooks().OnBeforeUpdate(func(ctx context.Context, doc *invoice.Invoice) error {
			audit.EnrichUpdatedByDirect(ctx, &doc.UpdatedBy)
			return nil
		})

		handler := handlers.NewInvoiceHandler(baseHandler, service)
		group := docsGroup.Group("/invoices")
		RegisterDocumentRoutes(group, handler, "document:invoice")
		group.POST("/from-ticket", middleware.RequirePermission("document:invoice:create"), handler.CreateFromTicket)
		group.POST("/:id/issue", middleware.RequirePermission("document:invoice:post"), handler.Issue)
	}

	// --- PAYMENTS ---
	{
		repo := document_repo.NewPaymentRepo()
		service := payment.NewService(repo, engine, cfg.Sequences, debtService, nil).
			WithPublisher(publisher)

		service.Hooks().OnBeforeCreate(func(ctx context.Context, doc *payment.Payment) error {
			audit.EnrichCreatedByDirect(ctx, &doc.CreatedBy, &doc.UpdatedBy)
			legalEntityID, err := scope.ResolveLegalEntity(ctx, doc.LegalEntityID, doc.ClinicID)
			if err != nil {
				return err
			}
			doc.LegalEntityID = legalEntityID
			return nil
		})
		service.Hooks().OnBeforeUpdate(func(ctx context.Context, doc *payment.Payment) error {
			audit.EnrichUpdatedByDirect(ctx, &doc.UpdatedBy)
			return nil
		})

		handler := handlers.NewPaymentHandler(baseHandler, service)
		group := docsGroup.Group("/payments")
		RegisterDocumentRoutes(group, handler, "document:payment")
		group.POST("/:id/confirm", middleware.RequirePermission("document:payment:post"), handler.Confirm)
	}

	// --- EXPENSES ---
	{
		repo := document_repo.NewExpenseRepo()
		service := expense.NewService(repo, engine, cfg.Sequences, nil).
			WithPublisher(publisher)

		service.Hooks().OnBeforeCreate(func(ctx context.Context, doc *expense.Expense) error {
			audit.EnrichCreatedByDirect(ctx, &doc.CreatedBy, &doc.UpdatedBy)
			legalEntityID, err := scope.ResolveLegalEntity(ctx, doc.LegalEntityID, doc.ClinicID)
			if err != nil {
				return err
			}
			doc.LegalEntityID = legalEntityID
			return nil
		})
		service.Hooks().OnBeforeUpdate(func(ctx context.Context, doc *expense.Expense) error {
			audit.EnrichUpdatedByDirect(ctx, &doc.UpdatedBy)
			return nil
		})

		handler := handlers.NewExpenseHandler(baseHandler, service)
		group := docsGroup.Group("/expenses")
		RegisterDocumentRoutes(group, handler, "document:expense")
		group.POST("/:id/approve", middleware.RequirePermission("document:expense:post"), handler.Approve)
	}

	// --- CASH SESSIONS ---
	// Sessions have an open/close lifecycle instead of draft CRUD.
	{
		repo := document_repo.NewCashSessionRepo()
		service := cashsession.NewService(repo, engine, cfg.Sequences, nil).
			WithPublisher(publisher)

		handler := handlers.NewCashSessionHandler(baseHandler, service)
		group := docsGroup.Group("/cash-sessions")
		group.GET("", middleware.RequirePermission("document:cash_session:read"), handler.List)
		group.GET("/open", middleware.RequirePermission("document:cash_session:read"), handler.GetOpen)
		group.GET("/:id", middleware.RequirePermission("document:cash_session:read"), handler.Get)
		group.POST("/open", middleware.RequirePermission("document:cash_session:create"), handler.Open)
		group.POST("/:id/close", middleware.RequirePermission("document:cash_session:post"), handler.Close)
		group.POST("/:id/regenerate-entry", middleware.RequirePermission("document:cash_session:post"), handler.RegenerateEntry)
	}
}

// registerLedgerRoutes registers chart of accounts, mapping and journal endpoints.
func registerLedgerRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()

	service := ledger.NewService(
		ledger_repo.NewAccountRepo(),
		ledger_repo.NewMappingRepo(),
		ledger_repo.NewEntryRepo(),
	)
	handler := handlers.NewLedgerHandler(baseHandler, service)

	ledgerGroup := rg.Group("/ledger")

	accounts := ledgerGroup.Group("/accounts")
	accounts.GET("", middleware.RequirePermission("ledger:account:read"), handler.GetChart)
	accounts.POST("", middleware.RequirePermission("ledger:account:create"), handler.CreateAccount)
	accounts.GET("/:id", middleware.RequirePermission("ledger:account:read"), handler.GetAccount)
	accounts.PUT("/:id", middleware.RequirePermission("ledger:account:update"), handler.UpdateAccount)

	mappings := ledgerGroup.Group("/mappings")
	mappings.GET("", middleware.RequirePermission("ledger:mapping:read"), handler.ListMappings)
	mappings.POST("", middleware.RequirePermission("ledger:mapping:create"), handler.CreateMapping)
	mappings.PUT("/:id", middleware.RequirePermission("ledger:mapping:update"), handler.UpdateMapping)
	mappings.POST("/:id/deactivate", middleware.RequirePermission("ledger:mapping:update"), handler.DeactivateMapping)

	entries := ledgerGroup.Group("/entries")
	entries.GET("/by-source", middleware.RequirePermission("ledger:entry:read"), handler.GetEntryBySource)
	entries.GET("/:id", middleware.RequirePermission("ledger:entry:read"), handler.GetEntry)
}

// registerRegisterRoutes registers accumulation register endpoints.
func registerRegisterRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	registers := rg.Group("/registers")
	baseHandler := handlers.NewBaseHandler()

	// Debt register
	{
		service := debt.NewService(register_repo.NewDebtRepo())
		handler := handlers.NewDebtHandler(baseHandler, service)

		debtGroup := registers.Group("/debt")
		debtGroup.GET("/clients/:id", middleware.RequirePermission("register:debt:read"), handler.GetClientDebt)
		debtGroup.GET("/clients/:id/movements", middleware.RequirePermission("register:debt:read"), handler.GetMovementHistory)
		debtGroup.GET("/clinics/:id/debtors", middleware.RequirePermission("register:debt:read"), handler.GetClinicDebtors)
		debtGroup.GET("/turnover", middleware.RequirePermission("register:debt:read"), handler.GetTurnover)
	}
}

// registerMetaRoutes registers metadata/schema endpoints.
func registerMetaRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	if cfg.MetadataRegistry == nil {
		return
	}

	handler := handlers.NewMetadataHandler(cfg.MetadataRegistry)
	meta := rg.Group("/meta")
	{
		meta.GET("", handler.ListEntities)
		meta.GET("/:name", handler.GetEntity)
	}
}

// registerReportRoutes registers report endpoints.
func registerReportRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	reportsGroup := rg.Group("/reports")
	baseHandler := handlers.NewBaseHandler()

	reportRepo := report_repo.NewReportRepo(ledger_repo.NewEntryRepo())
	reportService := reports.NewService(reportRepo)
	reportHandler := handlers.NewReportsHandler(baseHandler, reportService)

	reportsGroup.GET("/trial-balance", middleware.RequirePermission("report:ledger:read"), reportHandler.GetTrialBalance)
	reportsGroup.GET("/journal", middleware.RequirePermission("report:ledger:read"), reportHandler.GetJournal)
	reportsGroup.GET("/debtors", middleware.RequirePermission("report:debt:read"), reportHandler.GetDebtors)
	reportsGroup.GET("/sales-summary", middleware.RequirePermission("report:sales:read"), reportHandler.GetSalesSummary)
}
