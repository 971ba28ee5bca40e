// Package main is the entry point for the Clinova background worker.
// Multi-tenant architecture: processes jobs for all tenants.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"clinova/internal/core/tenant"
	"clinova/internal/domain/documents"
	"clinova/internal/domain/documents/cashsession"
	"clinova/internal/domain/documents/expense"
	"clinova/internal/domain/documents/invoice"
	"clinova/internal/domain/documents/payment"
	"clinova/internal/domain/documents/ticket"
	"clinova/internal/domain/posting"
	"clinova/internal/domain/registers/debt"
	"clinova/internal/infrastructure/sequence"
	"clinova/internal/infrastructure/storage/postgres"
	"clinova/internal/infrastructure/storage/postgres/document_repo"
	"clinova/internal/infrastructure/storage/postgres/ledger_repo"
	"clinova/internal/infrastructure/storage/postgres/register_repo"
	"clinova/pkg/logger"
)

func main() {
	// Load .env if present (development convenience)
	_ = godotenv.Load()

	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("starting clinova multi-tenant worker")

	// Connect to meta-database
	metaPool, err := pgxpool.New(ctx, mustEnv("META_DATABASE_URL"))
	if err != nil {
		log.Fatalw("failed to connect to meta database", "error", err)
	}
	defer metaPool.Close()

	// Create tenant registry and manager
	registry := tenant.NewPostgresRegistry(metaPool)

	managerCfg := tenant.DefaultManagerConfig()
	managerCfg.DBUser = mustEnv("TENANT_DB_USER")
	managerCfg.DBPassword = mustEnv("TENANT_DB_PASSWORD")
	managerCfg.PoolIdleTimeout = 10 * time.Minute // Shorter for worker

	manager := tenant.NewManager(managerCfg, registry, log)
	defer manager.Close()

	// Start multi-tenant worker
	worker := NewMultiTenantWorker(manager, log)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Run(ctx)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	wg.Wait()
	log.Info("worker stopped")
}

// MultiTenantWorker processes background jobs for all tenants.
type MultiTenantWorker struct {
	manager *tenant.Manager
	log     *logger.Logger
}

func NewMultiTenantWorker(manager *tenant.Manager, log *logger.Logger) *MultiTenantWorker {
	return &MultiTenantWorker{
		manager: manager,
		log:     log.WithComponent("worker"),
	}
}

// Run starts worker goroutines for all active tenants.
func (w *MultiTenantWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	var wg sync.WaitGroup
	tenantContexts := make(map[string]context.CancelFunc) // tenant_id(UUID) -> cancel
	var mu sync.Mutex

	// Initial start
	w.refreshTenants(ctx, &wg, tenantContexts, &mu)

	for {
		select {
		case <-ctx.Done():
			mu.Lock()
			for _, cancel := range tenantContexts {
				cancel()
			}
			mu.Unlock()
			wg.Wait()
			return

		case <-ticker.C:
			w.refreshTenants(ctx, &wg, tenantContexts, &mu)
		}
	}
}

func (w *MultiTenantWorker) refreshTenants(ctx context.Context, wg *sync.WaitGroup, tenantContexts map[string]context.CancelFunc, mu *sync.Mutex) {
	tenants, err := w.manager.GetActiveTenants(ctx)
	if err != nil {
		w.log.Errorw("failed to get active tenants", "error", err)
		return
	}

	activeTenants := make(map[string]*tenant.Tenant, len(tenants))
	for _, t := range tenants {
		activeTenants[t.ID] = t
	}

	mu.Lock()
	defer mu.Unlock()

	for tenantID, cancel := range tenantContexts {
		if _, active := activeTenants[tenantID]; !active {
			cancel()
			delete(tenantContexts, tenantID)
			w.log.Infow("stopped worker for inactive tenant", "tenant_id", tenantID)
		}
	}

	for _, t := range tenants {
		if _, exists := tenantContexts[t.ID]; !exists {
			tenantCtx, tenantCancel := context.WithCancel(ctx)
			tenantContexts[t.ID] = tenantCancel

			wg.Add(1)
			go func(t *tenant.Tenant) {
				defer wg.Done()
				w.runTenantWorker(tenantCtx, t)
			}(t)

			w.log.Infow("started worker for tenant", "tenant_id", t.ID)
		}
	}
}

func (w *MultiTenantWorker) runTenantWorker(ctx context.Context, t *tenant.Tenant) {
	mp, err := w.manager.GetPool(ctx, t.ID)
	if err != nil {
		w.log.Errorw("failed to get pool for tenant", "tenant_id", t.ID, "error", err)
		return
	}

	txManager := postgres.NewTxManagerFromRawPool(mp.Pool())

	// Document services resolve their querier from context, same as in the
	// API server.
	tenantCtx := tenant.WithTxManager(tenant.WithPool(ctx, mp.Pool()), txManager)

	handler := newTenantEventHandler(w.log, t.ID)
	relay := postgres.NewOutboxRelay(mp.Pool(), 100, handler)

	// Hourly maintenance on a cron schedule
	schedule := cron.New()
	schedule.Schedule(cron.Every(1*time.Hour), cron.FuncJob(func() {
		w.cleanupSessions(tenantCtx, mp.Pool(), t.ID)
		w.cleanupIdempotency(tenantCtx, mp.Pool(), t.ID)
		w.moveFailedToDLQ(tenantCtx, relay, t.ID)
	}))
	schedule.Start()
	defer schedule.Stop()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Infow("stopping worker for tenant", "tenant_id", t.ID)
			return
		case <-ticker.C:
			processed, err := relay.ProcessBatch(tenantCtx)
			if err != nil {
				w.log.Errorw("outbox batch failed", "tenant_id", t.ID, "error", err)
				continue
			}
			if processed > 0 {
				w.log.Debugw("processed outbox batch", "tenant_id", t.ID, "count", processed)
			}
		}
	}
}

func (w *MultiTenantWorker) moveFailedToDLQ(ctx context.Context, relay *postgres.OutboxRelay, tenantID string) {
	moved, err := relay.MoveToDLQ(ctx)
	if err != nil {
		w.log.Errorw("DLQ move failed", "tenant_id", tenantID, "error", err)
		return
	}
	if moved > 0 {
		w.log.Warnw("moved failed outbox messages to DLQ", "tenant_id", tenantID, "count", moved)
	}
}

func (w *MultiTenantWorker) cleanupSessions(ctx context.Context, pool *pgxpool.Pool, tenantID string) {
	result, err := pool.Exec(ctx, `
		DELETE FROM auth_refresh_tokens
		WHERE expires_at < NOW() OR revoked = true
	`)
	if err != nil {
		return
	}

	if result.RowsAffected() > 0 {
		w.log.Infow("cleaned up expired sessions", "tenant_id", tenantID, "count", result.RowsAffected())
	}
}

func (w *MultiTenantWorker) cleanupIdempotency(ctx context.Context, pool *pgxpool.Pool, tenantID string) {
	result, err := pool.Exec(ctx, `
		DELETE FROM sys_idempotency
		WHERE created_at < NOW() - INTERVAL '24 hours'
	`)
	if err != nil {
		return
	}

	if result.RowsAffected() > 0 {
		w.log.Infow("cleaned up idempotency keys", "tenant_id", tenantID, "count", result.RowsAffected())
	}
}

// tenantEventHandler drains one tenant's outbox. Journal generation tasks are
// dispatched to the owning document service; everything else is a notification
// with no configured consumer yet, logged and acknowledged.
type tenantEventHandler struct {
	log      *logger.Logger
	tenantID string

	tickets      *ticket.Service
	invoices     *invoice.Service
	payments     *payment.Service
	cashSessions *cashsession.Service
	expenses     *expense.Service
}

func newTenantEventHandler(log *logger.Logger, tenantID string) *tenantEventHandler {
	sequences := sequence.NewFromContext()

	entryRepo := ledger_repo.NewEntryRepo()
	resolver := posting.NewResolver(ledger_repo.NewMappingRepo(), ledger_repo.NewAccountRepo())
	engine := posting.NewEngine(entryRepo, resolver, sequences, nil)

	debts := debt.NewService(register_repo.NewDebtRepo())
	ticketRepo := document_repo.NewTicketRepo()

	return &tenantEventHandler{
		log:          log.WithComponent("outbox"),
		tenantID:     tenantID,
		tickets:      ticket.NewService(ticketRepo, engine, sequences, debts, nil),
		invoices:     invoice.NewService(document_repo.NewInvoiceRepo(), ticketRepo, engine, sequences, debts, nil),
		payments:     payment.NewService(document_repo.NewPaymentRepo(), engine, sequences, debts, nil),
		cashSessions: cashsession.NewService(document_repo.NewCashSessionRepo(), engine, sequences, nil),
		expenses:     expense.NewService(document_repo.NewExpenseRepo(), engine, sequences, nil),
	}
}

func (h *tenantEventHandler) Handle(ctx context.Context, msg *postgres.OutboxMessage) error {
	if msg.EventType != documents.EventLedgerGenerate {
		h.log.Infow("event delivered",
			"tenant_id", h.tenantID,
			"event_type", msg.EventType,
			"aggregate_type", msg.AggregateType,
			"aggregate_id", msg.AggregateID,
		)
		return nil
	}

	var payload documents.LedgerGeneratePayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal ledger.generate payload: %w", err)
	}

	switch payload.SourceType {
	case "ticket":
		return h.tickets.RegenerateEntry(ctx, payload.SourceID)
	case "invoice":
		return h.invoices.RegenerateEntry(ctx, payload.SourceID)
	case "payment":
		return h.payments.RegenerateEntry(ctx, payload.SourceID)
	case "cash_session":
		return h.cashSessions.RegenerateEntry(ctx, payload.SourceID)
	case "expense":
		return h.expenses.RegenerateEntry(ctx, payload.SourceID)
	default:
		return fmt.Errorf("unknown ledger source type %q", payload.SourceType)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}
