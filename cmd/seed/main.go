// Package main provides a CLI tool for seeding the database with initial data.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"clinova/internal/core/id"
	"clinova/internal/core/tenant"
	"clinova/internal/infrastructure/storage/postgres"
	"clinova/pkg/logger"
)

func main() {
	// Load .env if present (development convenience)
	_ = godotenv.Load()

	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Connect to database
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	poolCfg := postgres.DefaultPoolConfig(dbURL)
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	// Seed admin user
	if _, err := seedAdminUser(ctx, pool, log); err != nil {
		log.Fatalw("failed to seed admin user", "error", err)
	}

	// Seed demo data if requested
	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedTenantRegistry(ctx, dbURL, log); err != nil {
			log.Warnw("failed to seed tenant registry", "error", err)
		}
		if err := seedDemoData(ctx, pool, log); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

func seedAdminUser(ctx context.Context, pool *postgres.Pool, log *logger.Logger) (id.ID, error) {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@clinova.io"
	}

	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "Admin123!"
	}

	// Check if admin already exists
	var existingID id.ID
	err := pool.Pool.QueryRow(ctx,
		`SELECT id FROM users WHERE email = $1 AND NOT deletion_mark`,
		adminEmail,
	).Scan(&existingID)
	if err == nil {
		log.Infow("admin user already exists", "email", adminEmail, "user_id", existingID)
		return existingID, nil
	}
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return id.Nil(), fmt.Errorf("check admin exists: %w", err)
	}

	// Hash password
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return id.Nil(), fmt.Errorf("hash password: %w", err)
	}

	userID := id.New()
	now := time.Now()

	// Create admin user
	_, err = pool.Pool.Exec(ctx, `
		INSERT INTO users (
			id, email, password_hash, first_name, last_name,
			is_active, is_admin, email_verified, email_verified_at, version
		)
		VALUES ($1, $2, $3, 'System', 'Admin', true, true, true, $4, 1)
	`, userID, adminEmail, string(passwordHash), now)
	if err != nil {
		return id.Nil(), fmt.Errorf("insert admin user: %w", err)
	}

	// Assign admin role
	var adminRoleID id.ID
	err = pool.Pool.QueryRow(ctx,
		`SELECT id FROM roles WHERE code = 'admin'`,
	).Scan(&adminRoleID)
	if err != nil {
		log.Warnw("admin role not found, skipping role assignment", "error", err)
	} else {
		_, err = pool.Pool.Exec(ctx, `
			INSERT INTO user_roles (user_id, role_id, granted_by)
			VALUES ($1, $2, NULL)
			ON CONFLICT (user_id, role_id) DO NOTHING
		`, userID, adminRoleID)
		if err != nil {
			log.Warnw("failed to assign admin role", "error", err)
		}
	}

	log.Infow("admin user created",
		"email", adminEmail,
		"user_id", userID,
	)

	return userID, nil
}

// upsertCatalogRow inserts a catalog row and returns its ID, reusing the
// existing row when the code is already taken.
func upsertCatalogRow(ctx context.Context, pool *postgres.Pool, table, code, insertSQL string, args ...any) (id.ID, error) {
	rowID := id.New()
	allArgs := append([]any{rowID, code}, args...)

	tag, err := pool.Pool.Exec(ctx, insertSQL, allArgs...)
	if err != nil {
		return id.Nil(), err
	}
	if tag.RowsAffected() > 0 {
		return rowID, nil
	}

	err = pool.Pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT id FROM %s WHERE code = $1 AND deletion_mark = FALSE`, table),
		code,
	).Scan(&rowID)
	if err != nil {
		return id.Nil(), fmt.Errorf("fetch existing %s %s: %w", table, code, err)
	}
	return rowID, nil
}

func seedDemoData(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	log.Info("seeding demo data...")

	// 1. Legal entity
	legalEntityID, err := upsertCatalogRow(ctx, pool, "cat_legal_entities", "LE-001", `
		INSERT INTO cat_legal_entities (id, code, name, full_name, tax_id, fiscal_address, is_default, version, deletion_mark, attributes)
		VALUES ($1, $2, $3, $4, $5, $6, true, 1, false, '{}')
		ON CONFLICT (code) WHERE deletion_mark = FALSE DO NOTHING
	`, "Clinica Vetia", "Clinica Veterinaria Vetia S.L.", "B86543210", "Calle de Alcala 120, Madrid")
	if err != nil {
		return fmt.Errorf("seed legal entity: %w", err)
	}

	// 2. Clinic
	clinicID, err := upsertCatalogRow(ctx, pool, "cat_clinics", "CL-001", `
		INSERT INTO cat_clinics (id, code, name, legal_entity_id, address, phone, timezone, is_active, is_default, version, deletion_mark, attributes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, true, true, 1, false, '{}')
		ON CONFLICT (code) WHERE deletion_mark = FALSE DO NOTHING
	`, "Vetia Centro", legalEntityID, "Calle de Alcala 120, Madrid", "+34 910 000 001", "Europe/Madrid")
	if err != nil {
		return fmt.Errorf("seed clinic: %w", err)
	}

	// 3. VAT types
	vatTypes := []struct {
		code      string
		name      string
		rate      string
		isDefault bool
		isExempt  bool
	}{
		{"VAT-21", "IVA General 21%", "21", true, false},
		{"VAT-10", "IVA Reducido 10%", "10", false, false},
		{"VAT-0", "Exento", "0", false, true},
	}
	vatIDs := make(map[string]id.ID)
	for _, v := range vatTypes {
		vid, err := upsertCatalogRow(ctx, pool, "cat_vat_types", v.code, `
			INSERT INTO cat_vat_types (id, code, name, rate, is_default, is_exempt, version, deletion_mark, attributes)
			VALUES ($1, $2, $3, $4, $5, $6, 1, false, '{}')
			ON CONFLICT (code) WHERE deletion_mark = FALSE DO NOTHING
		`, v.name, v.rate, v.isDefault, v.isExempt)
		if err != nil {
			log.Warnw("failed to seed vat type", "code", v.code, "error", err)
			continue
		}
		vatIDs[v.code] = vid
	}

	// 4. Payment methods
	methods := []struct {
		code string
		name string
		kind string
	}{
		{"PM-CASH", "Efectivo", "cash"},
		{"PM-CARD", "Tarjeta", "card"},
		{"PM-TRANSFER", "Transferencia", "transfer"},
	}
	methodIDs := make(map[string]id.ID)
	for _, m := range methods {
		mid, err := upsertCatalogRow(ctx, pool, "cat_payment_methods", m.code, `
			INSERT INTO cat_payment_methods (id, code, name, kind, is_active, version, deletion_mark, attributes)
			VALUES ($1, $2, $3, $4, true, 1, false, '{}')
			ON CONFLICT (code) WHERE deletion_mark = FALSE DO NOTHING
		`, m.name, m.kind)
		if err != nil {
			log.Warnw("failed to seed payment method", "code", m.code, "error", err)
			continue
		}
		methodIDs[m.code] = mid
	}

	// 5. Categories (revenue and expense)
	categories := []struct {
		code string
		name string
		kind string
	}{
		{"CAT-CONS", "Consultas", "revenue"},
		{"CAT-CIR", "Cirugia", "revenue"},
		{"CAT-PROD", "Productos", "revenue"},
		{"CAT-ALQ", "Alquiler", "expense"},
		{"CAT-SUM", "Suministros", "expense"},
	}
	categoryIDs := make(map[string]id.ID)
	for _, c := range categories {
		cid, err := upsertCatalogRow(ctx, pool, "cat_categories", c.code, `
			INSERT INTO cat_categories (id, code, name, kind, version, deletion_mark, attributes)
			VALUES ($1, $2, $3, $4, 1, false, '{}')
			ON CONFLICT (code) WHERE deletion_mark = FALSE DO NOTHING
		`, c.name, c.kind)
		if err != nil {
			log.Warnw("failed to seed category", "code", c.code, "error", err)
			continue
		}
		categoryIDs[c.code] = cid
	}

	// 6. Items
	items := []struct {
		code     string
		name     string
		kind     string
		category string
		vat      string
		price    string
	}{
		{"SRV-001", "Consulta general", "service", "CAT-CONS", "VAT-21", "35.00"},
		{"SRV-002", "Vacunacion", "service", "CAT-CONS", "VAT-21", "25.00"},
		{"SRV-003", "Castracion", "service", "CAT-CIR", "VAT-21", "180.00"},
		{"PRD-001", "Pienso premium 12kg", "product", "CAT-PROD", "VAT-10", "48.50"},
		{"PRD-002", "Antiparasitario", "product", "CAT-PROD", "VAT-10", "22.90"},
	}
	for _, it := range items {
		_, err := upsertCatalogRow(ctx, pool, "cat_items", it.code, `
			INSERT INTO cat_items (id, code, name, kind, category_id, vat_type_id, price, is_active, version, deletion_mark, attributes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, true, 1, false, '{}')
			ON CONFLICT (code) WHERE deletion_mark = FALSE DO NOTHING
		`, it.name, it.kind, categoryIDs[it.category], vatIDs[it.vat], it.price)
		if err != nil {
			log.Warnw("failed to seed item", "code", it.code, "error", err)
		}
	}

	// 7. Clients
	clients := []struct {
		code string
		name string
	}{
		{"CLI-001", "Maria Garcia Lopez"},
		{"CLI-002", "Juan Martinez Ruiz"},
	}
	for _, c := range clients {
		_, err := upsertCatalogRow(ctx, pool, "cat_clients", c.code, `
			INSERT INTO cat_clients (id, code, name, version, deletion_mark, attributes)
			VALUES ($1, $2, $3, 1, false, '{}')
			ON CONFLICT (code) WHERE deletion_mark = FALSE DO NOTHING
		`, c.name)
		if err != nil {
			log.Warnw("failed to seed client", "code", c.code, "error", err)
		}
	}

	// 8. Chart of accounts (Plan General Contable)
	accounts := []struct {
		code  string
		name  string
		aType string
	}{
		{"430", "Clientes", "asset"},
		{"477", "HP, IVA repercutido", "liability"},
		{"570", "Caja", "asset"},
		{"572", "Bancos c/c", "asset"},
		{"621", "Arrendamientos", "expense"},
		{"628", "Suministros", "expense"},
		{"659", "Otras perdidas en gestion corriente", "expense"},
		{"705", "Prestaciones de servicios", "revenue"},
		{"708", "Devoluciones y descuentos", "revenue"},
	}
	accountIDs := make(map[string]id.ID)
	for _, a := range accounts {
		aid := id.New()
		tag, err := pool.Pool.Exec(ctx, `
			INSERT INTO ledger_accounts (id, code, name, legal_entity_id, type, allows_direct_entry, is_active, version, deletion_mark, attributes)
			VALUES ($1, $2, $3, $4, $5, true, true, 1, false, '{}')
			ON CONFLICT (legal_entity_id, code) WHERE deletion_mark = FALSE DO NOTHING
		`, aid, a.code, a.name, legalEntityID, a.aType)
		if err != nil {
			log.Warnw("failed to seed account", "code", a.code, "error", err)
			continue
		}
		if tag.RowsAffected() == 0 {
			err = pool.Pool.QueryRow(ctx, `
				SELECT id FROM ledger_accounts
				WHERE legal_entity_id = $1 AND code = $2 AND deletion_mark = FALSE
			`, legalEntityID, a.code).Scan(&aid)
			if err != nil {
				log.Warnw("failed to fetch existing account", "code", a.code, "error", err)
				continue
			}
		}
		accountIDs[a.code] = aid
	}

	// 9. Concept mappings. Reference keys for categories, VAT types and
	// payment methods are the catalog row IDs.
	mappings := []struct {
		concept      string
		referenceKey string
		account      string
	}{
		{"cash", "", "570"},
		{"cash_over_short", "", "659"},
		{"receivable", "", "430"},
		{"discount", "manual", "708"},
		{"payment_method", methodIDs["PM-CASH"].String(), "570"},
		{"payment_method", methodIDs["PM-CARD"].String(), "572"},
		{"payment_method", methodIDs["PM-TRANSFER"].String(), "572"},
		{"vat_output", vatIDs["VAT-21"].String(), "477"},
		{"vat_output", vatIDs["VAT-10"].String(), "477"},
		{"vat_output", vatIDs["VAT-0"].String(), "477"},
		{"category", categoryIDs["CAT-CONS"].String(), "705"},
		{"category", categoryIDs["CAT-CIR"].String(), "705"},
		{"category", categoryIDs["CAT-PROD"].String(), "705"},
		{"expense_category", categoryIDs["CAT-ALQ"].String(), "621"},
		{"expense_category", categoryIDs["CAT-SUM"].String(), "628"},
	}
	for _, m := range mappings {
		accountID, ok := accountIDs[m.account]
		if !ok {
			continue
		}
		_, err := pool.Pool.Exec(ctx, `
			INSERT INTO ledger_mappings (id, legal_entity_id, concept, reference_key, clinic_id, account_id, active, version, deletion_mark, attributes, created_at, updated_at)
			VALUES ($1, $2, $3, $4, NULL, $5, true, 1, false, '{}', NOW(), NOW())
			ON CONFLICT (legal_entity_id, concept, reference_key) WHERE clinic_id IS NULL AND deletion_mark = FALSE DO NOTHING
		`, id.New(), legalEntityID, m.concept, m.referenceKey, accountID)
		if err != nil {
			log.Warnw("failed to seed mapping", "concept", m.concept, "reference_key", m.referenceKey, "error", err)
		}
	}

	log.Infow("demo data seeded successfully", "legal_entity_id", legalEntityID, "clinic_id", clinicID)
	return nil
}

func seedTenantRegistry(ctx context.Context, dbURL string, log *logger.Logger) error {
	metaDSN := os.Getenv("META_DATABASE_URL")
	if metaDSN == "" {
		log.Warn("META_DATABASE_URL is not set; skipping tenant registry seed")
		return nil
	}

	metaPool, err := pgxpool.New(ctx, metaDSN)
	if err != nil {
		return fmt.Errorf("connect meta database: %w", err)
	}
	defer metaPool.Close()

	if err := metaPool.Ping(ctx); err != nil {
		return fmt.Errorf("ping meta database: %w", err)
	}

	tenantSlug := os.Getenv("TENANT_SLUG")
	if tenantSlug == "" {
		tenantSlug = "demo"
	}

	tenantName := os.Getenv("TENANT_NAME")
	if tenantName == "" {
		tenantName = "Demo Tenant"
	}

	tenantPlan := os.Getenv("TENANT_PLAN")
	if tenantPlan == "" {
		tenantPlan = string(tenant.PlanStandard)
	}

	dbConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return fmt.Errorf("parse tenant database url: %w", err)
	}

	dbHost := dbConfig.ConnConfig.Host
	if dbHost == "" {
		dbHost = "localhost"
	}

	dbPort := int(dbConfig.ConnConfig.Port)
	if dbPort == 0 {
		dbPort = 5432
	}

	dbName := dbConfig.ConnConfig.Database
	if dbName == "" {
		dbName = "clinova"
	}

	var existingID string
	err = metaPool.QueryRow(ctx, `SELECT id FROM tenants WHERE slug = $1`, tenantSlug).Scan(&existingID)
	if err == nil {
		log.Infow("tenant already exists in registry", "slug", tenantSlug, "tenant_id", existingID)
		return nil
	}
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("check tenant exists: %w", err)
	}

	registry := tenant.NewPostgresRegistry(metaPool)
	newTenant := &tenant.Tenant{
		Slug:        tenantSlug,
		DisplayName: tenantName,
		DBName:      dbName,
		DBHost:      dbHost,
		DBPort:      dbPort,
		Status:      tenant.StatusActive,
		Plan:        tenant.Plan(tenantPlan),
		Settings:    map[string]any{},
	}

	if err := registry.Create(ctx, newTenant); err != nil {
		return fmt.Errorf("create tenant: %w", err)
	}

	log.Infow("tenant seeded in registry", "slug", tenantSlug, "tenant_id", newTenant.ID)
	return nil
}
