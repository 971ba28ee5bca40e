// Package sequence provides the PostgreSQL implementation of document numbering.
// This is the infrastructure layer - it implements core/sequence.Allocator.
package sequence

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"clinova/internal/core/id"
	coreseq "clinova/internal/core/sequence"
	"clinova/internal/core/tenant"
	"clinova/internal/infrastructure/storage/postgres"
	"clinova/pkg/logger"
)

// Querier interface for database operations.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// SeriesDefaults describe how a series looks when created lazily.
type SeriesDefaults struct {
	Prefix      string
	Padding     int
	ResetPolicy coreseq.ResetPolicy
}

// Service allocates document numbers using PostgreSQL.
// In Database-per-Tenant mode, the querier is obtained from context; inside a
// transaction the allocation joins it, so entry numbers commit or roll back
// with the rows they number.
type Service struct {
	// staticQuerier is used for single-tenant mode and tests
	staticQuerier Querier
	// useContext indicates whether to get querier from context
	useContext bool

	mu sync.RWMutex
	// defaults per document type for lazily created series
	defaults map[string]SeriesDefaults
	// seeders return legacy document numbers for a scope ($1 = scope_id);
	// the highest trailing-digit suffix seeds a fresh series
	seeders map[string]string
}

// Ensure compile-time interface compliance.
var _ coreseq.Allocator = (*Service)(nil)

// New creates an allocator with a static querier. Use for tests.
func New(querier Querier) *Service {
	return &Service{
		staticQuerier: querier,
		defaults:      make(map[string]SeriesDefaults),
		seeders:       make(map[string]string),
	}
}

// NewFromContext creates an allocator that gets its querier from context.
// Use for Database-per-Tenant architecture.
func NewFromContext() *Service {
	return &Service{
		useContext: true,
		defaults:   make(map[string]SeriesDefaults),
		seeders:    make(map[string]string),
	}
}

// RegisterDefaults sets prefix/padding/reset for lazily created series of a
// document type.
func (s *Service) RegisterDefaults(documentType string, d SeriesDefaults) {
	s.mu.Lock()
	s.defaults[documentType] = d
	s.mu.Unlock()
}

// RegisterSeeder sets the legacy-number query for a document type.
// The query must return one text column of existing document numbers and
// accept the series scope ID as $1.
func (s *Service) RegisterSeeder(documentType, query string) {
	s.mu.Lock()
	s.seeders[documentType] = query
	s.mu.Unlock()
}

// getQuerier returns the appropriate querier. Inside a transaction context the
// transaction is used, so allocations participate in the caller's atomicity.
func (s *Service) getQuerier(ctx context.Context) Querier {
	if s.useContext {
		if txm, err := tenant.GetTxManager(ctx); err == nil {
			if pgTxm, ok := txm.(*postgres.TxManager); ok {
				return pgTxm.GetQuerier(ctx)
			}
		}
		return tenant.MustGetPool(ctx)
	}
	return s.staticQuerier
}

const seriesColumns = `id, scope_id, document_type, code, prefix, padding, next_number, reset_policy, last_reset_at, created_at, updated_at`

// EnsureSeries returns the series for (scopeID, documentType, code),
// creating and seeding it on first use.
func (s *Service) EnsureSeries(ctx context.Context, scopeID id.ID, documentType, code string) (*coreseq.Series, error) {
	querier := s.getQuerier(ctx)

	series, err := s.fetchSeries(ctx, querier, scopeID, documentType, code)
	if err == nil {
		return series, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("fetch series: %w", err)
	}

	s.mu.RLock()
	def, hasDefaults := s.defaults[documentType]
	seederSQL := s.seeders[documentType]
	s.mu.RUnlock()
	if !hasDefaults {
		def = SeriesDefaults{Padding: 6, ResetPolicy: coreseq.ResetNever}
	}
	if def.Padding <= 0 {
		def.Padding = 6
	}
	if !def.ResetPolicy.Valid() {
		def.ResetPolicy = coreseq.ResetNever
	}

	seed := int64(0)
	if seederSQL != "" {
		seed, err = s.scanLegacyMax(ctx, querier, seederSQL, scopeID)
		if err != nil {
			return nil, fmt.Errorf("seed series from legacy numbers: %w", err)
		}
		if seed > 0 {
			logger.Info(ctx, "seeding new series from legacy numbers",
				"document_type", documentType, "code", code, "seed", seed)
		}
	}

	now := time.Now().UTC()
	row := querier.QueryRow(ctx, `
        INSERT INTO doc_series (id, scope_id, document_type, code, prefix, padding, next_number, reset_policy, last_reset_at, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
        ON CONFLICT (scope_id, document_type, code) DO NOTHING
        RETURNING `+seriesColumns,
		id.New(), scopeID, documentType, code, def.Prefix, def.Padding, seed+1, def.ResetPolicy, now, now)

	series, err = scanSeries(row)
	if err == nil {
		return series, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("create series: %w", err)
	}

	// Concurrent creator won the insert. Read its row.
	series, err = s.fetchSeries(ctx, querier, scopeID, documentType, code)
	if err != nil {
		return nil, fmt.Errorf("fetch series after conflict: %w", err)
	}
	return series, nil
}

func (s *Service) fetchSeries(ctx context.Context, querier Querier, scopeID id.ID, documentType, code string) (*coreseq.Series, error) {
	row := querier.QueryRow(ctx, `
        SELECT `+seriesColumns+`
        FROM doc_series
        WHERE scope_id = $1 AND document_type = $2 AND code = $3
	`, scopeID, documentType, code)
	return scanSeries(row)
}

func scanSeries(row pgx.Row) (*coreseq.Series, error) {
	var sr coreseq.Series
	err := row.Scan(
		&sr.ID, &sr.ScopeID, &sr.DocumentType, &sr.Code,
		&sr.Prefix, &sr.Padding, &sr.NextNumber, &sr.ResetPolicy,
		&sr.LastResetAt, &sr.CreatedAt, &sr.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &sr, nil
}

// scanLegacyMax runs the seeder query and returns the highest trailing-digit
// suffix among returned numbers, 0 when there are none.
func (s *Service) scanLegacyMax(ctx context.Context, querier Querier, seederSQL string, scopeID id.ID) (int64, error) {
	rows, err := querier.Query(ctx, seederSQL, scopeID)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var max int64
	for rows.Next() {
		var number string
		if err := rows.Scan(&number); err != nil {
			return 0, err
		}
		if n := coreseq.ParseTrailing(number); n > max {
			max = n
		}
	}
	return max, rows.Err()
}

// Allocate atomically draws the next number via UPSERT + RETURNING.
// A single statement does the increment, the reset check and the read, so two
// concurrent callers can never observe the same value.
func (s *Service) Allocate(ctx context.Context, series *coreseq.Series, period time.Time) (coreseq.Allocation, error) {
	if s == nil {
		return coreseq.Allocation{}, fmt.Errorf("sequence allocator is not initialized")
	}
	querier := s.getQuerier(ctx)

	var num int64
	err := querier.QueryRow(ctx, `
        INSERT INTO doc_series AS s (id, scope_id, document_type, code, prefix, padding, next_number, reset_policy, last_reset_at, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, 2, $7, $8, $8, $8)
        ON CONFLICT (scope_id, document_type, code) DO UPDATE SET
            next_number = CASE
                WHEN (s.reset_policy = 'yearly'  AND date_trunc('year',  $8::timestamptz) > date_trunc('year',  s.last_reset_at))
                  OR (s.reset_policy = 'monthly' AND date_trunc('month', $8::timestamptz) > date_trunc('month', s.last_reset_at))
                THEN 2
                ELSE s.next_number + 1
            END,
            last_reset_at = CASE
                WHEN (s.reset_policy = 'yearly'  AND date_trunc('year',  $8::timestamptz) > date_trunc('year',  s.last_reset_at))
                  OR (s.reset_policy = 'monthly' AND date_trunc('month', $8::timestamptz) > date_trunc('month', s.last_reset_at))
                THEN $8
                ELSE s.last_reset_at
            END,
            updated_at = $8
        RETURNING next_number - 1
	`, id.New(), series.ScopeID, series.DocumentType, series.Code,
		series.Prefix, series.Padding, series.ResetPolicy, period.UTC()).Scan(&num)
	if err != nil {
		return coreseq.Allocation{}, fmt.Errorf("allocate number: %w", err)
	}

	return coreseq.Allocation{Number: num, Formatted: series.Format(num)}, nil
}

// Release decrements the counter, but only while the released allocation is
// still the latest. A concurrent allocation in between leaves a gap instead,
// which the series tolerates.
func (s *Service) Release(ctx context.Context, series *coreseq.Series, alloc coreseq.Allocation) error {
	querier := s.getQuerier(ctx)

	tag, err := querier.Exec(ctx, `
        UPDATE doc_series
        SET next_number = next_number - 1, updated_at = $5
        WHERE scope_id = $1 AND document_type = $2 AND code = $3
          AND next_number = $4 + 1
	`, series.ScopeID, series.DocumentType, series.Code, alloc.Number, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("release number: %w", err)
	}
	if tag.RowsAffected() == 0 {
		logger.Debug(ctx, "release skipped, counter moved on",
			"series", series.Code, "number", alloc.Number)
	}
	return nil
}

// SetNext forces the counter so the next allocation returns value.
func (s *Service) SetNext(ctx context.Context, series *coreseq.Series, value int64) error {
	querier := s.getQuerier(ctx)

	_, err := querier.Exec(ctx, `
        INSERT INTO doc_series (id, scope_id, document_type, code, prefix, padding, next_number, reset_policy, last_reset_at, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9, $9)
        ON CONFLICT (scope_id, document_type, code) DO UPDATE SET next_number = $7, updated_at = $9
	`, id.New(), series.ScopeID, series.DocumentType, series.Code,
		series.Prefix, series.Padding, value, series.ResetPolicy, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set next number: %w", err)
	}
	return nil
}
