// Package sequence provides domain contracts for gap-tolerant document numbering.
package sequence

import (
	"context"
	"time"

	"clinova/internal/core/id"
)

// Allocation is one number drawn from a series.
type Allocation struct {
	// Number is the raw counter value.
	Number int64
	// Formatted is the outward document number (prefix + zero-padded counter).
	Formatted string
}

// Allocator hands out document numbers.
// This is the domain contract - implementations live in infrastructure layer.
//
// In Database-per-Tenant architecture, implementations obtain database
// connections from context using tenant.GetPool or tenant.GetTxManager.
type Allocator interface {
	// EnsureSeries returns the series for (scopeID, documentType, code),
	// creating it on first use. A freshly created series is seeded from the
	// highest trailing-digit suffix among existing documents of that type,
	// so numbering continues where legacy data left off.
	EnsureSeries(ctx context.Context, scopeID id.ID, documentType, code string) (*Series, error)

	// Allocate atomically increments the series counter and returns the
	// drawn number. The increment and the read happen in a single statement;
	// two concurrent callers can never observe the same value.
	//
	// The period drives reset policies (yearly/monthly counters).
	Allocate(ctx context.Context, series *Series, period time.Time) (Allocation, error)

	// Release compensates a failed allocation by decrementing the counter,
	// but only if no later allocation happened in between. Call it when the
	// operation that consumed the number failed for a reason other than a
	// uniqueness conflict; a conflicting number must stay consumed.
	Release(ctx context.Context, series *Series, alloc Allocation) error

	// SetNext forces the counter so the next allocation returns value.
	// Used by migrations and the legacy seeding path.
	SetNext(ctx context.Context, series *Series, value int64) error
}
