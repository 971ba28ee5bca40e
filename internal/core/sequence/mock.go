// Package sequence provides domain contracts for gap-tolerant document numbering.
package sequence

import (
	"context"
	"sync"
	"time"

	"clinova/internal/core/id"
)

// MockAllocator is a test implementation of Allocator.
// Use in unit tests to avoid database dependencies.
type MockAllocator struct {
	EnsureSeriesFunc func(ctx context.Context, scopeID id.ID, documentType, code string) (*Series, error)
	AllocateFunc     func(ctx context.Context, series *Series, period time.Time) (Allocation, error)
	ReleaseFunc      func(ctx context.Context, series *Series, alloc Allocation) error
	SetNextFunc      func(ctx context.Context, series *Series, value int64) error

	mu      sync.Mutex
	counter int64
}

// EnsureSeries implements Allocator.
func (m *MockAllocator) EnsureSeries(ctx context.Context, scopeID id.ID, documentType, code string) (*Series, error) {
	if m.EnsureSeriesFunc != nil {
		return m.EnsureSeriesFunc(ctx, scopeID, documentType, code)
	}
	return &Series{
		ID:           id.New(),
		ScopeID:      scopeID,
		DocumentType: documentType,
		Code:         code,
		Padding:      6,
		ResetPolicy:  ResetNever,
	}, nil
}

// Allocate implements Allocator. The default draws from an in-memory counter.
func (m *MockAllocator) Allocate(ctx context.Context, series *Series, period time.Time) (Allocation, error) {
	if m.AllocateFunc != nil {
		return m.AllocateFunc(ctx, series, period)
	}
	m.mu.Lock()
	m.counter++
	n := m.counter
	m.mu.Unlock()
	return Allocation{Number: n, Formatted: series.Format(n)}, nil
}

// Release implements Allocator.
func (m *MockAllocator) Release(ctx context.Context, series *Series, alloc Allocation) error {
	if m.ReleaseFunc != nil {
		return m.ReleaseFunc(ctx, series, alloc)
	}
	m.mu.Lock()
	if m.counter == alloc.Number {
		m.counter--
	}
	m.mu.Unlock()
	return nil
}

// SetNext implements Allocator.
func (m *MockAllocator) SetNext(ctx context.Context, series *Series, value int64) error {
	if m.SetNextFunc != nil {
		return m.SetNextFunc(ctx, series, value)
	}
	m.mu.Lock()
	m.counter = value - 1
	m.mu.Unlock()
	return nil
}

// Ensure compile-time interface compliance.
var _ Allocator = (*MockAllocator)(nil)
