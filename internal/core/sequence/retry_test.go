package sequence

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"clinova/internal/core/apperror"
)

func testSeries() *Series {
	return &Series{Code: "default", DocumentType: "ticket", Padding: 6, ResetPolicy: ResetNever}
}

func TestWithRetry_SucceedsFirstAttempt(t *testing.T) {
	alloc := &MockAllocator{}
	ctx := context.Background()

	var got Allocation
	a, err := WithRetry(ctx, alloc, testSeries(), time.Now(), 50, func(ctx context.Context, a Allocation) error {
		got = a
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Number != 1 || a.Formatted != "000001" {
		t.Errorf("expected 000001, got %+v", a)
	}
	if got != a {
		t.Errorf("fn saw %+v, caller got %+v", got, a)
	}
}

func TestWithRetry_DuplicateBurnsNumberAndRetries(t *testing.T) {
	alloc := &MockAllocator{}
	ctx := context.Background()

	// Numbers 1 and 2 are taken by legacy rows; 3 is free.
	attempts := 0
	a, err := WithRetry(ctx, alloc, testSeries(), time.Now(), 50, func(ctx context.Context, a Allocation) error {
		attempts++
		if a.Number <= 2 {
			return apperror.NewDuplicate("ticket", "number", a.Formatted)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Number != 3 {
		t.Errorf("expected third number, got %d", a.Number)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}

	// Burned numbers stay consumed: the next allocation continues past them.
	next, _ := alloc.Allocate(ctx, testSeries(), time.Now())
	if next.Number != 4 {
		t.Errorf("expected counter at 4 after burns, got %d", next.Number)
	}
}

func TestWithRetry_OtherErrorReleasesAndPropagates(t *testing.T) {
	alloc := &MockAllocator{}
	ctx := context.Background()

	wantErr := apperror.NewValidation("ticket has no lines")
	_, err := WithRetry(ctx, alloc, testSeries(), time.Now(), 50, func(ctx context.Context, a Allocation) error {
		return wantErr
	})
	if err == nil {
		t.Fatal("expected error")
	}
	appErr, ok := apperror.AsAppError(err)
	if !ok || appErr.Code != apperror.CodeValidation {
		t.Errorf("expected validation error to propagate unchanged, got %v", err)
	}

	// The compensating decrement returns the number to the pool.
	next, _ := alloc.Allocate(ctx, testSeries(), time.Now())
	if next.Number != 1 {
		t.Errorf("expected released number to be reissued, got %d", next.Number)
	}
}

func TestWithRetry_Exhaustion(t *testing.T) {
	alloc := &MockAllocator{}
	ctx := context.Background()

	attempts := 0
	_, err := WithRetry(ctx, alloc, testSeries(), time.Now(), 50, func(ctx context.Context, a Allocation) error {
		attempts++
		return apperror.NewDuplicate("ticket", "number", a.Formatted)
	})
	if err == nil {
		t.Fatal("expected exhaustion error")
	}
	appErr, ok := apperror.AsAppError(err)
	if !ok || appErr.Code != apperror.CodeAllocationExhausted {
		t.Errorf("expected ALLOCATION_EXHAUSTED, got %v", err)
	}
	if attempts != 50 {
		t.Errorf("expected exactly 50 attempts, got %d", attempts)
	}
}

func TestWithRetry_ConcurrentAllocationsAreUnique(t *testing.T) {
	alloc := &MockAllocator{}
	ctx := context.Background()
	series := testSeries()

	const workers = 5
	var wg sync.WaitGroup
	results := make([]string, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, err := WithRetry(ctx, alloc, series, time.Now(), 50, func(ctx context.Context, a Allocation) error {
				return nil
			})
			if err != nil {
				t.Errorf("worker %d: %v", i, err)
				return
			}
			results[i] = a.Formatted
		}(i)
	}
	wg.Wait()

	sort.Strings(results)
	want := []string{"000001", "000002", "000003", "000004", "000005"}
	for i, w := range want {
		if results[i] != w {
			t.Fatalf("expected %v, got %v", want, results)
		}
	}
}
