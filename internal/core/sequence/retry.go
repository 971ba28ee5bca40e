package sequence

import (
	"context"
	"time"

	"clinova/internal/core/apperror"
)

// DefaultMaxAttempts bounds the retry loop in WithRetry.
const DefaultMaxAttempts = 50

// WithRetry allocates a number and runs fn with it, retrying on uniqueness
// conflicts with a fresh number each time.
//
// Error handling is asymmetric on purpose:
//   - fn fails with DUPLICATE_ENTRY: the number is burned (someone else holds
//     it, e.g. legacy data) and the loop allocates the next one. Burned
//     numbers become gaps, which the series tolerates.
//   - fn fails with anything else: the allocation is released so the counter
//     does not drift, and the error propagates unchanged.
//   - attempts exhausted: ALLOCATION_EXHAUSTED, nothing persisted by fn.
func WithRetry(ctx context.Context, alloc Allocator, series *Series, period time.Time, maxAttempts int, fn func(ctx context.Context, a Allocation) error) (Allocation, error) {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		a, err := alloc.Allocate(ctx, series, period)
		if err != nil {
			return Allocation{}, err
		}

		err = fn(ctx, a)
		if err == nil {
			return a, nil
		}

		if appErr, ok := apperror.AsAppError(err); ok && appErr.Code == apperror.CodeDuplicate {
			continue
		}

		if relErr := alloc.Release(ctx, series, a); relErr != nil {
			// Losing the decrement only widens a gap, never corrupts the series.
			return Allocation{}, err
		}
		return Allocation{}, err
	}

	return Allocation{}, apperror.NewAllocationExhausted(series.Code, maxAttempts)
}
