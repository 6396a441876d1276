// Package quota enforces the per-user cumulative storage ceiling.
// The Guard delegates atomicity to its Store so concurrent requests for the
// same user serialize only through the store's conditional increment, never
// through a broader lock.
package quota

import (
	"context"
	"fmt"

	"postforge/errs"
)

// DefaultMaxStorageBytes is the 1 GiB per-user ceiling.
const DefaultMaxStorageBytes int64 = 1 << 30

// Store is the persistence contract for quota counters.
type Store interface {
	// UsedBytes returns the user's current usage; unknown users report 0.
	UsedBytes(ctx context.Context, userID string) (int64, error)

	// ReserveBytes atomically adds n to the user's usage unless the result
	// would exceed limit. It returns false (and no error) when the
	// reservation is rejected.
	ReserveBytes(ctx context.Context, userID string, n, limit int64) (bool, error)

	// ReleaseBytes subtracts n from the user's usage, flooring at zero.
	ReleaseBytes(ctx context.Context, userID string, n int64) error
}

type Guard struct {
	store Store
	limit int64
}

func NewGuard(store Store, limit int64) *Guard {
	if limit <= 0 {
		limit = DefaultMaxStorageBytes
	}
	return &Guard{store: store, limit: limit}
}

// CheckAdmission rejects users already at or over the ceiling. The
// orchestrator calls this before any generation work starts.
func (g *Guard) CheckAdmission(ctx context.Context, userID string) error {
	used, err := g.store.UsedBytes(ctx, userID)
	if err != nil {
		return errs.ServiceFailure("quota lookup failed", err)
	}
	if used >= g.limit {
		return errs.QuotaExceeded(fmt.Sprintf("storage quota exceeded: %d of %d bytes used", used, g.limit))
	}
	return nil
}

// Reserve performs the atomic check-and-reserve for n bytes.
func (g *Guard) Reserve(ctx context.Context, userID string, n int64) error {
	if n < 0 {
		return errs.Validation("reservation size must be non-negative")
	}
	if n > g.limit {
		return errs.QuotaExceeded(fmt.Sprintf("reserving %d bytes would exceed the %d byte quota", n, g.limit))
	}
	ok, err := g.store.ReserveBytes(ctx, userID, n, g.limit)
	if err != nil {
		return errs.ServiceFailure("quota reservation failed", err)
	}
	if !ok {
		return errs.QuotaExceeded(fmt.Sprintf("reserving %d bytes would exceed the %d byte quota", n, g.limit))
	}
	return nil
}

// Release returns n bytes to the user's quota after a delete or a failed
// persistence attempt.
func (g *Guard) Release(ctx context.Context, userID string, n int64) error {
	if n <= 0 {
		return nil
	}
	if err := g.store.ReleaseBytes(ctx, userID, n); err != nil {
		return errs.ServiceFailure("quota release failed", err)
	}
	return nil
}
