package shared

import (
	"context"
	"time"
)

// ErrLockNotObtained is returned when another holder owns the key
var ErrLockNotObtained = NewDomainError(CodeConcurrencyConflict, "Another operation on this resource is in progress")

// Lock is a held lease on a key
type Lock interface {
	// Release gives the key back. Releasing an expired lease is not an error.
	Release(ctx context.Context) error
}

// Locker hands out short-lived exclusive leases on string keys.
// Implementations must be safe for concurrent use.
type Locker interface {
	// Obtain tries once to take the key for ttl.
	// It returns ErrLockNotObtained when the key is held elsewhere.
	Obtain(ctx context.Context, key string, ttl time.Duration) (Lock, error)
}
