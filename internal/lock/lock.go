// Package lock serializes label generation per shipment.
package lock

import (
	"context"
	"errors"
	"time"
)

// ErrLocked is returned when the key is held by someone else.
var ErrLocked = errors.New("lock is held")

// Release gives the lock back. Releasing an expired lock is a no-op.
type Release func(ctx context.Context) error

// Locker acquires exclusive, expiring locks on keys.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (Release, error)
}
