// Package lock provides short-lived advisory locks used to serialize stage
// completion on a single case.
package lock

import (
	"context"
	"time"
)

// Locker acquires and releases named advisory locks. Acquire reports false
// when another holder owns the key; the TTL bounds how long a crashed holder
// can block others.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}
