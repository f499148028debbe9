package cmd

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/stageflow/stageflow/pkg/lock"
)

// NewLocker builds the advisory locker. A redis:// URL selects the shared
// Redis locker; an empty URL selects the in-process one, which is only safe
// for single-instance deployments.
func NewLocker(redisURL string) lock.Locker {
	if redisURL == "" {
		return lock.NewMemoryLocker()
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		panic(fmt.Errorf("invalid redis URL: %w", err))
	}

	return lock.NewRedisLocker(redis.NewClient(opts))
}
