package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	runLockKey = "ingest:run-lock"
	runLockTTL = 30 * time.Minute
)

// RunLock is a best-effort cross-process lock so an overlapping scheduled
// invocation skips instead of double-writing the same rows. Backed by
// Redis SET NX with a TTL; a nil client disables locking entirely.
type RunLock struct {
	rdb *redis.Client
}

// NewRunLock wraps a Redis client, which may be nil.
func NewRunLock(rdb *redis.Client) *RunLock {
	return &RunLock{rdb: rdb}
}

// Acquire tries to take the lock. Returns false when another run holds
// it. Always succeeds when locking is disabled.
func (l *RunLock) Acquire(ctx context.Context) (bool, error) {
	if l.rdb == nil {
		return true, nil
	}
	ok, err := l.rdb.SetNX(ctx, runLockKey, time.Now().UTC().Format(time.RFC3339), runLockTTL).Result()
	if err != nil {
		return false, fmt.Errorf("acquire run lock: %w", err)
	}
	return ok, nil
}

// Release drops the lock. The TTL covers a crashed holder.
func (l *RunLock) Release(ctx context.Context) error {
	if l.rdb == nil {
		return nil
	}
	if err := l.rdb.Del(ctx, runLockKey).Err(); err != nil {
		return fmt.Errorf("release run lock: %w", err)
	}
	return nil
}
