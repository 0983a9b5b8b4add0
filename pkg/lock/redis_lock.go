// Package lock provides the kernel's cross-process Locker
// implementations. This is mutual exclusion for a single kernel
// instance's propose/commit calls across multiple processes — not a
// distributed consensus protocol, and not a substitute for one.
package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript unlocks only if the caller still holds the lock token,
// so a process that stalled past the lease can't release a lock it no
// longer owns.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
else
    return 0
end
`)

// RedisLock is a Locker backed by a single Redis key with a lease TTL,
// using the same atomic check-and-set Lua pattern as a token-bucket
// rate limiter.
type RedisLock struct {
	client *redis.Client
	key    string
	lease  time.Duration
	retry  time.Duration
}

// NewRedisLock creates a lock on key with the given lease duration.
// retry controls how often Lock polls while contended.
func NewRedisLock(client *redis.Client, key string, lease, retry time.Duration) *RedisLock {
	if lease <= 0 {
		lease = 10 * time.Second
	}
	if retry <= 0 {
		retry = 50 * time.Millisecond
	}
	return &RedisLock{client: client, key: key, lease: lease, retry: retry}
}

// Lock blocks until the lock is acquired or ctx is done, returning an
// unlock function that releases it if still held.
func (l *RedisLock) Lock(ctx context.Context) (func(), error) {
	token := uuid.NewString()

	for {
		ok, err := l.client.SetNX(ctx, l.key, token, l.lease).Result()
		if err != nil {
			return nil, fmt.Errorf("lock: redis setnx: %w", err)
		}
		if ok {
			return func() {
				releaseScript.Run(context.Background(), l.client, []string{l.key}, token)
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("lock: acquire %q: %w", l.key, ctx.Err())
		case <-time.After(l.retry):
		}
	}
}

// Noop is a Locker that always succeeds immediately — used when a
// deployment relies solely on the kernel's in-process mutex.
type Noop struct{}

func (Noop) Lock(ctx context.Context) (func(), error) {
	return func() {}, nil
}
