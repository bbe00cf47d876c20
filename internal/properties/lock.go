package properties

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Locker serializes ensure calls for one property. The option update is a
// read-then-write of the full option list, so two concurrent writers would
// silently drop each other's additions without mutual exclusion.
type Locker interface {
	// Acquire blocks until the lock for key is held or ctx expires.
	// The returned function releases the lock.
	Acquire(ctx context.Context, key string) (release func(), err error)
}

const (
	lockKeyPrefix    = "lock:property:"
	lockPollInterval = 100 * time.Millisecond
)

// releaseScript deletes the lock only when it still carries our token, so an
// expired lease reacquired by another process is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisLocker implements Locker with a SETNX lease in Redis.
type RedisLocker struct {
	rdb redis.Cmdable
	ttl time.Duration
}

// NewRedisLocker creates a locker with the given lease TTL.
func NewRedisLocker(rdb redis.Cmdable, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &RedisLocker{rdb: rdb, ttl: ttl}
}

// Acquire polls SETNX until the lease is obtained or the context expires.
func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	fullKey := lockKeyPrefix + key
	token := uuid.NewString()

	for {
		ok, err := l.rdb.SetNX(ctx, fullKey, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire lock %s: %w", fullKey, err)
		}
		if ok {
			return func() {
				releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				_ = releaseScript.Run(releaseCtx, l.rdb, []string{fullKey}, token).Err()
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("acquire lock %s: %w", fullKey, ctx.Err())
		case <-time.After(lockPollInterval):
		}
	}
}

var _ Locker = (*RedisLocker)(nil)
