package state

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisLocker implements Locker via Redis SETNX, adapted from the teacher's
// redis.Client.SetNX wrapper, for Tool Server deployments running more than
// one instance against a shared workflow directory (spec §5 Open Question:
// "how does concurrent-run rejection work across instances?" — answered by
// making the lock itself distributed rather than filesystem-local).
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisLocker wraps an existing *redis.Client. ttl bounds how long a
// lock survives if its holder crashes without releasing it.
func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisLocker{client: client, ttl: ttl}
}

// Acquire sets a unique token under "workflow_lock:<name>" with NX
// semantics, releasing only if the holder's own token still matches (so a
// crashed instance's expired lock can't be released by a later unrelated
// holder that reused the same key).
func (l *RedisLocker) Acquire(ctx context.Context, name string) (func(), error) {
	key := "workflow_lock:" + name
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("redis lock acquire failed: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("lock %s already held", key)
	}

	return func() {
		val, err := l.client.Get(context.Background(), key).Result()
		if err == nil && val == token {
			l.client.Del(context.Background(), key)
		}
	}, nil
}
