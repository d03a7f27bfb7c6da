package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

const lockReleaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

// locker is a redis SetNX mutex. A nil locker (redis not configured)
// always grants the lock; the in-transaction status compare-and-set
// remains the correctness guard either way.
type locker struct {
	client *redis.Client
	script *redis.Script
}

func newLocker(client *redis.Client) *locker {
	if client == nil {
		return nil
	}
	return &locker{
		client: client,
		script: redis.NewScript(lockReleaseScript),
	}
}

func (l *locker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	if l == nil || l.client == nil {
		return "", true, nil
	}

	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return "", false, err
	}
	return token, ok, nil
}

func (l *locker) Release(ctx context.Context, key, token string) {
	if l == nil || l.client == nil || token == "" {
		return
	}
	_ = l.script.Run(ctx, l.client, []string{key}, token).Err()
}
