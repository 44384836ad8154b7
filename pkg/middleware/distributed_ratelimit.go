package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// fixedWindowScript increments the counter and starts its window on first use.
// Returns {count, pttl}.
var fixedWindowScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
	ttl = tonumber(ARGV[1])
end
return {count, ttl}
`)

// RedisLimiter implements fixed-window limiting shared across instances
type RedisLimiter struct {
	redis  *redis.Client
	limit  int
	period time.Duration
	prefix string
	now    func() time.Time
}

// NewRedisLimiter allows limit requests per key in each period
func NewRedisLimiter(client *redis.Client, limit int, period time.Duration, prefix string) *RedisLimiter {
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &RedisLimiter{
		redis:  client,
		limit:  limit,
		period: period,
		prefix: prefix,
		now:    time.Now,
	}
}

// WithClock replaces the time source used for reset times
func (l *RedisLimiter) WithClock(now func() time.Time) *RedisLimiter {
	l.now = now
	return l
}

func (l *RedisLimiter) key(key string) string {
	return l.prefix + ":" + key
}

// Take counts one request for key. On Redis errors the request is allowed
// and the error returned.
func (l *RedisLimiter) Take(ctx context.Context, key string) (Decision, error) {
	res, err := fixedWindowScript.Run(ctx, l.redis, []string{l.key(key)}, l.period.Milliseconds()).Result()
	if err != nil {
		return l.failOpen(), fmt.Errorf("redis error: %w", err)
	}

	vals, ok := res.([]interface{})
	if !ok || len(vals) != 2 {
		return l.failOpen(), fmt.Errorf("unexpected script result %T", res)
	}
	count, ok1 := vals[0].(int64)
	ttl, ok2 := vals[1].(int64)
	if !ok1 || !ok2 {
		return l.failOpen(), fmt.Errorf("unexpected script values %v", vals)
	}

	remaining := l.limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   int(count) <= l.limit,
		Limit:     l.limit,
		Remaining: remaining,
		ResetAt:   l.now().Add(time.Duration(ttl) * time.Millisecond),
	}, nil
}

func (l *RedisLimiter) failOpen() Decision {
	return Decision{
		Allowed:   true,
		Limit:     l.limit,
		Remaining: l.limit,
		ResetAt:   l.now().Add(l.period),
	}
}
