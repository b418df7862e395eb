package limiter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter implements distributed fixed-window rate limiting using Redis.
// Use it when the service runs as multiple replicas behind a load balancer
// and the per-IP window must be shared across all of them.
//
// Key format: "ratelimit:{ip}:{window}" where window is the current
// fixed-window index. Keys expire on their own, so there is no cleanup
// goroutine to run.
type RedisLimiter struct {
	client     *redis.Client
	limit      int
	windowSize time.Duration
}

// incrWindowScript atomically increments a window counter and sets its
// expiry on first use. Running it as a Lua script keeps the increment and
// the expiry a single atomic unit on the Redis server.
const incrWindowScript = `
local key = KEYS[1]
local ttl = tonumber(ARGV[1])

local current = redis.call('INCR', key)
if current == 1 then
	redis.call('EXPIRE', key, ttl)
end

return current
`

// NewRedisLimiter creates a Redis-backed fixed-window limiter allowing
// `limit` requests per `windowSize` per IP. It pings the server so a
// misconfigured address fails at startup rather than on the first request.
func NewRedisLimiter(addr, password string, db int, limit int, windowSize time.Duration) (*RedisLimiter, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis for rate limiting: %w", err)
	}

	return &RedisLimiter{
		client:     client,
		limit:      limit,
		windowSize: windowSize,
	}, nil
}

// Allow checks if a request from the given IP should be allowed.
//
// On any Redis error the limiter fails open: blocking legitimate traffic
// because the limiter's backend is down would be worse than briefly not
// limiting.
func (rl *RedisLimiter) Allow(ip string) (bool, Info) {
	now := time.Now()
	windowSeconds := int64(rl.windowSize.Seconds())
	windowIndex := now.Unix() / windowSeconds
	key := fmt.Sprintf("ratelimit:%s:%d", ip, windowIndex)

	// The window boundary is fixed by the index, not by the first request.
	resetAt := time.Unix((windowIndex+1)*windowSeconds, 0)

	openInfo := Info{Limit: rl.limit, Remaining: rl.limit, ResetAt: resetAt}

	result, err := rl.client.Eval(context.Background(), incrWindowScript,
		[]string{key}, windowSeconds).Result()
	if err != nil {
		return true, openInfo
	}

	count, ok := result.(int64)
	if !ok {
		return true, openInfo
	}

	allowed := count <= int64(rl.limit)

	remaining := rl.limit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	info := Info{
		Limit:     rl.limit,
		Remaining: remaining,
		ResetAt:   resetAt,
	}
	if !allowed {
		info.RetryAfter = time.Until(resetAt)
	}

	return allowed, info
}

// Close closes the Redis connection and cleans up resources
func (rl *RedisLimiter) Close() error {
	if rl.client != nil {
		return rl.client.Close()
	}
	return nil
}
