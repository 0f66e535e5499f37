package ratelimit

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter is the shared-counter variant of the fixed-window limiter for
// multi-instance deployments. Same Admit contract as the in-memory Limiter;
// the window lives as a counter with a TTL, so no sweep is needed.
type RedisLimiter struct {
	rdb     *redis.Client
	prefix  string
	ceiling int
	window  time.Duration
}

// NewRedisLimiter creates a limiter backed by the given Redis client. The
// prefix namespaces the keys of this action class ("ratelimit:click:...").
func NewRedisLimiter(rdb *redis.Client, prefix string, ceiling int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		rdb:     rdb,
		prefix:  "ratelimit:" + prefix + ":",
		ceiling: ceiling,
		window:  window,
	}
}

// Admit increments the key's counter and admits while it stays within the
// ceiling. The first increment of a window sets the TTL, which makes the
// window fixed rather than sliding. On Redis errors the call is admitted:
// losing admission control briefly beats rejecting every visitor.
func (l *RedisLimiter) Admit(key string) bool {
	if l.ceiling <= 0 {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	k := l.prefix + key

	pipe := l.rdb.TxPipeline()
	incr := pipe.Incr(ctx, k)
	// NX: only the increment that opened the window sets the expiry
	pipe.ExpireNX(ctx, k, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("WARNING: rate limit check failed for %s, admitting: %v", k, err)
		return true
	}

	return incr.Val() <= int64(l.ceiling)
}
