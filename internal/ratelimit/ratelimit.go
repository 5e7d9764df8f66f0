package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

type Config struct {
	Requests int
	Window   time.Duration
	Prefix   string
}

func (c Config) withDefaults() Config {
	if c.Requests <= 0 {
		c.Requests = 10
	}
	if c.Window <= 0 {
		c.Window = time.Minute
	}
	if c.Prefix == "" {
		c.Prefix = "ratelimit"
	}
	return c
}

// fixedWindowScript counts hits in the current window and arms the expiry on
// the first hit, atomically.
var fixedWindowScript = redis.NewScript(`
	local current = redis.call('INCR', KEYS[1])
	if current == 1 then
		redis.call('PEXPIRE', KEYS[1], ARGV[1])
	end
	return current
`)

// RedisLimiter is a fixed-window counter shared by every instance that talks
// to the same Redis.
type RedisLimiter struct {
	client redis.Scripter
	config Config
}

func NewRedisLimiter(client redis.Scripter, config Config) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		config: config.withDefaults(),
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := fmt.Sprintf("%s:%s", l.config.Prefix, key)
	count, err := fixedWindowScript.Run(ctx, l.client, []string{redisKey}, l.config.Window.Milliseconds()).Int64()
	if err != nil {
		return true, fmt.Errorf("rate limit script: %w", err)
	}
	return count <= int64(l.config.Requests), nil
}

// LocalLimiter keeps a token bucket per key in process memory. Buckets idle
// for longer than maxIdle are evicted.
type LocalLimiter struct {
	limit   rate.Limit
	burst   int
	maxIdle time.Duration

	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLocalLimiter allows Requests per Window with a burst of Requests.
func NewLocalLimiter(config Config) *LocalLimiter {
	config = config.withDefaults()
	return &LocalLimiter{
		limit:   rate.Every(config.Window / time.Duration(config.Requests)),
		burst:   config.Requests,
		maxIdle: 10 * config.Window,
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

func (l *LocalLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.limit, l.burst), lastSeen: now}
		l.buckets[key] = b
		l.evict(now)
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1), nil
}

// evict must be called with mu held.
func (l *LocalLimiter) evict(now time.Time) {
	for k, b := range l.buckets {
		if now.Sub(b.lastSeen) > l.maxIdle {
			delete(l.buckets, k)
		}
	}
}
