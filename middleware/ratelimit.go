package middleware

import (
	"context"
	"log"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Decision is the outcome of counting one request against a window.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetIn   time.Duration
}

// Limiter counts requests per key in fixed windows.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

func decide(count, max int, resetIn time.Duration) Decision {
	remaining := max - count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   count <= max,
		Limit:     max,
		Remaining: remaining,
		ResetIn:   resetIn,
	}
}

type window struct {
	count int
	start time.Time
}

// MemoryLimiter keeps counters in process. It is only correct for a single
// instance; run several replicas behind RedisLimiter instead.
type MemoryLimiter struct {
	max       int
	window    time.Duration
	now       func() time.Time
	mu        sync.Mutex
	windows   map[string]*window
	lastSweep time.Time
}

func NewMemoryLimiter(max int, win time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		max:     max,
		window:  win,
		now:     time.Now,
		windows: make(map[string]*window),
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	w, ok := l.windows[key]
	if !ok || !now.Before(w.start.Add(l.window)) {
		w = &window{start: now}
		l.windows[key] = w
	}
	w.count++

	return decide(w.count, l.max, w.start.Add(l.window).Sub(now)), nil
}

// sweep drops expired windows at most once per window length.
func (l *MemoryLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.window {
		return
	}
	for key, w := range l.windows {
		if !now.Before(w.start.Add(l.window)) {
			delete(l.windows, key)
		}
	}
	l.lastSweep = now
}

// RedisLimiter shares fixed-window counters between instances through
// INCR on a key that expires with the window.
type RedisLimiter struct {
	client redis.Cmdable
	max    int
	window time.Duration
	prefix string
}

func NewRedisLimiter(client redis.Cmdable, max int, win time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		max:    max,
		window: win,
		prefix: "ratelimit:",
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	key = l.prefix + key

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return Decision{}, err
	}
	if count == 1 {
		if err := l.client.PExpire(ctx, key, l.window).Err(); err != nil {
			return Decision{}, err
		}
	}

	ttl, err := l.client.PTTL(ctx, key).Result()
	if err != nil {
		return Decision{}, err
	}
	if ttl < 0 {
		// A counter left without expiry would block the client forever.
		if err := l.client.PExpire(ctx, key, l.window).Err(); err != nil {
			return Decision{}, err
		}
		ttl = l.window
	}

	return decide(int(count), l.max, ttl), nil
}

// RateLimit rejects clients over budget with 429. A limiter error lets the
// request through.
func RateLimit(limiter Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			log.Printf("Rate limiter unavailable, allowing request: %v", err)
			c.Next()
			return
		}

		resetSeconds := strconv.Itoa(int(math.Ceil(decision.ResetIn.Seconds())))
		h := c.Writer.Header()
		h.Set("RateLimit-Limit", strconv.Itoa(decision.Limit))
		h.Set("RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		h.Set("RateLimit-Reset", resetSeconds)

		if !decision.Allowed {
			h.Set("Retry-After", resetSeconds)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "Too many requests",
				"message": "Too many requests from this IP, please try again later.",
			})
			return
		}

		c.Next()
	}
}
