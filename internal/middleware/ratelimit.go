package middleware

import (
	"hash/fnv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
)

// rateLimitBody is the fixed response for throttled requests.
const rateLimitBody = "Rate limit exceeded. Try again in a second."

// shardCount bounds lock contention on the record table. Keys are spread
// across shards by FNV-1a hash; each shard guards its own map.
const shardCount = 32

type rlShard struct {
	mu   sync.Mutex
	last map[string]time.Time
}

// RateLimiter throttles requests per (client IP, route path) pair: at most
// one request per window. It is created at service start and injected into
// the request pipeline; there is no process-global state.
//
// The check-then-stamp on a key happens under the owning shard's lock, so the
// limit holds under parallel requests on the same key. The lock is released
// before the request proceeds downstream. Entries are never evicted; one
// entry per distinct client/path pair is an accepted capacity trade-off.
type RateLimiter struct {
	window time.Duration
	shards [shardCount]*rlShard
	now    func() time.Time
}

// NewRateLimiter returns a limiter allowing one request per window per key.
func NewRateLimiter(window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		window: window,
		now:    time.Now,
	}
	for i := range rl.shards {
		rl.shards[i] = &rlShard{last: make(map[string]time.Time)}
	}
	return rl
}

func (rl *RateLimiter) shardFor(key string) *rlShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return rl.shards[h.Sum32()%shardCount]
}

// Allow reports whether a request for the key may proceed, stamping the
// current time when it does. A rejected request does not refresh the stamp.
func (rl *RateLimiter) Allow(ip, path string) bool {
	key := ip + "|" + path
	now := rl.now()

	shard := rl.shardFor(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	if last, ok := shard.last[key]; ok && now.Sub(last) < rl.window {
		return false
	}
	shard.last[key] = now
	return true
}

// Handler returns the Fiber middleware gate for this limiter.
func (rl *RateLimiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !rl.Allow(c.IP(), c.Path()) {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"detail": rateLimitBody,
			})
		}
		return c.Next()
	}
}
