package server

import (
	"sync"
	"time"

	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/api"
	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/apperr"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiter hands out one token bucket per client IP. Idle buckets are
// dropped after ttl.
type RateLimiter struct {
	visitors map[string]*visitor
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
	ttl      time.Duration
	now      func() time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(rps float64, burst int, ttl time.Duration) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate.Limit(rps),
		burst:    burst,
		ttl:      ttl,
		now:      time.Now,
	}
}

func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	v, ok := rl.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// Prune drops visitors idle for longer than ttl and reports how many remain.
func (rl *RateLimiter) Prune() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for ip, v := range rl.visitors {
		if now.Sub(v.lastSeen) > rl.ttl {
			delete(rl.visitors, ip)
		}
	}
	return len(rl.visitors)
}

// Middleware rejects callers over their budget with RateLimited. Pruning
// piggybacks on traffic, at most once per ttl.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	var (
		mu        sync.Mutex
		lastPrune = rl.now()
	)

	return func(c *gin.Context) {
		mu.Lock()
		if rl.now().Sub(lastPrune) > rl.ttl {
			lastPrune = rl.now()
			mu.Unlock()
			rl.Prune()
		} else {
			mu.Unlock()
		}

		if !rl.Allow(c.ClientIP()) {
			api.Abort(c, apperr.New(apperr.RateLimited, "server.RateLimit"))
			return
		}
		c.Next()
	}
}

// RateLimitMiddleware limits each client IP to rps with the given burst.
func RateLimitMiddleware(rps float64, burst int) gin.HandlerFunc {
	return NewRateLimiter(rps, burst, 3*time.Minute).Middleware()
}
