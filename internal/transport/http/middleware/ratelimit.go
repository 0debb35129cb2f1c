package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	resp "culfs/internal/transport/http/response"
)

// RateLimit 全局令牌桶限速
func RateLimit(rps rate.Limit, burst int) gin.HandlerFunc {
	lim := rate.NewLimiter(rps, burst)
	return func(c *gin.Context) {
		if lim.Allow() {
			c.Next()
			return
		}
		Abort(c, resp.Fail(resp.CodeTooManyRequests, resp.ReasonRateLimited, ""))
	}
}

type ipBucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// IPLimiter 每 IP 令牌桶；闲置超过 idle 的桶在下次访问时清掉
type IPLimiter struct {
	mu      sync.Mutex
	buckets map[string]*ipBucket
	rps     rate.Limit
	burst   int
	idle    time.Duration
	now     func() time.Time
	swept   time.Time
}

func NewIPLimiter(rps rate.Limit, burst int) *IPLimiter {
	return &IPLimiter{
		buckets: make(map[string]*ipBucket),
		rps:     rps, burst: burst,
		idle: 10 * time.Minute,
		now:  time.Now,
	}
}

func (l *IPLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	if now.Sub(l.swept) > l.idle {
		for k, b := range l.buckets {
			if now.Sub(b.seen) > l.idle {
				delete(l.buckets, k)
			}
		}
		l.swept = now
	}
	b, ok := l.buckets[ip]
	if !ok {
		b = &ipBucket{lim: rate.NewLimiter(l.rps, l.burst)}
		l.buckets[ip] = b
	}
	b.seen = now
	return b.lim.AllowN(now, 1)
}

// RateLimitPerIP 每 IP 限速
func RateLimitPerIP(rps rate.Limit, burst int) gin.HandlerFunc {
	l := NewIPLimiter(rps, burst)
	return func(c *gin.Context) {
		if l.Allow(c.ClientIP()) {
			c.Next()
			return
		}
		Abort(c, resp.Fail(resp.CodeTooManyRequests, resp.ReasonRateLimited, "too many attempts, try again later"))
	}
}
