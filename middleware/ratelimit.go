package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// limiterPool keeps one token bucket per client IP and evicts buckets
// that have been idle long enough to refill completely.
type limiterPool struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	r       rate.Limit
	b       int
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newLimiterPool(r rate.Limit, b int) *limiterPool {
	p := &limiterPool{buckets: make(map[string]*bucket), r: r, b: b}
	go p.evictLoop()
	return p
}

func (p *limiterPool) get(ip string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()
	bk, ok := p.buckets[ip]
	if !ok {
		bk = &bucket{limiter: rate.NewLimiter(p.r, p.b)}
		p.buckets[ip] = bk
	}
	bk.lastSeen = time.Now()
	return bk.limiter
}

func (p *limiterPool) evictLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-10 * time.Minute)
		p.mu.Lock()
		for ip, bk := range p.buckets {
			if bk.lastSeen.Before(cutoff) {
				delete(p.buckets, ip)
			}
		}
		p.mu.Unlock()
	}
}

// RateLimit rejects clients exceeding r requests per second with a
// burst of b, keyed by client IP.
func RateLimit(r rate.Limit, b int) gin.HandlerFunc {
	pool := newLimiterPool(r, b)
	return func(c *gin.Context) {
		if !pool.get(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"message": "too many requests"})
			return
		}
		c.Next()
	}
}
