package limiter

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const defaultTTL = 10 * time.Minute

// RejectFunc renders the response for a request over the limit. The
// Retry-After header is already set when it runs; it must abort c.
type RejectFunc func(c *gin.Context, retryAfter time.Duration)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiter keeps one token bucket per client IP. Buckets idle for
// longer than ttl are dropped.
type rateLimiter struct {
	visitors map[string]*visitor
	mu       sync.Mutex

	rps    rate.Limit
	burst  int
	ttl    time.Duration
	now    func() time.Time
	reject RejectFunc
}

func newRateLimiter(rps, burst int, ttl time.Duration, reject RejectFunc) *rateLimiter {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if reject == nil {
		reject = defaultReject
	}

	return &rateLimiter{
		visitors: make(map[string]*visitor),
		rps:      rate.Limit(rps),
		burst:    burst,
		ttl:      ttl,
		now:      time.Now,
		reject:   reject,
	}
}

func (r *rateLimiter) getVisitor(ip string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	v, exists := r.visitors[ip]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(r.rps, r.burst)}
		r.visitors[ip] = v
	}
	v.lastSeen = now

	return v.limiter
}

// reserve takes a token for ip. When none is available it reports how long
// the client should wait instead.
func (r *rateLimiter) reserve(ip string) (time.Duration, bool) {
	lim := r.getVisitor(ip)
	now := r.now()

	res := lim.ReserveN(now, 1)
	if !res.OK() {
		return r.interval(), false
	}
	if wait := res.DelayFrom(now); wait > 0 {
		res.CancelAt(now)
		return wait, false
	}

	return 0, true
}

// interval is the time one token takes to refill.
func (r *rateLimiter) interval() time.Duration {
	if r.rps <= 0 {
		return time.Second
	}
	return time.Duration(float64(time.Second) / float64(r.rps))
}

func (r *rateLimiter) cleanupVisitors() {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for ip, v := range r.visitors {
		if now.Sub(v.lastSeen) > r.ttl {
			delete(r.visitors, ip)
		}
	}
}

func (r *rateLimiter) run() {
	ticker := time.NewTicker(r.ttl)
	defer ticker.Stop()

	for range ticker.C {
		r.cleanupVisitors()
	}
}

// Limit rejects requests above rps (with the given burst) per client IP
// with 429 and a Retry-After header. A nil reject renders a plain message.
func Limit(rps, burst int, ttl time.Duration, reject RejectFunc) gin.HandlerFunc {
	l := newRateLimiter(rps, burst, ttl, reject)
	go l.run()

	return l.middleware
}

func (r *rateLimiter) middleware(c *gin.Context) {
	if wait, ok := r.reserve(c.ClientIP()); !ok {
		c.Header("Retry-After", strconv.Itoa(RetryAfterSeconds(wait)))
		r.reject(c, wait)
		return
	}

	c.Next()
}

// RetryAfterSeconds rounds d up to whole seconds, never below one.
func RetryAfterSeconds(d time.Duration) int {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}

func defaultReject(c *gin.Context, _ time.Duration) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"message": "too many requests"})
}
