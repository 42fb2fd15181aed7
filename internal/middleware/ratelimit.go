package middleware

import (
	"math"
	"net/http"
	"net/netip"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	contextutils "happymeter/internal/utils"
)

const (
	// rateLimitWindow is the nominal window the advertised limit refers to.
	rateLimitWindow = time.Minute
	// staleClientAge is how long an idle client entry survives before the sweep drops it.
	staleClientAge = 10 * time.Minute
	// sweepInterval is how often the stale-entry sweep runs, piggybacked on requests.
	sweepInterval = 3 * time.Minute
)

// clientLimiter tracks one client's token bucket and last activity.
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter applies a per-client token-bucket limit. Client identity is the
// normalized originating address combined with the declared User-Agent.
type RateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*clientLimiter
	lastSweep time.Time

	perMinute int
	burst     int
}

// NewRateLimiter creates a limiter allowing perMinute requests per client per
// minute with the given instantaneous burst.
func NewRateLimiter(perMinute, burst int) *RateLimiter {
	return &RateLimiter{
		clients:   make(map[string]*clientLimiter),
		lastSweep: time.Now(),
		perMinute: perMinute,
		burst:     burst,
	}
}

// Middleware returns the Gin handler enforcing the limit. Throttled requests
// receive 429 with a fixed JSON body and standard RateLimit-* headers.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := rl.clientKey(c)
		limiter := rl.limiterFor(key)

		c.Header("RateLimit-Limit", strconv.Itoa(rl.perMinute))

		if !limiter.Allow() {
			reserve := limiter.Reserve()
			retryAfter := reserve.Delay()
			reserve.Cancel()

			c.Header("RateLimit-Remaining", "0")
			c.Header("RateLimit-Reset", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))

			appErr := contextutils.NewAppError(
				contextutils.ErrorCodeRateLimit,
				contextutils.SeverityWarn,
				"Too Many Requests",
				"Too many feedback submissions, please try again later.",
			)
			_ = c.Error(appErr)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, appErr.ToJSON())
			return
		}

		remaining := int(limiter.Tokens())
		if remaining < 0 {
			remaining = 0
		}
		c.Header("RateLimit-Remaining", strconv.Itoa(remaining))

		c.Next()
	}
}

// limiterFor returns (creating if needed) the token bucket for a client key.
func (rl *RateLimiter) limiterFor(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if now.Sub(rl.lastSweep) > sweepInterval {
		for k, cl := range rl.clients {
			if now.Sub(cl.lastSeen) > staleClientAge {
				delete(rl.clients, k)
			}
		}
		rl.lastSweep = now
	}

	cl, ok := rl.clients[key]
	if !ok {
		cl = &clientLimiter{
			limiter: rate.NewLimiter(rate.Every(rateLimitWindow/time.Duration(rl.perMinute)), rl.burst),
		}
		rl.clients[key] = cl
	}
	cl.lastSeen = now
	return cl.limiter
}

// clientKey combines the normalized client address with the User-Agent so
// distinct clients behind one NAT are not throttled together.
func (rl *RateLimiter) clientKey(c *gin.Context) string {
	return normalizeIP(c.ClientIP()) + ":" + c.Request.UserAgent()
}

// normalizeIP collapses IPv6 addresses to their /64 prefix so a single host
// rotating interface identifiers cannot dodge the limit. IPv4 addresses pass
// through unchanged.
func normalizeIP(ip string) string {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return ip
	}
	if addr.Is4() || addr.Is4In6() {
		return addr.Unmap().String()
	}
	prefix, err := addr.Prefix(64)
	if err != nil {
		return addr.String()
	}
	return prefix.String()
}
