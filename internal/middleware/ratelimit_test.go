package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rateLimitTestRouter(rl *RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/feedback", rl.Middleware(), func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"ok": true})
	})
	return router
}

func postFeedback(router *gin.Engine, forwardedFor, userAgent string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/feedback", nil)
	if forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", forwardedFor)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_AllowsWithinBudget(t *testing.T) {
	router := rateLimitTestRouter(NewRateLimiter(5, 5))

	for i := 0; i < 5; i++ {
		w := postFeedback(router, "", "test-agent")
		assert.Equal(t, http.StatusCreated, w.Code, "request %d should pass", i+1)
		assert.Equal(t, "5", w.Header().Get("RateLimit-Limit"))
	}
}

func TestRateLimiter_ThrottlesOverBudget(t *testing.T) {
	router := rateLimitTestRouter(NewRateLimiter(5, 5))

	for i := 0; i < 5; i++ {
		postFeedback(router, "", "test-agent")
	}

	w := postFeedback(router, "", "test-agent")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("RateLimit-Reset"))
	assert.Contains(t, w.Body.String(), "Too many feedback submissions, please try again later.")
	assert.Contains(t, w.Body.String(), "Too Many Requests")
}

func TestRateLimiter_DistinctUserAgentsTrackedSeparately(t *testing.T) {
	router := rateLimitTestRouter(NewRateLimiter(1, 1))

	first := postFeedback(router, "", "agent-a")
	require.Equal(t, http.StatusCreated, first.Code)

	throttled := postFeedback(router, "", "agent-a")
	require.Equal(t, http.StatusTooManyRequests, throttled.Code)

	// A different User-Agent from the same address gets its own bucket.
	other := postFeedback(router, "", "agent-b")
	assert.Equal(t, http.StatusCreated, other.Code)
}

func TestRateLimiter_RemainingHeaderCountsDown(t *testing.T) {
	router := rateLimitTestRouter(NewRateLimiter(3, 3))

	w := postFeedback(router, "", "test-agent")
	assert.Equal(t, "2", w.Header().Get("RateLimit-Remaining"))

	w = postFeedback(router, "", "test-agent")
	assert.Equal(t, "1", w.Header().Get("RateLimit-Remaining"))
}

func TestNormalizeIP(t *testing.T) {
	// IPv4 passes through
	assert.Equal(t, "192.0.2.1", normalizeIP("192.0.2.1"))
	// 4-in-6 unmaps to plain IPv4
	assert.Equal(t, "192.0.2.1", normalizeIP("::ffff:192.0.2.1"))
	// IPv6 collapses to the /64 prefix
	assert.Equal(t, "2001:db8:1:2::/64", normalizeIP("2001:db8:1:2:3:4:5:6"))
	// Unparseable input passes through untouched
	assert.Equal(t, "not-an-ip", normalizeIP("not-an-ip"))
}
