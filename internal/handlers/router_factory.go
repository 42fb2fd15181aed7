package handlers

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"

	"happymeter/internal/config"
	"happymeter/internal/middleware"
	"happymeter/internal/observability"
	"happymeter/internal/serviceinterfaces"
	"happymeter/internal/version"
)

// NewRouter creates the Gin engine with all middleware and routes wired up.
func NewRouter(
	cfg *config.Config,
	feedbackService serviceinterfaces.FeedbackServiceInterface,
	analyzer serviceinterfaces.SentimentAnalyzerInterface,
	db DBPinger,
	logger *observability.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	if cfg.Server.Debug {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	// HTTP request logging through the observability logger
	router.Use(func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()

		fields := map[string]interface{}{
			"http.method":      c.Request.Method,
			"http.path":        c.Request.URL.Path,
			"http.status_code": statusCode,
			"http.latency_ms":  latency.Milliseconds(),
			"http.client_ip":   c.ClientIP(),
			"http.user_agent":  c.Request.UserAgent(),
		}
		if len(c.Errors) > 0 {
			fields["http.error"] = c.Errors.String()
		}

		if statusCode >= 500 {
			logger.Error(c.Request.Context(), "HTTP request failed", nil, fields)
		} else if statusCode >= 400 {
			logger.Warn(c.Request.Context(), "HTTP request warning", fields)
		} else {
			logger.Info(c.Request.Context(), "HTTP request", fields)
		}
	})

	// Liveness endpoint (defined before any middleware)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "happymeter"})
	})

	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service":   "happymeter",
			"version":   version.Version,
			"commit":    version.Commit,
			"buildTime": version.BuildTime,
		})
	})

	// OpenTelemetry middleware for HTTP tracing with automatic error attributes
	router.Use(observability.GinMiddlewareWithErrorHandling("happymeter"))

	// Disable automatic redirection for trailing slashes, which is better for APIs
	router.RedirectTrailingSlash = false

	corsConfig := cors.DefaultConfig()
	if len(cfg.Server.CORSOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.Server.CORSOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Requested-With"}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	secureConfig := secure.DefaultConfig()
	secureConfig.SSLRedirect = false
	router.Use(secure.New(secureConfig))

	feedbackHandler := NewFeedbackHandler(feedbackService, analyzer, logger)
	healthHandler := NewHealthHandler(db, logger)

	rateLimiter := middleware.NewRateLimiter(cfg.Server.RateLimitPerMinute, cfg.Server.RateLimitBurst)
	adminAuth := middleware.AdminBasicAuth(cfg.Server.AdminUsername, cfg.Server.AdminPassword)

	api := router.Group("/api")
	{
		api.GET("/health", healthHandler.Check)
		api.POST("/feedback", rateLimiter.Middleware(), feedbackHandler.SubmitFeedback)

		admin := api.Group("", adminAuth)
		{
			admin.GET("/feedback", feedbackHandler.ListFeedback)
			admin.GET("/feedback/stats", feedbackHandler.GetStats)
		}
	}

	return router
}
