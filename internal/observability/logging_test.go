package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"happymeter/internal/config"
	contextutils "happymeter/internal/utils"
)

func TestNewLogger_NilConfigIsNoop(t *testing.T) {
	logger := NewLogger(nil)
	require.NotNil(t, logger)

	// No-op logger must accept all calls without panicking
	ctx := context.Background()
	logger.Debug(ctx, "debug")
	logger.Info(ctx, "info", map[string]interface{}{"k": "v"})
	logger.Warn(ctx, "warn")
	logger.Error(ctx, "error", errors.New("boom"))
}

func TestNewLogger_DisabledLoggingIsNoop(t *testing.T) {
	logger := NewLogger(&config.OpenTelemetryConfig{EnableLogging: false})
	require.NotNil(t, logger)
	logger.Info(context.Background(), "should not panic")
}

func TestNewLogger_EnabledWithoutEndpoint(t *testing.T) {
	logger := NewLogger(&config.OpenTelemetryConfig{EnableLogging: true})
	require.NotNil(t, logger)
	logger.Info(context.Background(), "plain stdout logger", map[string]interface{}{"k": 1})
}

func TestDetermineErrorSeverity(t *testing.T) {
	appErr := contextutils.NewAppError(contextutils.ErrorCodeRateLimit, contextutils.SeverityWarn, "Too Many Requests", "")
	ginErrs := []*gin.Error{{Err: appErr, Type: gin.ErrorTypePrivate}}

	assert.Equal(t, "warn", determineErrorSeverity(429, ginErrs))
	assert.Equal(t, "error", determineErrorSeverity(500, nil))
	assert.Equal(t, "warn", determineErrorSeverity(404, nil))
	assert.Equal(t, "info", determineErrorSeverity(200, nil))
}

func TestGinMiddlewareWithErrorHandling_PassesRequestsThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(GinMiddlewareWithErrorHandling("happymeter-test"))
	router.GET("/ok", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	router.GET("/fail", func(c *gin.Context) {
		appErr := contextutils.NewAppError(contextutils.ErrorCodeInternalError, contextutils.SeverityError, "Internal server error", "")
		_ = c.Error(appErr)
		c.JSON(http.StatusInternalServerError, appErr.ToJSON())
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
