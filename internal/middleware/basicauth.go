// Package middleware provides authentication and rate-limiting middleware for
// the Gin web framework.
package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	contextutils "happymeter/internal/utils"
)

// BasicAuthRealm is the challenge realm presented to unauthenticated clients.
const BasicAuthRealm = "HappyMeter Admin"

// AdminBasicAuth returns middleware guarding admin endpoints with a single
// shared credential pair. Comparison is constant-time; failures receive a
// Basic challenge and a JSON 401 body.
func AdminBasicAuth(username, password string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, pass, ok := c.Request.BasicAuth()
		if !ok || !credentialsMatch(user, pass, username, password) {
			c.Header("WWW-Authenticate", `Basic realm="`+BasicAuthRealm+`"`)
			appErr := contextutils.NewAppError(
				contextutils.ErrorCodeUnauthorized,
				contextutils.SeverityWarn,
				"Unauthorized",
				"Authentication required to access admin endpoints",
			)
			_ = c.Error(appErr)
			c.AbortWithStatusJSON(http.StatusUnauthorized, appErr.ToJSON())
			return
		}

		c.Next()
	}
}

// credentialsMatch compares both fields in constant time regardless of which
// one mismatches.
func credentialsMatch(user, pass, wantUser, wantPass string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(wantUser)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(pass), []byte(wantPass)) == 1
	return userOK && passOK
}
