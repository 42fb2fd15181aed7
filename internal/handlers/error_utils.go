package handlers

import (
	"net/http"

	contextutils "happymeter/internal/utils"

	"github.com/gin-gonic/gin"
)

// HandleAppError handles any AppError and sends the appropriate HTTP response.
// Non-AppError values collapse to an opaque 500 so internal detail never
// reaches the client.
func HandleAppError(c *gin.Context, err error) {
	appErr, ok := err.(*contextutils.AppError)
	if !ok {
		appErr = contextutils.NewAppError(
			contextutils.ErrorCodeInternalError,
			contextutils.SeverityError,
			"Internal server error",
			"",
		)
	}

	_ = c.Error(appErr)
	c.JSON(mapErrorCodeToHTTPStatus(appErr.Code), appErr.ToJSON())
}

// mapErrorCodeToHTTPStatus maps AppError codes to appropriate HTTP status codes
func mapErrorCodeToHTTPStatus(code contextutils.ErrorCode) int {
	switch code {
	// 4xx Client Errors
	case contextutils.ErrorCodeInvalidInput, contextutils.ErrorCodeMissingRequired,
		contextutils.ErrorCodeValidationFailed:
		return http.StatusBadRequest

	case contextutils.ErrorCodeUnauthorized:
		return http.StatusUnauthorized

	case contextutils.ErrorCodeForbidden:
		return http.StatusForbidden

	case contextutils.ErrorCodeRecordNotFound:
		return http.StatusNotFound

	case contextutils.ErrorCodeRateLimit:
		return http.StatusTooManyRequests

	case contextutils.ErrorCodeTimeout:
		return http.StatusRequestTimeout

	// 5xx Server Errors. Store and classifier failures surface as opaque
	// internal errors; only the health endpoint reports 503.
	case contextutils.ErrorCodeDatabaseConnection, contextutils.ErrorCodeDatabaseQuery,
		contextutils.ErrorCodeClassifierUnavailable, contextutils.ErrorCodeClassifierResponseInvalid,
		contextutils.ErrorCodeInternalError:
		return http.StatusInternalServerError

	case contextutils.ErrorCodeServiceUnavailable:
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}
