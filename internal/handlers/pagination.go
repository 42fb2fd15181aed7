package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// ParseLimitOffset parses limit/offset query params, applying defaults when
// values are missing or invalid and clamping limit to [1, maxLimit] and
// offset to >= 0.
func ParseLimitOffset(c *gin.Context, defaultLimit, maxLimit int) (int, int) {
	limitStr := c.DefaultQuery("limit", strconv.Itoa(defaultLimit))
	offsetStr := c.DefaultQuery("offset", "0")

	limit, err := strconv.Atoi(limitStr)
	if err != nil {
		limit = defaultLimit
	}
	if limit < 1 {
		limit = 1
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	offset, err := strconv.Atoi(offsetStr)
	if err != nil || offset < 0 {
		offset = 0
	}

	return limit, offset
}
