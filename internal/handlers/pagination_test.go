package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func parseWithQuery(t *testing.T, query string) (limit, offset int) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/feedback"+query, nil)

	return ParseLimitOffset(c, DefaultListLimit, MaxListLimit)
}

func TestParseLimitOffset(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantLimit  int
		wantOffset int
	}{
		{"defaults", "", 20, 0},
		{"explicit values", "?limit=50&offset=40", 50, 40},
		{"limit above max clamps", "?limit=1000", 100, 0},
		{"limit below min clamps", "?limit=0", 1, 0},
		{"negative limit clamps", "?limit=-5", 1, 0},
		{"negative offset resets", "?offset=-10", 20, 0},
		{"non-numeric limit falls back", "?limit=abc", 20, 0},
		{"non-numeric offset falls back", "?offset=abc", 20, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limit, offset := parseWithQuery(t, tt.query)
			assert.Equal(t, tt.wantLimit, limit)
			assert.Equal(t, tt.wantOffset, offset)
		})
	}
}
