package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRateLimiterMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RateLimiterMiddleware(RateLimiterConfig{
		RequestsPerSecond: 1,
		Burst:             3,
	}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 5)
	for range 5 {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, w.Code)
	}

	for i, code := range codes[:3] {
		if code != http.StatusOK {
			t.Errorf("request %d within the burst got %d", i, code)
		}
	}

	// The burst is spent, further requests are rejected
	if codes[3] != http.StatusTooManyRequests || codes[4] != http.StatusTooManyRequests {
		t.Errorf("requests beyond the burst should 429, got %v", codes[3:])
	}
}
